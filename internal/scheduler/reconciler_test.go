package scheduler

import (
	"context"
	"testing"
	"time"

	"wms-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSweepStore giữ intent và trạng thái yêu cầu trong map.
type fakeSweepStore struct {
	stale    []models.StockInIntent
	statuses map[string]string

	deletedPartials []string
	deletedBarcodes map[string][]string
	resetRequests   []string
	deletedIntents  []string
}

func (f *fakeSweepStore) ListStalePendingIntents(ctx context.Context, olderThan time.Time) ([]models.StockInIntent, error) {
	return f.stale, nil
}

func (f *fakeSweepStore) GetRequestStatus(ctx context.Context, requestID string) (string, error) {
	return f.statuses[requestID], nil
}

func (f *fakeSweepStore) DeletePartialRows(ctx context.Context, requestID string, barcodes []string) error {
	f.deletedPartials = append(f.deletedPartials, requestID)
	if f.deletedBarcodes == nil {
		f.deletedBarcodes = make(map[string][]string)
	}
	f.deletedBarcodes[requestID] = append(f.deletedBarcodes[requestID], barcodes...)
	return nil
}

func (f *fakeSweepStore) ResetRequest(ctx context.Context, requestID string) error {
	f.resetRequests = append(f.resetRequests, requestID)
	return nil
}

func (f *fakeSweepStore) DeleteIntent(ctx context.Context, intentID string) error {
	f.deletedIntents = append(f.deletedIntents, intentID)
	return nil
}

func TestSweepRollsBackIncompleteCommit(t *testing.T) {
	store := &fakeSweepStore{
		stale: []models.StockInIntent{
			{IntentID: "intent-1", RequestID: "SIN-1", State: models.IntentPending,
				Barcodes: []string{"BC-1", "BC-2"}},
		},
		statuses: map[string]string{"SIN-1": models.StatusProcessing},
	}
	r := NewReconciler(store, "*/5 * * * *", 15*time.Minute, nil)

	require.NoError(t, r.Sweep(context.Background()))

	// Commit dở: xóa dòng ghi dở, trả yêu cầu về pending, dọn intent.
	assert.Equal(t, []string{"SIN-1"}, store.deletedPartials)
	assert.Equal(t, []string{"SIN-1"}, store.resetRequests)
	assert.Equal(t, []string{"intent-1"}, store.deletedIntents)
}

// Việc xóa được giới hạn trong bộ mã vạch của chính intent: một lần commit
// khác của cùng yêu cầu (bộ mã khác) đang chạy song song không bị cuốn theo.
func TestSweepDeletesOnlyIntentBarcodes(t *testing.T) {
	store := &fakeSweepStore{
		stale: []models.StockInIntent{
			{IntentID: "intent-1", RequestID: "SIN-1", State: models.IntentPending,
				Barcodes: []string{"BC-1", "BC-2"}},
		},
		statuses: map[string]string{"SIN-1": models.StatusProcessing},
	}
	r := NewReconciler(store, "*/5 * * * *", 15*time.Minute, nil)

	require.NoError(t, r.Sweep(context.Background()))

	assert.ElementsMatch(t, []string{"BC-1", "BC-2"}, store.deletedBarcodes["SIN-1"])
}

func TestSweepCompletedRequestOnlyDeletesIntent(t *testing.T) {
	store := &fakeSweepStore{
		stale: []models.StockInIntent{
			{IntentID: "intent-1", RequestID: "SIN-1", State: models.IntentPending},
		},
		statuses: map[string]string{"SIN-1": models.StatusCompleted},
	}
	r := NewReconciler(store, "*/5 * * * *", 15*time.Minute, nil)

	require.NoError(t, r.Sweep(context.Background()))

	// Yêu cầu đã hoàn tất: không đụng vào dữ liệu, chỉ dọn intent mồ côi.
	assert.Empty(t, store.deletedPartials)
	assert.Empty(t, store.resetRequests)
	assert.Equal(t, []string{"intent-1"}, store.deletedIntents)
}

func TestSweepProcessesAllStaleIntents(t *testing.T) {
	store := &fakeSweepStore{
		stale: []models.StockInIntent{
			{IntentID: "intent-1", RequestID: "SIN-1", State: models.IntentPending},
			{IntentID: "intent-2", RequestID: "SIN-2", State: models.IntentPending},
		},
		statuses: map[string]string{
			"SIN-1": models.StatusCompleted,
			"SIN-2": models.StatusProcessing,
		},
	}
	r := NewReconciler(store, "*/5 * * * *", 15*time.Minute, nil)

	require.NoError(t, r.Sweep(context.Background()))

	assert.Equal(t, []string{"SIN-2"}, store.deletedPartials)
	assert.Equal(t, []string{"SIN-2"}, store.resetRequests)
	assert.ElementsMatch(t, []string{"intent-1", "intent-2"}, store.deletedIntents)
}

func TestSweepNoStaleIntents(t *testing.T) {
	store := &fakeSweepStore{statuses: map[string]string{}}
	r := NewReconciler(store, "*/5 * * * *", 15*time.Minute, nil)

	require.NoError(t, r.Sweep(context.Background()))
	assert.Empty(t, store.deletedIntents)
}
