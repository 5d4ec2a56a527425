package stockin

import (
	"context"
	"errors"
	"testing"

	"wms-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusCall struct {
	status      string
	processedBy string
}

// fakeCommitStore ghi lại mọi lời gọi để test kiểm tra thứ tự và nội dung ghi.
type fakeCommitStore struct {
	request  *models.StockInRequest
	existing []string

	statusCalls      []statusCall
	intents          []models.StockInIntent
	committedIntents []string
	details          []models.StockInDetail
	inventory        []models.InventoryRecord
	batchItems       []models.BatchInventoryItem
	logs             []models.BarcodeLog

	failDetails    error
	failInventory  error
	failBatchItems error
	failLogs       error
	failMarkIntent error
}

func (f *fakeCommitStore) GetRequest(ctx context.Context, requestID string) (*models.StockInRequest, error) {
	if f.request == nil || f.request.RequestID != requestID {
		return nil, ErrRequestNotFound
	}
	return f.request, nil
}

func (f *fakeCommitStore) FindExistingBarcodes(ctx context.Context, barcodes []string) ([]string, error) {
	var found []string
	for _, code := range barcodes {
		for _, e := range f.existing {
			if code == e {
				found = append(found, code)
			}
		}
	}
	return found, nil
}

func (f *fakeCommitStore) HasPendingIntent(ctx context.Context, requestID string) (bool, error) {
	for _, in := range f.intents {
		if in.RequestID == requestID && in.State == models.IntentPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCommitStore) CreateIntent(ctx context.Context, intent models.StockInIntent) error {
	f.intents = append(f.intents, intent)
	return nil
}

func (f *fakeCommitStore) MarkIntentCommitted(ctx context.Context, intentID string) error {
	if f.failMarkIntent != nil {
		return f.failMarkIntent
	}
	for i := range f.intents {
		if f.intents[i].IntentID == intentID {
			f.intents[i].State = models.IntentCommitted
		}
	}
	f.committedIntents = append(f.committedIntents, intentID)
	return nil
}

// dọn intent giống như một lượt sweep của reconciler.
func (f *fakeCommitStore) clearIntents() {
	f.intents = nil
}

func (f *fakeCommitStore) SetRequestStatus(ctx context.Context, requestID, status, processedBy string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, processedBy: processedBy})
	return nil
}

func (f *fakeCommitStore) InsertDetails(ctx context.Context, details []models.StockInDetail) error {
	if f.failDetails != nil {
		return f.failDetails
	}
	f.details = append(f.details, details...)
	return nil
}

func (f *fakeCommitStore) InsertInventory(ctx context.Context, records []models.InventoryRecord) error {
	if f.failInventory != nil {
		return f.failInventory
	}
	f.inventory = append(f.inventory, records...)
	return nil
}

func (f *fakeCommitStore) InsertBatchItems(ctx context.Context, items []models.BatchInventoryItem) error {
	if f.failBatchItems != nil {
		return f.failBatchItems
	}
	f.batchItems = append(f.batchItems, items...)
	return nil
}

func (f *fakeCommitStore) InsertBarcodeLogs(ctx context.Context, logs []models.BarcodeLog) error {
	if f.failLogs != nil {
		return f.failLogs
	}
	f.logs = append(f.logs, logs...)
	return nil
}

func pendingRequest(requestID string) *models.StockInRequest {
	return &models.StockInRequest{RequestID: requestID, Status: models.StatusPending}
}

func testBatch(barcodes ...string) Batch {
	return Batch{
		ProductID:      "PORK-BELLY",
		WarehouseID:    "WH-01",
		LocationID:     "A-01-01",
		BoxCount:       len(barcodes),
		QuantityPerBox: 10,
		Barcodes:       barcodes,
	}
}

func TestCommitSuccess(t *testing.T) {
	store := &fakeCommitStore{request: pendingRequest("SIN-1")}
	o := NewOrchestrator(store, nil)

	batches := []Batch{
		testBatch("BC-1", "BC-2"),
		testBatch("BC-3"),
	}

	result, err := o.Commit(context.Background(), "SIN-1", batches, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.BoxCount)
	assert.Equal(t, 30, result.TotalQuantity)
	assert.ElementsMatch(t, []string{"BC-1", "BC-2", "BC-3"}, result.Barcodes)

	// Một dòng cho mỗi thùng ở cả ba bảng, cộng audit log.
	assert.Len(t, store.details, 3)
	assert.Len(t, store.inventory, 3)
	assert.Len(t, store.batchItems, 3)
	assert.Len(t, store.logs, 3)

	// Vòng đời trạng thái: processing rồi completed, cùng người xử lý.
	require.Len(t, store.statusCalls, 2)
	assert.Equal(t, statusCall{models.StatusProcessing, "user-1"}, store.statusCalls[0])
	assert.Equal(t, statusCall{models.StatusCompleted, "user-1"}, store.statusCalls[1])

	// Intent được tạo rồi đánh dấu committed.
	require.Len(t, store.intents, 1)
	require.Len(t, store.committedIntents, 1)
	assert.Equal(t, store.intents[0].IntentID, store.committedIntents[0])
}

func TestCommitDetailIDLinksAllRows(t *testing.T) {
	store := &fakeCommitStore{request: pendingRequest("SIN-1")}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-1", []Batch{testBatch("BC-1", "BC-2")}, "user-1")
	require.NoError(t, err)

	byDetail := make(map[string]string) // detailID -> barcode
	for _, d := range store.details {
		require.NotEmpty(t, d.DetailID)
		byDetail[d.DetailID] = d.Barcode
	}
	for _, rec := range store.inventory {
		assert.Equal(t, byDetail[rec.DetailID], rec.Barcode)
		assert.Equal(t, models.InventoryAvailable, rec.Status)
		assert.Equal(t, "SIN-1", rec.BatchID)
	}
	for _, item := range store.batchItems {
		assert.Equal(t, byDetail[item.DetailID], item.Barcode)
	}
}

func TestCommitEmptyBatches(t *testing.T) {
	store := &fakeCommitStore{request: pendingRequest("SIN-1")}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-1", nil, "user-1")
	assert.ErrorIs(t, err, ErrEmptyCommit)
}

func TestCommitBarcodeCountMismatch(t *testing.T) {
	store := &fakeCommitStore{request: pendingRequest("SIN-1")}
	o := NewOrchestrator(store, nil)

	bad := testBatch("BC-1", "BC-2")
	bad.BoxCount = 3

	_, err := o.Commit(context.Background(), "SIN-1", []Batch{bad}, "user-1")
	assert.Error(t, err)
	assert.Empty(t, store.statusCalls)
}

func TestCommitIntraCommitDuplicate(t *testing.T) {
	store := &fakeCommitStore{request: pendingRequest("SIN-1")}
	o := NewOrchestrator(store, nil)

	batches := []Batch{testBatch("BC-1"), testBatch("BC-1")}

	_, err := o.Commit(context.Background(), "SIN-1", batches, "user-1")
	dup, ok := AsDuplicateBarcodeError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"BC-1"}, dup.Barcodes)
	assert.Empty(t, store.statusCalls)
	assert.Empty(t, store.intents)
}

func TestCommitNonPendingRequest(t *testing.T) {
	req := pendingRequest("SIN-1")
	req.Status = models.StatusCompleted
	store := &fakeCommitStore{request: req}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-1", []Batch{testBatch("BC-1")}, "user-1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCommitUnknownRequest(t *testing.T) {
	store := &fakeCommitStore{}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-404", []Batch{testBatch("BC-1")}, "user-1")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestCommitDuplicatePreCheckAborts(t *testing.T) {
	store := &fakeCommitStore{
		request:  pendingRequest("SIN-1"),
		existing: []string{"BC-2"},
	}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-1", []Batch{testBatch("BC-1", "BC-2")}, "user-1")
	dup, ok := AsDuplicateBarcodeError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"BC-2"}, dup.Barcodes)

	// Không có bất kỳ ghi nào xảy ra.
	assert.Empty(t, store.statusCalls)
	assert.Empty(t, store.intents)
	assert.Empty(t, store.details)
}

func TestCommitMidWriteFailureRevertsToPending(t *testing.T) {
	store := &fakeCommitStore{
		request:       pendingRequest("SIN-1"),
		failInventory: errors.New("connection reset"),
	}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-1", []Batch{testBatch("BC-1")}, "user-1")
	require.Error(t, err)

	// processing -> rollback về pending, xóa người xử lý.
	require.Len(t, store.statusCalls, 2)
	assert.Equal(t, statusCall{models.StatusProcessing, "user-1"}, store.statusCalls[0])
	assert.Equal(t, statusCall{models.StatusPending, ""}, store.statusCalls[1])

	// Intent vẫn còn pending để reconciler dọn.
	require.Len(t, store.intents, 1)
	assert.Empty(t, store.committedIntents)
}

func TestCommitInventoryDuplicatePropagates(t *testing.T) {
	store := &fakeCommitStore{
		request:       pendingRequest("SIN-1"),
		failInventory: &DuplicateBarcodeError{Barcodes: []string{"BC-1"}},
	}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-1", []Batch{testBatch("BC-1")}, "user-1")
	dup, ok := AsDuplicateBarcodeError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"BC-1"}, dup.Barcodes)

	// Vẫn rollback trạng thái như mọi thất bại ghi khác.
	assert.Equal(t, statusCall{models.StatusPending, ""}, store.statusCalls[len(store.statusCalls)-1])
}

func TestCommitAuditFailureTolerated(t *testing.T) {
	store := &fakeCommitStore{
		request:  pendingRequest("SIN-1"),
		failLogs: errors.New("audit collection unavailable"),
	}
	o := NewOrchestrator(store, nil)

	result, err := o.Commit(context.Background(), "SIN-1", []Batch{testBatch("BC-1")}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.BoxCount)
	assert.Equal(t, models.StatusCompleted, store.statusCalls[len(store.statusCalls)-1].status)
}

func TestCommitMarkIntentFailureTolerated(t *testing.T) {
	store := &fakeCommitStore{
		request:        pendingRequest("SIN-1"),
		failMarkIntent: errors.New("intent collection unavailable"),
	}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-1", []Batch{testBatch("BC-1")}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, store.statusCalls[len(store.statusCalls)-1].status)
}

// Sau một lần thất bại giữa chừng, intent của lần đó còn pending nên mọi
// commit mới — kể cả với bộ mã vạch vừa sinh lại — bị từ chối thay vì ghi đè
// lên phần dữ liệu dở. Chỉ sau khi reconciler dọn intent thì commit mới chạy.
func TestCommitRefusedWhileStaleIntentRemains(t *testing.T) {
	store := &fakeCommitStore{
		request:        pendingRequest("SIN-1"),
		failBatchItems: errors.New("connection reset"),
	}
	o := NewOrchestrator(store, nil)

	_, err := o.Commit(context.Background(), "SIN-1", []Batch{testBatch("BC-1", "BC-2")}, "user-1")
	require.Error(t, err)
	require.Len(t, store.inventory, 2) // phần ghi dở của lần một

	// Người dùng soạn lại: mã vạch được sinh mới nên khác hoàn toàn lần một.
	store.failBatchItems = nil
	retry := []Batch{testBatch("BC-3", "BC-4")}

	_, err = o.Commit(context.Background(), "SIN-1", retry, "user-1")
	assert.ErrorIs(t, err, ErrPriorCommitPending)

	// Không có thêm dòng tồn kho nào: không sinh ra tồn kho ma.
	assert.Len(t, store.inventory, 2)

	// Reconciler dọn intent (và các dòng dở) xong thì commit lại được.
	store.clearIntents()
	store.inventory = nil

	result, err := o.Commit(context.Background(), "SIN-1", retry, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.BoxCount)
	assert.Len(t, store.inventory, 2)
}

// Nộp lại đúng bộ mã cũ khi các dòng của lần trước vẫn còn trong kho:
// pre-check báo chúng là trùng lặp thay vì insert đôi.
func TestCommitRetryAfterPartialWriteReportsDuplicates(t *testing.T) {
	store := &fakeCommitStore{
		request:        pendingRequest("SIN-1"),
		failBatchItems: errors.New("connection reset"),
	}
	o := NewOrchestrator(store, nil)

	batches := []Batch{testBatch("BC-1", "BC-2")}
	_, err := o.Commit(context.Background(), "SIN-1", batches, "user-1")
	require.Error(t, err)

	// Lần đầu đã kịp ghi inventory trước khi batch items hỏng; mô phỏng lại
	// bằng cách cho pre-check thấy các mã đó. Intent đã được dọn nhưng dòng
	// tồn kho thì chưa.
	for _, rec := range store.inventory {
		store.existing = append(store.existing, rec.Barcode)
	}
	store.failBatchItems = nil
	store.clearIntents()

	_, err = o.Commit(context.Background(), "SIN-1", batches, "user-1")
	dup, ok := AsDuplicateBarcodeError(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"BC-1", "BC-2"}, dup.Barcodes)
}
