package stockout

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

// fakeApprovalStore giữ tồn kho trong map và ghi lại mọi lời gọi ghi.
type fakeApprovalStore struct {
	request   *models.StockOutRequest
	inventory map[string]*models.InventoryRecord

	statusCalls        []statusCall
	inquiriesCompleted []string
	decrements         map[string]int
	details            []models.StockOutDetail
	processed          []models.StockOutProcessedItem

	failInquiries error
	failDecrement error
	failDetails   error
	failProcessed error
}

func newFakeApprovalStore(req *models.StockOutRequest) *fakeApprovalStore {
	return &fakeApprovalStore{
		request:    req,
		inventory:  make(map[string]*models.InventoryRecord),
		decrements: make(map[string]int),
	}
}

func (f *fakeApprovalStore) addInventory(barcode, productID string, qty int) {
	f.inventory[barcode] = &models.InventoryRecord{
		Barcode:   barcode,
		ProductID: productID,
		Quantity:  qty,
		Status:    models.InventoryAvailable,
	}
}

func (f *fakeApprovalStore) GetRequest(ctx context.Context, requestID string) (*models.StockOutRequest, error) {
	if f.request == nil || f.request.RequestID != requestID {
		return nil, ErrRequestNotFound
	}
	return f.request, nil
}

func (f *fakeApprovalStore) GetInventoryByBarcode(ctx context.Context, barcode string) (*models.InventoryRecord, error) {
	rec, ok := f.inventory[barcode]
	if !ok {
		return nil, &BarcodeNotFoundError{Barcode: barcode}
	}
	return rec, nil
}

func (f *fakeApprovalStore) SetRequestStatus(ctx context.Context, requestID, status, processedBy string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, processedBy: processedBy})
	return nil
}

func (f *fakeApprovalStore) CompleteInquiries(ctx context.Context, requestID string) error {
	if f.failInquiries != nil {
		return f.failInquiries
	}
	f.inquiriesCompleted = append(f.inquiriesCompleted, requestID)
	return nil
}

func (f *fakeApprovalStore) DecrementInventory(ctx context.Context, barcode string, qty int) error {
	if f.failDecrement != nil {
		return f.failDecrement
	}
	rec, ok := f.inventory[barcode]
	if !ok {
		return &BarcodeNotFoundError{Barcode: barcode}
	}
	// Mô phỏng filter quantity >= qty của store thật.
	if rec.Quantity < qty {
		return &ShortageError{Barcode: barcode, Requested: qty, Available: rec.Quantity}
	}
	rec.Quantity -= qty
	f.decrements[barcode] += qty
	return nil
}

func (f *fakeApprovalStore) InsertDetails(ctx context.Context, details []models.StockOutDetail) error {
	if f.failDetails != nil {
		return f.failDetails
	}
	f.details = append(f.details, details...)
	return nil
}

func (f *fakeApprovalStore) InsertProcessedItems(ctx context.Context, items []models.StockOutProcessedItem) error {
	if f.failProcessed != nil {
		return f.failProcessed
	}
	f.processed = append(f.processed, items...)
	return nil
}

func pendingStockOut(requestID string, items ...models.StockOutItem) *models.StockOutRequest {
	return &models.StockOutRequest{
		RequestID: requestID,
		Items:     items,
		Status:    models.StatusPending,
	}
}

func TestApproveSuccess(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 15}))
	store.addInventory("BC-1", "PORK-BELLY", 10)
	store.addInventory("BC-2", "PORK-BELLY", 10)

	p := NewProcessor(store, nil)

	result, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 10},
		{Barcode: "BC-2", QuantityDeducted: 5},
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.BatchCount)
	assert.Equal(t, 15, result.TotalDeducted)

	// Trừ đúng số lượng trên từng mã.
	assert.Equal(t, 0, store.inventory["BC-1"].Quantity)
	assert.Equal(t, 5, store.inventory["BC-2"].Quantity)

	// Trạng thái chuyển sang completed và inquiry liên quan được đóng.
	require.Len(t, store.statusCalls, 1)
	assert.Equal(t, statusCall{models.StatusCompleted, "admin-1"}, store.statusCalls[0])
	assert.Equal(t, []string{"SOUT-1"}, store.inquiriesCompleted)

	assert.Len(t, store.details, 2)
	assert.Len(t, store.processed, 2)
}

func TestApproveInsufficientTotalFailsFast(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 20}))
	store.addInventory("BC-1", "PORK-BELLY", 10)

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 10},
	}, "admin-1")
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	// Không có bất kỳ ghi nào xảy ra.
	assert.Empty(t, store.statusCalls)
	assert.Equal(t, 10, store.inventory["BC-1"].Quantity)
}

func TestApproveDuplicateBarcodeFailsFast(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 10}))
	store.addInventory("BC-1", "PORK-BELLY", 20)

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 5},
		{Barcode: "BC-1", QuantityDeducted: 5},
	}, "admin-1")
	assert.ErrorIs(t, err, ErrDuplicateDeduction)
	assert.Empty(t, store.statusCalls)
}

func TestApproveNonPositiveDeduction(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 5}))

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 0},
	}, "admin-1")
	assert.Error(t, err)
	assert.Empty(t, store.statusCalls)
}

func TestApprovePerBarcodeShortageNoWrites(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 10}))
	store.addInventory("BC-1", "PORK-BELLY", 3)

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 10},
	}, "admin-1")

	var shortage *ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, "BC-1", shortage.Barcode)
	assert.Equal(t, 10, shortage.Requested)
	assert.Equal(t, 3, shortage.Available)

	assert.Empty(t, store.statusCalls)
	assert.Equal(t, 3, store.inventory["BC-1"].Quantity)
}

func TestApproveUnknownBarcode(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 5}))

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-404", QuantityDeducted: 5},
	}, "admin-1")

	var notFound *BarcodeNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "BC-404", notFound.Barcode)
	assert.Empty(t, store.statusCalls)
}

func TestApproveProductMismatch(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 5}))
	store.addInventory("BC-1", "CHICKEN-WINGS", 10)

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 5},
	}, "admin-1")

	var mismatch *ProductMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "CHICKEN-WINGS", mismatch.ProductID)
	assert.Empty(t, store.statusCalls)
}

func TestApproveNonPendingRequest(t *testing.T) {
	req := pendingStockOut("SOUT-1", models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 5})
	req.Status = models.StatusCompleted
	store := newFakeApprovalStore(req)

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 5},
	}, "admin-1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestApproveWritePassFailureRevertsToPending(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 5}))
	store.addInventory("BC-1", "PORK-BELLY", 10)
	store.failDetails = errors.New("connection reset")

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 5},
	}, "admin-1")
	require.Error(t, err)

	// completed -> rollback về pending khi pha ghi hỏng.
	require.Len(t, store.statusCalls, 2)
	assert.Equal(t, statusCall{models.StatusCompleted, "admin-1"}, store.statusCalls[0])
	assert.Equal(t, statusCall{models.StatusPending, ""}, store.statusCalls[1])
}

func TestApproveConcurrentDecrementRevertsToPending(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 5}))
	store.addInventory("BC-1", "PORK-BELLY", 10)
	// Một lần trừ đồng thời khác lấy mất hàng giữa validate và ghi.
	store.failDecrement = &ShortageError{Barcode: "BC-1", Requested: 5, Available: 2}

	p := NewProcessor(store, nil)

	_, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 5},
	}, "admin-1")

	var shortage *ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, statusCall{models.StatusPending, ""}, store.statusCalls[len(store.statusCalls)-1])
}

func TestApproveAuditFailureTolerated(t *testing.T) {
	store := newFakeApprovalStore(pendingStockOut("SOUT-1",
		models.StockOutItem{ProductID: "PORK-BELLY", Quantity: 5}))
	store.addInventory("BC-1", "PORK-BELLY", 10)
	store.failProcessed = errors.New("audit collection unavailable")

	p := NewProcessor(store, nil)

	result, err := p.Approve(context.Background(), "SOUT-1", []DeductedBatch{
		{Barcode: "BC-1", QuantityDeducted: 5},
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalDeducted)
	assert.Equal(t, 5, store.inventory["BC-1"].Quantity)
}
