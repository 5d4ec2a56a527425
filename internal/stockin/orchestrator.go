// server/internal/stockin/orchestrator.go
package stockin

import (
	"context"
	"fmt"
	"time"

	"wms-api-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Box là một thùng vật lý đã được expand từ batch. DetailID được sinh trước
// khi ghi và dùng làm khóa tương quan giữa stock_in_details, inventory và
// batch_inventory_items — không dựa vào thứ tự insert.
type Box struct {
	DetailID    string
	Barcode     string
	ProductID   string
	WarehouseID string
	LocationID  string
	Quantity    int
	Color       string
	Size        string
}

// Store là giao diện lưu trữ của orchestrator. Được inject lúc khởi tạo để
// test với store giả lập không cần database thật.
type Store interface {
	GetRequest(ctx context.Context, requestID string) (*models.StockInRequest, error)
	FindExistingBarcodes(ctx context.Context, barcodes []string) ([]string, error)
	// HasPendingIntent báo yêu cầu còn intent pending từ một lần commit trước.
	HasPendingIntent(ctx context.Context, requestID string) (bool, error)
	CreateIntent(ctx context.Context, intent models.StockInIntent) error
	MarkIntentCommitted(ctx context.Context, intentID string) error
	// SetRequestStatus cập nhật trạng thái và người xử lý; processedBy rỗng sẽ
	// xóa người xử lý hiện tại.
	SetRequestStatus(ctx context.Context, requestID, status, processedBy string) error
	InsertDetails(ctx context.Context, details []models.StockInDetail) error
	// InsertInventory trả về *DuplicateBarcodeError khi unique index trên
	// barcode bị vi phạm — tín hiệu trùng lặp có thẩm quyền cuối cùng.
	InsertInventory(ctx context.Context, records []models.InventoryRecord) error
	InsertBatchItems(ctx context.Context, items []models.BatchInventoryItem) error
	InsertBarcodeLogs(ctx context.Context, logs []models.BarcodeLog) error
}

// CommitResult tóm tắt một lần commit thành công.
type CommitResult struct {
	RequestID     string   `json:"requestID"`
	BoxCount      int      `json:"boxCount"`
	TotalQuantity int      `json:"totalQuantity"`
	Barcodes      []string `json:"barcodes"`
}

// Orchestrator thực hiện chuỗi ghi nhập kho theo thứ tự cố định, với
// compensating rollback: thất bại ở bất kỳ bước ghi nào (trừ audit
// best-effort) sẽ đưa yêu cầu về lại pending trước khi trả lỗi.
type Orchestrator struct {
	store  Store
	logger *zap.Logger
}

func NewOrchestrator(store Store, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{store: store, logger: logger}
}

// Commit expand các batch thành thùng, kiểm tra trùng mã vạch rồi ghi lần lượt
// intent -> trạng thái processing -> chi tiết -> tồn kho -> liên kết lô ->
// audit (best-effort) -> trạng thái completed.
//
// Chạy lại một commit đã thất bại sạch (chưa ghi gì) là an toàn. Sau thất bại
// giữa chừng, intent của lần trước còn pending và commit mới bị từ chối với
// ErrPriorCommitPending cho đến khi reconciler dọn phần ghi dở (xem
// internal/scheduler); mã vạch được sinh mới mỗi lần soạn nên không thể dựa
// vào unique index để chặn lần chạy lại. Nếu đúng bộ mã cũ được nộp lại khi
// các dòng dở vẫn còn, pre-check báo chúng là trùng lặp thay vì insert đôi.
func (o *Orchestrator) Commit(ctx context.Context, requestID string, batches []Batch, submittedBy string) (*CommitResult, error) {
	if len(batches) == 0 {
		return nil, ErrEmptyCommit
	}

	boxes, err := expand(batches)
	if err != nil {
		return nil, err
	}

	req, err := o.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, ErrInvalidState
	}

	// Một intent pending nghĩa là lần commit trước chưa được dọn; các dòng
	// nó đã ghi mang bộ mã vạch khác nên pre-check bên dưới không thấy chúng.
	pending, err := o.store.HasPendingIntent(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("intent lookup failed: %w", err)
	}
	if pending {
		return nil, ErrPriorCommitPending
	}

	barcodes := make([]string, len(boxes))
	for i, b := range boxes {
		barcodes[i] = b.Barcode
	}

	// Pre-check trùng lặp: chỉ để trả lỗi sớm và thân thiện. Giữa check và
	// insert vẫn có race; unique index ở InsertInventory mới là chốt chặn.
	existing, err := o.store.FindExistingBarcodes(ctx, barcodes)
	if err != nil {
		return nil, fmt.Errorf("duplicate pre-check failed: %w", err)
	}
	if len(existing) > 0 {
		return nil, &DuplicateBarcodeError{Barcodes: existing}
	}

	intent := models.StockInIntent{
		IntentID:  uuid.New().String(),
		RequestID: requestID,
		Barcodes:  barcodes,
		State:     models.IntentPending,
		CreatedAt: time.Now(),
	}
	if err := o.store.CreateIntent(ctx, intent); err != nil {
		return nil, fmt.Errorf("failed to record commit intent: %w", err)
	}

	if err := o.store.SetRequestStatus(ctx, requestID, models.StatusProcessing, submittedBy); err != nil {
		return nil, fmt.Errorf("failed to mark request processing: %w", err)
	}

	now := time.Now()

	details := make([]models.StockInDetail, len(boxes))
	for i, b := range boxes {
		details[i] = models.StockInDetail{
			DetailID:    b.DetailID,
			RequestID:   requestID,
			Barcode:     b.Barcode,
			ProductID:   b.ProductID,
			WarehouseID: b.WarehouseID,
			LocationID:  b.LocationID,
			Quantity:    b.Quantity,
			Color:       b.Color,
			Size:        b.Size,
			CreatedAt:   now,
		}
	}
	if err := o.store.InsertDetails(ctx, details); err != nil {
		o.revert(ctx, requestID)
		return nil, fmt.Errorf("failed to insert stock-in details: %w", err)
	}

	records := make([]models.InventoryRecord, len(boxes))
	for i, b := range boxes {
		records[i] = models.InventoryRecord{
			Barcode:     b.Barcode,
			ProductID:   b.ProductID,
			WarehouseID: b.WarehouseID,
			LocationID:  b.LocationID,
			Quantity:    b.Quantity,
			Color:       b.Color,
			Size:        b.Size,
			Status:      models.InventoryAvailable,
			BatchID:     requestID,
			DetailID:    b.DetailID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	if err := o.store.InsertInventory(ctx, records); err != nil {
		o.revert(ctx, requestID)
		return nil, err
	}

	items := make([]models.BatchInventoryItem, len(boxes))
	for i, b := range boxes {
		items[i] = models.BatchInventoryItem{
			BatchID:   requestID,
			Barcode:   b.Barcode,
			DetailID:  b.DetailID,
			CreatedAt: now,
		}
	}
	if err := o.store.InsertBatchItems(ctx, items); err != nil {
		o.revert(ctx, requestID)
		return nil, fmt.Errorf("failed to insert batch linkage rows: %w", err)
	}

	// Audit best-effort: lỗi chỉ được log, không làm hỏng commit.
	logs := make([]models.BarcodeLog, len(boxes))
	for i, b := range boxes {
		logs[i] = models.BarcodeLog{
			Barcode:     b.Barcode,
			Action:      "STOCK_IN",
			UserID:      submittedBy,
			ProductID:   b.ProductID,
			WarehouseID: b.WarehouseID,
			LocationID:  b.LocationID,
			Quantity:    b.Quantity,
			CreatedAt:   now,
		}
	}
	if err := o.store.InsertBarcodeLogs(ctx, logs); err != nil {
		o.logger.Warn("barcode audit insert failed",
			zap.String("requestID", requestID), zap.Error(err))
	}

	if err := o.store.SetRequestStatus(ctx, requestID, models.StatusCompleted, submittedBy); err != nil {
		o.revert(ctx, requestID)
		return nil, fmt.Errorf("failed to mark request completed: %w", err)
	}

	if err := o.store.MarkIntentCommitted(ctx, intent.IntentID); err != nil {
		// Reconciler sẽ thấy yêu cầu đã completed và tự dọn intent.
		o.logger.Warn("failed to mark intent committed",
			zap.String("requestID", requestID), zap.Error(err))
	}

	total := 0
	for _, b := range boxes {
		total += b.Quantity
	}
	return &CommitResult{
		RequestID:     requestID,
		BoxCount:      len(boxes),
		TotalQuantity: total,
		Barcodes:      barcodes,
	}, nil
}

// revert là compensating rollback: chỉ đưa trạng thái yêu cầu về pending và
// xóa người xử lý, không undo các dòng đã ghi. Phần ghi dở sẽ do reconciler dọn.
func (o *Orchestrator) revert(ctx context.Context, requestID string) {
	if err := o.store.SetRequestStatus(ctx, requestID, models.StatusPending, ""); err != nil {
		o.logger.Error("compensating rollback failed",
			zap.String("requestID", requestID), zap.Error(err))
	}
}

// expand trải các batch thành từng thùng, gán DetailID và kiểm tra trùng mã
// ngay trong một lần commit.
func expand(batches []Batch) ([]Box, error) {
	var boxes []Box
	seen := make(map[string]bool)
	var dups []string

	for _, batch := range batches {
		if len(batch.Barcodes) != batch.BoxCount {
			return nil, fmt.Errorf("batch has %d barcodes for %d boxes", len(batch.Barcodes), batch.BoxCount)
		}
		for _, code := range batch.Barcodes {
			if seen[code] {
				dups = append(dups, code)
				continue
			}
			seen[code] = true
			boxes = append(boxes, Box{
				DetailID:    uuid.New().String(),
				Barcode:     code,
				ProductID:   batch.ProductID,
				WarehouseID: batch.WarehouseID,
				LocationID:  batch.LocationID,
				Quantity:    batch.QuantityPerBox,
				Color:       batch.Color,
				Size:        batch.Size,
			})
		}
	}

	if len(dups) > 0 {
		return nil, &DuplicateBarcodeError{Barcodes: dups}
	}
	return boxes, nil
}
