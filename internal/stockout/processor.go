// server/internal/stockout/processor.go
package stockout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wms-api-server/internal/models"

	"go.uber.org/zap"
)

var (
	ErrRequestNotFound = errors.New("stock-out request not found")
	ErrInvalidState    = errors.New("stock-out request is not in pending state")

	// ErrInsufficientQuantity: tổng số lượng quét được nhỏ hơn số lượng yêu cầu.
	ErrInsufficientQuantity = errors.New("scanned quantity is less than requested quantity")

	// ErrDuplicateDeduction: cùng một mã vạch xuất hiện hai lần trong input.
	ErrDuplicateDeduction = errors.New("duplicate barcode in deduction list")
)

// BarcodeNotFoundError: mã vạch quét vào không có trong kho.
type BarcodeNotFoundError struct {
	Barcode string
}

func (e *BarcodeNotFoundError) Error() string {
	return fmt.Sprintf("barcode %s not found in inventory", e.Barcode)
}

// ShortageError: số lượng muốn trừ vượt quá số lượng hiện có của mã vạch.
type ShortageError struct {
	Barcode   string
	Requested int
	Available int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("barcode %s has quantity %d, cannot deduct %d", e.Barcode, e.Available, e.Requested)
}

// ProductMismatchError: mã vạch thuộc sản phẩm không nằm trong yêu cầu xuất.
type ProductMismatchError struct {
	Barcode   string
	ProductID string
}

func (e *ProductMismatchError) Error() string {
	return fmt.Sprintf("barcode %s belongs to product %s which is not in the request", e.Barcode, e.ProductID)
}

// DeductedBatch là một chỉ thị trừ kho: mã vạch và số lượng cần trừ.
// Không được persist như một entity riêng.
type DeductedBatch struct {
	Barcode          string `json:"barcode"`
	QuantityDeducted int    `json:"quantityDeducted"`
}

// Store là giao diện lưu trữ của processor, inject lúc khởi tạo.
type Store interface {
	GetRequest(ctx context.Context, requestID string) (*models.StockOutRequest, error)
	GetInventoryByBarcode(ctx context.Context, barcode string) (*models.InventoryRecord, error)
	SetRequestStatus(ctx context.Context, requestID, status, processedBy string) error
	CompleteInquiries(ctx context.Context, requestID string) error
	// DecrementInventory trừ kho với filter quantity >= qty; store báo lỗi khi
	// không dòng nào khớp (một lần trừ đồng thời khác đã lấy mất hàng).
	DecrementInventory(ctx context.Context, barcode string, qty int) error
	InsertDetails(ctx context.Context, details []models.StockOutDetail) error
	InsertProcessedItems(ctx context.Context, items []models.StockOutProcessedItem) error
}

// ApprovalResult tóm tắt một lần duyệt xuất kho thành công.
type ApprovalResult struct {
	RequestID     string `json:"requestID"`
	BatchCount    int    `json:"batchCount"`
	TotalDeducted int    `json:"totalDeducted"`
	Message       string `json:"message"`
}

// Processor duyệt yêu cầu xuất kho theo hai pha: validate toàn bộ (không ghi
// gì) rồi mới ghi. Pha ghi dùng cùng chính sách compensating rollback với
// nhập kho: thất bại sẽ đưa yêu cầu về lại pending trước khi trả lỗi.
type Processor struct {
	store  Store
	logger *zap.Logger
}

func NewProcessor(store Store, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{store: store, logger: logger}
}

// Approve xác nhận và thực hiện trừ kho cho một yêu cầu xuất.
func (p *Processor) Approve(ctx context.Context, requestID string, batches []DeductedBatch, userID string) (*ApprovalResult, error) {
	req, err := p.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, ErrInvalidState
	}

	requested := 0
	allowedProducts := make(map[string]bool)
	for _, item := range req.Items {
		requested += item.Quantity
		allowedProducts[item.ProductID] = true
	}

	// Fail fast: tổng quét được phải phủ đủ số lượng yêu cầu.
	scanned := 0
	seen := make(map[string]bool)
	for _, b := range batches {
		if b.QuantityDeducted <= 0 {
			return nil, fmt.Errorf("barcode %s has non-positive deduction", b.Barcode)
		}
		if seen[b.Barcode] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDeduction, b.Barcode)
		}
		seen[b.Barcode] = true
		scanned += b.QuantityDeducted
	}
	if scanned < requested {
		return nil, fmt.Errorf("%w: scanned %d, requested %d", ErrInsufficientQuantity, scanned, requested)
	}

	// Pha validate: resolve từng mã vạch, kiểm tra số lượng và sản phẩm.
	// Chưa có bất kỳ ghi nào xảy ra trước khi pha này qua hết.
	resolved := make([]*models.InventoryRecord, len(batches))
	for i, b := range batches {
		rec, err := p.store.GetInventoryByBarcode(ctx, b.Barcode)
		if err != nil {
			return nil, err
		}
		if rec.Quantity < b.QuantityDeducted {
			return nil, &ShortageError{Barcode: b.Barcode, Requested: b.QuantityDeducted, Available: rec.Quantity}
		}
		if !allowedProducts[rec.ProductID] {
			return nil, &ProductMismatchError{Barcode: b.Barcode, ProductID: rec.ProductID}
		}
		resolved[i] = rec
	}

	// Pha ghi. Thứ tự: trạng thái completed -> inquiry liên quan -> trừ từng
	// mã -> dòng chi tiết + dòng audit.
	if err := p.store.SetRequestStatus(ctx, requestID, models.StatusCompleted, userID); err != nil {
		return nil, fmt.Errorf("failed to mark request completed: %w", err)
	}

	if err := p.store.CompleteInquiries(ctx, requestID); err != nil {
		p.revert(ctx, requestID)
		return nil, fmt.Errorf("failed to complete linked inquiries: %w", err)
	}

	now := time.Now()
	details := make([]models.StockOutDetail, 0, len(batches))
	processed := make([]models.StockOutProcessedItem, 0, len(batches))

	for i, b := range batches {
		if err := p.store.DecrementInventory(ctx, b.Barcode, b.QuantityDeducted); err != nil {
			p.revert(ctx, requestID)
			return nil, fmt.Errorf("failed to deduct barcode %s: %w", b.Barcode, err)
		}
		details = append(details, models.StockOutDetail{
			RequestID:        requestID,
			Barcode:          b.Barcode,
			QuantityDeducted: b.QuantityDeducted,
			CreatedAt:        now,
		})
		processed = append(processed, models.StockOutProcessedItem{
			RequestID:        requestID,
			Barcode:          b.Barcode,
			ProductID:        resolved[i].ProductID,
			QuantityDeducted: b.QuantityDeducted,
			ProcessedBy:      userID,
			CreatedAt:        now,
		})
	}

	if err := p.store.InsertDetails(ctx, details); err != nil {
		p.revert(ctx, requestID)
		return nil, fmt.Errorf("failed to insert stock-out details: %w", err)
	}
	if err := p.store.InsertProcessedItems(ctx, processed); err != nil {
		// Dòng processed item là audit; lỗi chỉ log, không hủy lần duyệt.
		p.logger.Warn("processed-item audit insert failed",
			zap.String("requestID", requestID), zap.Error(err))
	}

	return &ApprovalResult{
		RequestID:     requestID,
		BatchCount:    len(batches),
		TotalDeducted: scanned,
		Message:       fmt.Sprintf("stock-out %s approved, %d units deducted", requestID, scanned),
	}, nil
}

// revert đưa yêu cầu xuất về lại pending sau thất bại ở pha ghi. Các lần trừ
// kho đã thực hiện không được undo; yêu cầu vẫn ở pending để xử lý lại có
// kiểm soát.
func (p *Processor) revert(ctx context.Context, requestID string) {
	if err := p.store.SetRequestStatus(ctx, requestID, models.StatusPending, ""); err != nil {
		p.logger.Error("compensating rollback failed",
			zap.String("requestID", requestID), zap.Error(err))
	}
}
