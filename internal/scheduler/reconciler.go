// server/internal/scheduler/reconciler.go
package scheduler

import (
	"context"
	"time"

	"wms-api-server/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Store là phần lưu trữ mà reconciler cần để dọn các intent nhập kho bị treo.
type Store interface {
	ListStalePendingIntents(ctx context.Context, olderThan time.Time) ([]models.StockInIntent, error)
	GetRequestStatus(ctx context.Context, requestID string) (string, error)
	// DeletePartialRows xóa các dòng chi tiết/tồn kho/liên kết đã ghi dở,
	// chỉ trong phạm vi bộ mã vạch mà intent đã ghi lại. Một lần commit khác
	// của cùng yêu cầu dùng bộ mã khác nên không bị đụng vào.
	DeletePartialRows(ctx context.Context, requestID string, barcodes []string) error
	// ResetRequest đưa yêu cầu về pending, chỉ khi nó còn ở processing để
	// không ghi đè một commit vừa hoàn tất song song với lượt quét.
	ResetRequest(ctx context.Context, requestID string) error
	DeleteIntent(ctx context.Context, intentID string) error
}

// Reconciler chạy định kỳ, tìm các intent còn pending quá hạn và hoàn tất việc
// rollback mà compensating reset lúc runtime không làm: xóa phần dữ liệu ghi
// dở rồi đưa yêu cầu về pending để người dùng commit lại từ đầu.
type Reconciler struct {
	cron     *cron.Cron
	store    Store
	logger   *zap.Logger
	schedule string
	cutoff   time.Duration
}

func NewReconciler(store Store, schedule string, staleAfter time.Duration, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		cron:     cron.New(),
		store:    store,
		logger:   logger,
		schedule: schedule,
		cutoff:   staleAfter,
	}
}

// Start đăng ký job sweep theo lịch cấu hình và khởi động cron.
func (r *Reconciler) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.runSweep); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("intent reconciler started", zap.String("schedule", r.schedule))
	return nil
}

// Stop dừng cron; các job đang chạy được phép chạy nốt.
func (r *Reconciler) Stop() {
	r.cron.Stop()
	r.logger.Info("intent reconciler stopped")
}

func (r *Reconciler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := r.Sweep(ctx); err != nil {
		r.logger.Error("intent sweep failed", zap.Error(err))
	}
}

// Sweep xử lý một lượt quét. Tách riêng để test gọi trực tiếp không qua cron.
func (r *Reconciler) Sweep(ctx context.Context) error {
	stale, err := r.store.ListStalePendingIntents(ctx, time.Now().Add(-r.cutoff))
	if err != nil {
		return err
	}

	for _, intent := range stale {
		status, err := r.store.GetRequestStatus(ctx, intent.RequestID)
		if err != nil {
			r.logger.Warn("cannot resolve request for stale intent",
				zap.String("requestID", intent.RequestID), zap.Error(err))
			continue
		}

		// Yêu cầu đã hoàn tất: chỉ là intent quên được đánh dấu, dọn luôn.
		if status == models.StatusCompleted {
			if err := r.store.DeleteIntent(ctx, intent.IntentID); err != nil {
				r.logger.Warn("failed to delete committed intent",
					zap.String("intentID", intent.IntentID), zap.Error(err))
			}
			continue
		}

		// Commit dở dang: xóa phần đã ghi, trả yêu cầu về pending.
		if err := r.store.DeletePartialRows(ctx, intent.RequestID, intent.Barcodes); err != nil {
			r.logger.Error("failed to delete partial rows",
				zap.String("requestID", intent.RequestID), zap.Error(err))
			continue
		}
		if err := r.store.ResetRequest(ctx, intent.RequestID); err != nil {
			r.logger.Error("failed to reset stale request",
				zap.String("requestID", intent.RequestID), zap.Error(err))
			continue
		}
		if err := r.store.DeleteIntent(ctx, intent.IntentID); err != nil {
			r.logger.Warn("failed to delete rolled-back intent",
				zap.String("intentID", intent.IntentID), zap.Error(err))
			continue
		}

		r.logger.Info("rolled back incomplete stock-in commit",
			zap.String("requestID", intent.RequestID),
			zap.Int("barcodes", len(intent.Barcodes)))
	}

	return nil
}
