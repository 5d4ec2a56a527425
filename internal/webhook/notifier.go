// server/internal/webhook/notifier.go
package webhook

import (
	"context"
	"net/http"
	"time"

	"wms-api-server/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// StockEvent là payload gửi ra webhook ngoài khi một thao tác kho hoàn tất.
type StockEvent struct {
	Event         string `json:"event"` // "stock_in_committed" | "stock_out_approved"
	RequestID     string `json:"requestID"`
	UserID        string `json:"userID"`
	BoxCount      int    `json:"boxCount,omitempty"`
	TotalQuantity int    `json:"totalQuantity,omitempty"`
	OccurredAt    string `json:"occurredAt"`
}

// Notifier đẩy sự kiện kho ra một webhook cấu hình sẵn (ví dụ n8n).
// Mọi lỗi đều best-effort: log rồi bỏ qua, không bao giờ chặn thao tác chính.
type Notifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewNotifier(cfg config.WebhookConfig, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Notifier{
		client: restyClient,
		url:    cfg.StockEventsURL,
		logger: logger,
	}
}

// StockInCommitted thông báo một lần commit nhập kho đã hoàn tất.
func (n *Notifier) StockInCommitted(ctx context.Context, requestID, userID string, boxCount, totalQuantity int) {
	n.post(ctx, StockEvent{
		Event:         "stock_in_committed",
		RequestID:     requestID,
		UserID:        userID,
		BoxCount:      boxCount,
		TotalQuantity: totalQuantity,
		OccurredAt:    time.Now().Format(time.RFC3339),
	})
}

// StockOutApproved thông báo một yêu cầu xuất kho đã được duyệt.
func (n *Notifier) StockOutApproved(ctx context.Context, requestID, userID string, totalDeducted int) {
	n.post(ctx, StockEvent{
		Event:         "stock_out_approved",
		RequestID:     requestID,
		UserID:        userID,
		TotalQuantity: totalDeducted,
		OccurredAt:    time.Now().Format(time.RFC3339),
	})
}

func (n *Notifier) post(ctx context.Context, event StockEvent) {
	if n.url == "" {
		return
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.url)
	if err != nil {
		n.logger.Warn("stock event webhook failed",
			zap.String("event", event.Event), zap.Error(err))
		return
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		n.logger.Warn("stock event webhook rejected",
			zap.String("event", event.Event), zap.Int("status", resp.StatusCode()))
	}
}
