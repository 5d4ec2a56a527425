// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub quản lý tất cả các client WebSocket đang lắng nghe sự kiện kho.
type Hub struct {
	// clients lưu các kết nối theo userID.
	clients map[string]*websocket.Conn
	// mu bảo vệ map clients khi truy cập từ nhiều goroutine.
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewHub tạo một Hub mới.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		logger:  logger,
	}
}

// Register thêm một client mới vào Hub.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = conn
	h.logger.Info("websocket client registered", zap.String("userID", userID))
}

// Unregister xóa một client khỏi Hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		h.logger.Info("websocket client unregistered", zap.String("userID", userID))
	}
}

// Send gửi một tin nhắn đến một client cụ thể.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[userID]
	if !ok {
		// Client có thể đã offline; không coi đây là lỗi nghiêm trọng.
		h.logger.Debug("websocket client not connected", zap.String("userID", userID))
		return nil
	}

	return conn.WriteMessage(websocket.TextMessage, message)
}

// SendJSON marshal payload rồi gửi tới client. Lỗi marshal/gửi chỉ được log.
func (h *Hub) SendJSON(userID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to marshal websocket payload", zap.Error(err))
		return
	}
	if err := h.Send(userID, data); err != nil {
		h.logger.Warn("failed to push websocket message",
			zap.String("userID", userID), zap.Error(err))
	}
}
