// server/internal/api/handlers/stock_out_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wms-api-server/internal/models"
	"wms-api-server/internal/socket"
	"wms-api-server/internal/stockout"
	"wms-api-server/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type StockOutHandler struct {
	DB        *mongo.Database
	Processor *stockout.Processor
	Hub       *socket.Hub
	Notifier  *webhook.Notifier
}

type CreateStockOutRequestPayload struct {
	Items []models.StockOutItem `json:"items" binding:"required,dive"`
	Notes string                `json:"notes"`
}

type DeductedBatchPayload struct {
	Barcode          string `json:"barcode" binding:"required"`
	QuantityDeducted int    `json:"quantityDeducted" binding:"required,gt=0"`
}

type ApproveStockOutPayload struct {
	DeductedBatches []DeductedBatchPayload `json:"deductedBatches" binding:"required,dive"`
}

// CreateStockOutRequest tạo một yêu cầu xuất kho mới ở trạng thái pending.
func (h *StockOutHandler) CreateStockOutRequest(c *gin.Context) {
	submitterID := c.GetString("user_id")

	var payload CreateStockOutRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(payload.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one item is required"})
		return
	}
	for _, item := range payload.Items {
		if item.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Quantity for product %s must be positive", item.ProductID)})
			return
		}
	}

	newRequest := models.StockOutRequest{
		RequestID:   fmt.Sprintf("SOUT-%s", uuid.New().String()[:8]),
		Items:       payload.Items,
		Status:      models.StatusPending,
		SubmittedBy: submitterID,
		Notes:       payload.Notes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := h.DB.Collection("stock_out").InsertOne(context.Background(), newRequest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stock-out request"})
		return
	}

	newRequest.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newRequest)
}

// GetAllStockOutRequests lấy danh sách yêu cầu xuất kho, có thể lọc theo trạng thái.
func (h *StockOutHandler) GetAllStockOutRequests(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.DB.Collection("stock_out").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query stock-out requests"})
		return
	}
	defer cursor.Close(context.Background())

	var requests []models.StockOutRequest
	if err = cursor.All(context.Background(), &requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode requests"})
		return
	}

	if requests == nil {
		requests = []models.StockOutRequest{}
	}

	c.JSON(http.StatusOK, requests)
}

// GetStockOutRequestByID lấy chi tiết một yêu cầu xuất kho theo requestID.
func (h *StockOutHandler) GetStockOutRequestByID(c *gin.Context) {
	requestID := c.Param("id")

	var request models.StockOutRequest
	if err := h.DB.Collection("stock_out").FindOne(context.Background(),
		bson.M{"requestID": requestID}).Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock-out request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock-out request"})
		}
		return
	}

	c.JSON(http.StatusOK, request)
}

// ApproveStockOut duyệt yêu cầu xuất kho và trừ tồn theo danh sách batch
// đã chọn. Processor kiểm tra toàn bộ trước khi ghi nên yêu cầu không hợp lệ
// sẽ bị từ chối mà không đụng vào tồn kho.
func (h *StockOutHandler) ApproveStockOut(c *gin.Context) {
	requestID := c.Param("id")
	userID := c.GetString("user_id")

	var payload ApproveStockOutPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batches := make([]stockout.DeductedBatch, 0, len(payload.DeductedBatches))
	for _, b := range payload.DeductedBatches {
		batches = append(batches, stockout.DeductedBatch{
			Barcode:          b.Barcode,
			QuantityDeducted: b.QuantityDeducted,
		})
	}

	result, err := h.Processor.Approve(c.Request.Context(), requestID, batches, userID)
	if err != nil {
		var notFound *stockout.BarcodeNotFoundError
		var shortage *stockout.ShortageError
		var mismatch *stockout.ProductMismatchError
		switch {
		case errors.Is(err, stockout.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock-out request not found"})
		case errors.As(err, &notFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "barcode": notFound.Barcode})
		case errors.As(err, &shortage):
			c.JSON(http.StatusConflict, gin.H{
				"error":     err.Error(),
				"barcode":   shortage.Barcode,
				"requested": shortage.Requested,
				"available": shortage.Available,
			})
		case errors.As(err, &mismatch):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "barcode": mismatch.Barcode})
		case errors.Is(err, stockout.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "Stock-out request is not pending"})
		case errors.Is(err, stockout.ErrInsufficientQuantity),
			errors.Is(err, stockout.ErrDuplicateDeduction):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve stock-out", "details": err.Error()})
		}
		return
	}

	h.Hub.SendJSON(userID, gin.H{
		"event":         "stock_out_approved",
		"requestID":     result.RequestID,
		"totalDeducted": result.TotalDeducted,
	})
	h.Notifier.StockOutApproved(c.Request.Context(), result.RequestID, userID, result.TotalDeducted)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": result.Message,
		"result":  result,
	})
}

// CreateCustomerInquiry ghi nhận yêu cầu hỏi hàng của khách gắn với một
// yêu cầu xuất kho. Các inquiry này được đóng tự động khi yêu cầu được duyệt.
func (h *StockOutHandler) CreateCustomerInquiry(c *gin.Context) {
	var payload struct {
		StockOutRequestID string `json:"stockOutRequestID" binding:"required"`
		CustomerName      string `json:"customerName" binding:"required"`
		Message           string `json:"message"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.DB.Collection("stock_out").CountDocuments(context.Background(),
		bson.M{"requestID": payload.StockOutRequestID})
	if err != nil || count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock-out request does not exist"})
		return
	}

	inquiry := models.CustomerInquiry{
		InquiryID:         fmt.Sprintf("INQ-%s", uuid.New().String()[:8]),
		StockOutRequestID: payload.StockOutRequestID,
		CustomerName:      payload.CustomerName,
		Message:           payload.Message,
		Status:            models.StatusPending,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if _, err := h.DB.Collection("customer_inquiries").InsertOne(context.Background(), inquiry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inquiry"})
		return
	}

	c.JSON(http.StatusCreated, inquiry)
}
