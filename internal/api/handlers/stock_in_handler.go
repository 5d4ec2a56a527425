// server/internal/api/handlers/stock_in_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wms-api-server/internal/models"
	"wms-api-server/internal/s3"
	"wms-api-server/internal/socket"
	"wms-api-server/internal/stockin"
	"wms-api-server/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type StockInHandler struct {
	DB           *mongo.Database
	Orchestrator *stockin.Orchestrator
	Hub          *socket.Hub
	Notifier     *webhook.Notifier
	S3Uploader   *s3.Uploader
}

type CreateStockInRequestPayload struct {
	ProductID string `json:"productID" binding:"required"`
	BoxCount  int    `json:"boxCount" binding:"required,gt=0"`
	Notes     string `json:"notes"`
}

// BatchPayload là một batch trong body của request commit.
type BatchPayload struct {
	ProductID      string `json:"productID" binding:"required"`
	ProductSKU     string `json:"productSKU"`
	WarehouseID    string `json:"warehouseID" binding:"required"`
	LocationID     string `json:"locationID" binding:"required"`
	BoxCount       int    `json:"boxCount" binding:"required,gt=0"`
	QuantityPerBox int    `json:"quantityPerBox" binding:"required,gt=0"`
	Color          string `json:"color"`
	Size           string `json:"size"`
}

type CommitStockInPayload struct {
	Batches []BatchPayload `json:"batches" binding:"required,dive"` // dive: validate từng phần tử trong mảng
}

// CreateStockInRequest tạo một yêu cầu nhập kho mới ở trạng thái pending.
func (h *StockInHandler) CreateStockInRequest(c *gin.Context) {
	submitterID := c.GetString("user_id")

	var payload CreateStockInRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Sản phẩm phải tồn tại và còn active
	var product models.Product
	if err := h.DB.Collection("products").FindOne(context.Background(),
		bson.M{"sku": payload.ProductID, "active": true}).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist or is inactive"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check product"})
		return
	}

	newRequest := models.StockInRequest{
		RequestID:   fmt.Sprintf("SIN-%s", uuid.New().String()[:8]),
		ProductID:   payload.ProductID,
		BoxCount:    payload.BoxCount,
		Status:      models.StatusPending,
		SubmittedBy: submitterID,
		Notes:       payload.Notes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	collection := h.DB.Collection("stock_in")
	result, err := collection.InsertOne(context.Background(), newRequest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stock-in request"})
		return
	}

	newRequest.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, newRequest)
}

// GetAllStockInRequests lấy danh sách yêu cầu nhập kho, có thể lọc theo trạng thái.
func (h *StockInHandler) GetAllStockInRequests(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	collection := h.DB.Collection("stock_in")
	cursor, err := collection.Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query stock-in requests"})
		return
	}
	defer cursor.Close(context.Background())

	var requests []models.StockInRequest
	if err = cursor.All(context.Background(), &requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode requests"})
		return
	}

	if requests == nil {
		requests = []models.StockInRequest{}
	}

	c.JSON(http.StatusOK, requests)
}

// GetStockInRequestByID lấy chi tiết một yêu cầu nhập kho theo requestID.
func (h *StockInHandler) GetStockInRequestByID(c *gin.Context) {
	requestID := c.Param("id")

	var request models.StockInRequest
	if err := h.DB.Collection("stock_in").FindOne(context.Background(),
		bson.M{"requestID": requestID}).Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock-in request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock-in request"})
		}
		return
	}

	c.JSON(http.StatusOK, request)
}

// CommitStockIn soạn các batch từ payload rồi chạy orchestrator để ghi
// tồn kho. Mọi kết quả cuối (thành công, trùng mã, lỗi ghi) đều trả về một
// thông báo phân biệt được cho client.
func (h *StockInHandler) CommitStockIn(c *gin.Context) {
	requestID := c.Param("id")
	userID := c.GetString("user_id")

	var payload CommitStockInPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	composer := stockin.NewComposer()
	for _, b := range payload.Batches {
		if _, err := composer.AddBatch(stockin.BatchInput{
			ProductID:      b.ProductID,
			ProductSKU:     b.ProductSKU,
			WarehouseID:    b.WarehouseID,
			LocationID:     b.LocationID,
			BoxCount:       b.BoxCount,
			QuantityPerBox: b.QuantityPerBox,
			Color:          b.Color,
			Size:           b.Size,
		}); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.Orchestrator.Commit(c.Request.Context(), requestID, composer.Batches(), userID)
	if err != nil {
		if dup, ok := stockin.AsDuplicateBarcodeError(err); ok {
			c.JSON(http.StatusConflict, gin.H{
				"error":             "Some barcodes already exist in inventory",
				"duplicateBarcodes": dup.Barcodes,
			})
			return
		}
		switch {
		case errors.Is(err, stockin.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock-in request not found"})
		case errors.Is(err, stockin.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "Stock-in request is not pending"})
		case errors.Is(err, stockin.ErrPriorCommitPending):
			c.JSON(http.StatusConflict, gin.H{"error": "A previous commit for this request is still being cleaned up, try again later"})
		case errors.Is(err, stockin.ErrEmptyCommit):
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one batch is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit stock-in", "details": err.Error()})
		}
		return
	}

	// Thông báo sau commit: WebSocket cho người nộp, webhook cho hệ thống ngoài.
	h.Hub.SendJSON(userID, gin.H{
		"event":     "stock_in_committed",
		"requestID": result.RequestID,
		"boxCount":  result.BoxCount,
	})
	h.Notifier.StockInCommitted(c.Request.Context(), result.RequestID, userID, result.BoxCount, result.TotalQuantity)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Stock-in %s committed with %d boxes", result.RequestID, result.BoxCount),
		"result":  result,
	})
}

// UploadDeliveryPhoto upload ảnh minh chứng giao hàng cho yêu cầu nhập kho.
func (h *StockInHandler) UploadDeliveryPhoto(c *gin.Context) {
	requestID := c.Param("id")

	if h.S3Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("stock-in/%s/%d-%s", requestID, time.Now().Unix(), header.Filename)
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo", "details": err.Error()})
		return
	}

	result, err := h.DB.Collection("stock_in").UpdateOne(context.Background(),
		bson.M{"requestID": requestID},
		bson.M{"$set": bson.M{"deliveryPhotoURL": url, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach photo to request"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock-in request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "photoURL": url})
}
