// server/internal/api/handlers/transfer_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"wms-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TransferHandler struct {
	DB *mongo.Database
}

type TransferBoxPayload struct {
	Barcode      string `json:"barcode" binding:"required"`
	ToLocationID string `json:"toLocationID" binding:"required"`
	Notes        string `json:"notes"`
}

// TransferBox chuyển một thùng sang vị trí khác trong cùng kho. Cập nhật
// tồn kho và ghi lịch sử chuyển trong cùng một transaction.
func (h *TransferHandler) TransferBox(c *gin.Context) {
	userID := c.GetString("user_id")

	var payload TransferBoxPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Tra bản ghi tồn kho trước để biết vị trí nguồn và kho
	var record models.InventoryRecord
	if err := h.DB.Collection("inventory").FindOne(context.Background(),
		bson.M{"barcode": payload.Barcode}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Barcode not found in inventory"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory record"})
		}
		return
	}

	if record.LocationID == payload.ToLocationID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Box is already at the target location"})
		return
	}

	// Vị trí đích phải tồn tại trong cùng kho
	count, err := h.DB.Collection("locations").CountDocuments(context.Background(),
		bson.M{"locationID": payload.ToLocationID, "warehouseID": record.WarehouseID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check target location"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target location does not exist in this warehouse"})
		return
	}

	// Bắt đầu một session mới với MongoDB để thực hiện transaction
	session, err := h.DB.Client().StartSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start database session"})
		return
	}
	defer session.EndSession(context.Background())

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		// 1. Đổi vị trí của thùng; filter kèm vị trí nguồn để chặn hai
		// lần chuyển chạy song song trên cùng một thùng
		updateResult, err := h.DB.Collection("inventory").UpdateOne(sessCtx,
			bson.M{"barcode": payload.Barcode, "locationID": record.LocationID},
			bson.M{"$set": bson.M{"locationID": payload.ToLocationID, "updatedAt": time.Now()}})
		if err != nil {
			return nil, err
		}
		if updateResult.ModifiedCount == 0 {
			return nil, fmt.Errorf("box %s was moved by another transfer", payload.Barcode)
		}

		// 2. Ghi lịch sử chuyển
		newTransfer := models.Transfer{
			TransferID:     fmt.Sprintf("TRF-%s", uuid.New().String()[:8]),
			Barcode:        payload.Barcode,
			FromLocationID: record.LocationID,
			ToLocationID:   payload.ToLocationID,
			WarehouseID:    record.WarehouseID,
			MovedBy:        userID,
			Notes:          payload.Notes,
			CreatedAt:      time.Now(),
		}
		result, err := h.DB.Collection("transfers").InsertOne(sessCtx, newTransfer)
		if err != nil {
			return nil, err
		}

		newTransfer.ID = result.InsertedID.(primitive.ObjectID)
		return newTransfer, nil
	}

	result, err := session.WithTransaction(context.Background(), callback)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed", "details": err.Error()})
		return
	}

	createdTransfer := result.(models.Transfer)

	c.JSON(http.StatusCreated, createdTransfer)
}

// GetTransfers lấy lịch sử chuyển vị trí, lọc theo barcode hoặc kho.
func (h *TransferHandler) GetTransfers(c *gin.Context) {
	filter := bson.M{}
	if barcode := c.Query("barcode"); barcode != "" {
		filter["barcode"] = barcode
	}
	if warehouseID := c.Query("warehouseID"); warehouseID != "" {
		filter["warehouseID"] = warehouseID
	}

	cursor, err := h.DB.Collection("transfers").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query transfers"})
		return
	}
	defer cursor.Close(context.Background())

	var transfers []models.Transfer
	if err = cursor.All(context.Background(), &transfers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode transfers"})
		return
	}

	if transfers == nil {
		transfers = []models.Transfer{}
	}

	c.JSON(http.StatusOK, transfers)
}
