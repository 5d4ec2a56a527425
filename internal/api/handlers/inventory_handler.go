// server/internal/api/handlers/inventory_handler.go
package handlers

import (
	"context"
	"net/http"

	"wms-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type InventoryHandler struct {
	DB *mongo.Database
}

// GetInventory lấy danh sách bản ghi tồn kho, lọc theo kho, sản phẩm,
// trạng thái hoặc batch qua query param.
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	filter := bson.M{}
	if warehouseID := c.Query("warehouseID"); warehouseID != "" {
		filter["warehouseID"] = warehouseID
	}
	if productID := c.Query("productID"); productID != "" {
		filter["productID"] = productID
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if batchID := c.Query("batchID"); batchID != "" {
		filter["batchID"] = batchID
	}

	cursor, err := h.DB.Collection("inventory").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query inventory"})
		return
	}
	defer cursor.Close(context.Background())

	var records []models.InventoryRecord
	if err = cursor.All(context.Background(), &records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode inventory records"})
		return
	}

	if records == nil {
		records = []models.InventoryRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// GetInventoryByBarcode tra cứu một bản ghi tồn kho theo barcode.
func (h *InventoryHandler) GetInventoryByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")

	var record models.InventoryRecord
	if err := h.DB.Collection("inventory").FindOne(context.Background(),
		bson.M{"barcode": barcode}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Barcode not found in inventory"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory record"})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetBarcodeHistory lấy lịch sử thao tác của một barcode từ log kiểm kê.
func (h *InventoryHandler) GetBarcodeHistory(c *gin.Context) {
	barcode := c.Param("barcode")

	cursor, err := h.DB.Collection("barcode_logs").Find(context.Background(),
		bson.M{"barcode": barcode})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query barcode logs"})
		return
	}
	defer cursor.Close(context.Background())

	var logs []models.BarcodeLog
	if err = cursor.All(context.Background(), &logs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode barcode logs"})
		return
	}

	if logs == nil {
		logs = []models.BarcodeLog{}
	}

	c.JSON(http.StatusOK, logs)
}
