// server/internal/api/handlers/warehouse_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"wms-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type WarehouseHandler struct {
	DB *mongo.Database
}

type AddressRequest struct {
	FullText  string  `json:"fullText" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type CreateWarehouseRequest struct {
	WarehouseID string         `json:"warehouseID" binding:"required"`
	Name        string         `json:"name" binding:"required"`
	Address     AddressRequest `json:"address" binding:"required"`
}

type CreateLocationRequest struct {
	LocationID string `json:"locationID" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Type       string `json:"type" binding:"required"`
}

// CreateWarehouse tạo một kho mới
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("warehouses")

	// Kiểm tra xem warehouseID đã tồn tại chưa
	count, err := collection.CountDocuments(context.Background(), bson.M{"warehouseID": req.WarehouseID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for warehouse"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Warehouse with this ID already exists"})
		return
	}

	newWarehouse := models.Warehouse{
		WarehouseID: req.WarehouseID,
		Name:        req.Name,
		Address: models.Address{
			FullText:  req.Address.FullText,
			Latitude:  req.Address.Latitude,
			Longitude: req.Address.Longitude,
		},
		Status:    "ACTIVE",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newWarehouse)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create warehouse"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newWarehouse.ID = oid
	}

	c.JSON(http.StatusCreated, newWarehouse)
}

// GetAllWarehouses lấy danh sách tất cả các kho
func (h *WarehouseHandler) GetAllWarehouses(c *gin.Context) {
	cursor, err := h.DB.Collection("warehouses").Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query warehouses"})
		return
	}
	defer cursor.Close(context.Background())

	var warehouses []models.Warehouse
	if err = cursor.All(context.Background(), &warehouses); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode warehouses"})
		return
	}

	if warehouses == nil {
		warehouses = []models.Warehouse{}
	}

	c.JSON(http.StatusOK, warehouses)
}

// GetWarehouseByID lấy thông tin kho theo warehouseID
func (h *WarehouseHandler) GetWarehouseByID(c *gin.Context) {
	warehouseID := c.Param("id")

	var warehouse models.Warehouse
	err := h.DB.Collection("warehouses").FindOne(context.Background(), bson.M{"warehouseID": warehouseID}).Decode(&warehouse)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Warehouse not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve warehouse"})
		}
		return
	}

	c.JSON(http.StatusOK, warehouse)
}

// UpdateWarehouse cập nhật thông tin kho theo warehouseID
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	warehouseID := c.Param("id")

	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Collection("warehouses").UpdateOne(context.Background(),
		bson.M{"warehouseID": warehouseID},
		bson.M{"$set": bson.M{
			"name":      req.Name,
			"address":   req.Address,
			"updatedAt": time.Now(),
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update warehouse"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Warehouse not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Warehouse updated successfully"})
}

// CreateLocation thêm một vị trí lưu trữ vào kho
func (h *WarehouseHandler) CreateLocation(c *gin.Context) {
	warehouseID := c.Param("id")

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Kho phải tồn tại trước
	count, err := h.DB.Collection("warehouses").CountDocuments(context.Background(), bson.M{"warehouseID": warehouseID})
	if err != nil || count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Warehouse does not exist"})
		return
	}

	// LocationID phải duy nhất trong kho
	count, err = h.DB.Collection("locations").CountDocuments(context.Background(),
		bson.M{"warehouseID": warehouseID, "locationID": req.LocationID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for location"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Location %s already exists in this warehouse", req.LocationID)})
		return
	}

	newLocation := models.Location{
		LocationID:  req.LocationID,
		WarehouseID: warehouseID,
		Name:        req.Name,
		Type:        req.Type,
		Status:      "ACTIVE",
		CreatedAt:   time.Now(),
	}

	result, err := h.DB.Collection("locations").InsertOne(context.Background(), newLocation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create location"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newLocation.ID = oid
	}

	c.JSON(http.StatusCreated, newLocation)
}

// GetLocationsByWarehouse lấy danh sách vị trí của một kho
func (h *WarehouseHandler) GetLocationsByWarehouse(c *gin.Context) {
	warehouseID := c.Param("id")

	cursor, err := h.DB.Collection("locations").Find(context.Background(), bson.M{"warehouseID": warehouseID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query locations"})
		return
	}
	defer cursor.Close(context.Background())

	var locations []models.Location
	if err = cursor.All(context.Background(), &locations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode locations"})
		return
	}

	if locations == nil {
		locations = []models.Location{}
	}

	c.JSON(http.StatusOK, locations)
}
