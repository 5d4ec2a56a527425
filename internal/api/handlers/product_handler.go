// server/internal/api/handlers/product_handler.go
package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"wms-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProductHandler struct {
	DB *mongo.Database
}

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Unit        string `json:"unit" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

type UpdateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
	Active      *bool  `json:"active"`
}

// CreateProduct tạo sản phẩm mới với SKU sinh tự động.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newProduct := models.Product{
		SKU:         generateSKU(req.Category),
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		Category:    req.Category,
		Active:      true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	collection := h.DB.Collection("products")
	result, err := collection.InsertOne(context.Background(), newProduct)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Product with this SKU already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newProduct.ID = oid
	}

	c.JSON(http.StatusCreated, newProduct)
}

// GetAllProducts lấy danh sách sản phẩm, có thể lọc theo category và active.
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	filter := bson.M{}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if active := c.Query("active"); active != "" {
		filter["active"] = active == "true"
	}

	collection := h.DB.Collection("products")
	cursor, err := collection.Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query products"})
		return
	}
	defer cursor.Close(context.Background())

	var products []models.Product
	if err = cursor.All(context.Background(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode products"})
		return
	}

	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, products)
}

// GetProductBySKU lấy chi tiết một sản phẩm theo SKU.
func (h *ProductHandler) GetProductBySKU(c *gin.Context) {
	sku := c.Param("sku")

	var product models.Product
	err := h.DB.Collection("products").FindOne(context.Background(), bson.M{"sku": sku}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct cập nhật thông tin sản phẩm theo SKU.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	sku := c.Param("sku")

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Unit != "" {
		set["unit"] = req.Unit
	}
	if req.Category != "" {
		set["category"] = req.Category
	}
	if req.Active != nil {
		set["active"] = *req.Active
	}

	result, err := h.DB.Collection("products").UpdateOne(context.Background(),
		bson.M{"sku": sku}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
}

// DeactivateProduct tắt sản phẩm thay vì xóa vật lý — tồn kho cũ vẫn tham chiếu tới nó.
func (h *ProductHandler) DeactivateProduct(c *gin.Context) {
	sku := c.Param("sku")

	result, err := h.DB.Collection("products").UpdateOne(context.Background(),
		bson.M{"sku": sku},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate product"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated successfully"})
}

// generateSKU tự động tạo SKU theo category
func generateSKU(category string) string {
	prefix := strings.ToUpper(strings.TrimSpace(category))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}

	datePart := time.Now().Format("20060102")

	randomPart := randString(4)

	return fmt.Sprintf("%s-%s-%s", prefix, datePart, randomPart)
}

// Sinh chuỗi ngẫu nhiên
func randString(n int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
