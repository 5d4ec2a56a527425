// server/internal/models/warehouse.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Warehouse struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WarehouseID string             `bson:"warehouseID" json:"warehouseID"` // User-friendly unique ID, e.g., "wh-north"
	Name        string             `bson:"name" json:"name"`
	Address     Address            `bson:"address" json:"address"`
	Status      string             `bson:"status" json:"status"` // e.g., "ACTIVE", "INACTIVE", "FULL_CAPACITY"
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Location là một vị trí lưu trữ cụ thể bên trong kho (khu/kệ/ô).
type Location struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LocationID  string             `bson:"locationID" json:"locationID"` // e.g., "wh-north-A-01-03"
	WarehouseID string             `bson:"warehouseID" json:"warehouseID"`
	Name        string             `bson:"name" json:"name"`
	Type        string             `bson:"type" json:"type"` // e.g., "RACK", "FLOOR", "COLD_ROOM"
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
