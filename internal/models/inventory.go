// server/internal/models/inventory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryRecord là đại diện đã persist của một thùng hàng vật lý.
// Barcode có unique index ở tầng database; đây mới là nơi đảm bảo tính duy nhất,
// không phải bước sinh mã.
type InventoryRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Barcode     string             `bson:"barcode" json:"barcode"`
	ProductID   string             `bson:"productID" json:"productID"`
	WarehouseID string             `bson:"warehouseID" json:"warehouseID"`
	LocationID  string             `bson:"locationID" json:"locationID"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	Size        string             `bson:"size,omitempty" json:"size,omitempty"`
	Status      string             `bson:"status" json:"status"` // available|reserved|sold|damaged
	BatchID     string             `bson:"batchID" json:"batchID"`
	DetailID    string             `bson:"detailID" json:"detailID"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Transfer ghi lại một lần chuyển thùng giữa hai vị trí trong kho.
type Transfer struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransferID     string             `bson:"transferID" json:"transferID"` // e.g., "TRF-a1b2c3d4"
	Barcode        string             `bson:"barcode" json:"barcode"`
	FromLocationID string             `bson:"fromLocationID" json:"fromLocationID"`
	ToLocationID   string             `bson:"toLocationID" json:"toLocationID"`
	WarehouseID    string             `bson:"warehouseID" json:"warehouseID"`
	MovedBy        string             `bson:"movedBy" json:"movedBy"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
