// server/internal/models/stock_in.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockInRequest đại diện cho một yêu cầu nhập kho. Trạng thái đi theo vòng đời
// pending -> processing -> completed; thất bại sẽ được đưa về lại pending.
type StockInRequest struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID        string             `bson:"requestID" json:"requestID"` // e.g., "SIN-a1b2c3d4"
	ProductID        string             `bson:"productID" json:"productID"`
	BoxCount         int                `bson:"boxCount" json:"boxCount"`
	Status           string             `bson:"status" json:"status"`
	SubmittedBy      string             `bson:"submittedBy" json:"submittedBy"`
	ProcessedBy      string             `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	DeliveryPhotoURL string             `bson:"deliveryPhotoURL,omitempty" json:"deliveryPhotoURL,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StockInDetail là một dòng chi tiết cho đúng một thùng hàng đã nhập.
// DetailID là khóa tương quan tường minh: bản ghi tồn kho tương ứng giữ cùng
// một DetailID thay vì dựa vào thứ tự insert.
type StockInDetail struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DetailID    string             `bson:"detailID" json:"detailID"`
	RequestID   string             `bson:"requestID" json:"requestID"`
	Barcode     string             `bson:"barcode" json:"barcode"`
	ProductID   string             `bson:"productID" json:"productID"`
	WarehouseID string             `bson:"warehouseID" json:"warehouseID"`
	LocationID  string             `bson:"locationID" json:"locationID"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"`
	Size        string             `bson:"size,omitempty" json:"size,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// BatchInventoryItem liên kết một thùng trong kho với lô nhập (batchID chính là
// requestID của yêu cầu nhập kho cha).
type BatchInventoryItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchID   string             `bson:"batchID" json:"batchID"`
	Barcode   string             `bson:"barcode" json:"barcode"`
	DetailID  string             `bson:"detailID" json:"detailID"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// BarcodeLog là một dòng audit ghi lại thao tác trên mã vạch (best-effort).
type BarcodeLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Barcode     string             `bson:"barcode" json:"barcode"`
	Action      string             `bson:"action" json:"action"` // e.g., "STOCK_IN", "STOCK_OUT", "TRANSFER"
	UserID      string             `bson:"userID" json:"userID"`
	ProductID   string             `bson:"productID" json:"productID"`
	WarehouseID string             `bson:"warehouseID,omitempty" json:"warehouseID,omitempty"`
	LocationID  string             `bson:"locationID,omitempty" json:"locationID,omitempty"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Trạng thái của một intent nhập kho.
const (
	IntentPending   = "pending"
	IntentCommitted = "committed"
)

// StockInIntent là bản ghi "ý định commit" được ghi trước chuỗi ghi dữ liệu.
// Job reconciler sẽ dọn các intent pending quá hạn (xem internal/scheduler).
type StockInIntent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IntentID  string             `bson:"intentID" json:"intentID"`
	RequestID string             `bson:"requestID" json:"requestID"`
	Barcodes  []string           `bson:"barcodes" json:"barcodes"`
	State     string             `bson:"state" json:"state"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
