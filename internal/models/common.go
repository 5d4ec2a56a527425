// server/internal/models/common.go
package models

// Trạng thái vòng đời của các yêu cầu nhập/xuất kho.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusRejected   = "rejected"
)

// Trạng thái của một bản ghi tồn kho.
const (
	InventoryAvailable = "available"
	InventoryReserved  = "reserved"
	InventorySold      = "sold"
	InventoryDamaged   = "damaged"
)

// Address là một object có cấu trúc để lưu thông tin địa chỉ.
type Address struct {
	FullText  string  `bson:"fullText" json:"fullText"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}
