// server/internal/models/stock_out.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockOutItem là một dòng sản phẩm/số lượng được yêu cầu xuất.
type StockOutItem struct {
	ProductID string `bson:"productID" json:"productID"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// StockOutRequest đại diện cho một yêu cầu xuất kho.
type StockOutRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID   string             `bson:"requestID" json:"requestID"` // e.g., "SOUT-a1b2c3d4"
	Items       []StockOutItem     `bson:"items" json:"items"`
	Status      string             `bson:"status" json:"status"`
	SubmittedBy string             `bson:"submittedBy" json:"submittedBy"`
	ProcessedBy string             `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StockOutDetail là một dòng chi tiết cho đúng một mã vạch đã bị trừ.
type StockOutDetail struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID        string             `bson:"requestID" json:"requestID"`
	Barcode          string             `bson:"barcode" json:"barcode"`
	QuantityDeducted int                `bson:"quantityDeducted" json:"quantityDeducted"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// StockOutProcessedItem là dòng audit cho một mã vạch đã xử lý xuất kho.
type StockOutProcessedItem struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID        string             `bson:"requestID" json:"requestID"`
	Barcode          string             `bson:"barcode" json:"barcode"`
	ProductID        string             `bson:"productID" json:"productID"`
	QuantityDeducted int                `bson:"quantityDeducted" json:"quantityDeducted"`
	ProcessedBy      string             `bson:"processedBy" json:"processedBy"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// CustomerInquiry là yêu cầu của khách hàng gắn với một yêu cầu xuất kho;
// được chuyển sang completed cùng lúc với yêu cầu xuất.
type CustomerInquiry struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InquiryID         string             `bson:"inquiryID" json:"inquiryID"`
	StockOutRequestID string             `bson:"stockOutRequestID" json:"stockOutRequestID"`
	CustomerName      string             `bson:"customerName" json:"customerName"`
	Message           string             `bson:"message,omitempty" json:"message,omitempty"`
	Status            string             `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
