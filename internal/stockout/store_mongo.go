// server/internal/stockout/store_mongo.go
package stockout

import (
	"context"
	"fmt"
	"time"

	"wms-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore là hiện thực Store trên MongoDB, dùng các collection stock_out,
// stock_out_details, stock_out_processed_items, customer_inquiries và inventory.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) GetRequest(ctx context.Context, requestID string) (*models.StockOutRequest, error) {
	var req models.StockOutRequest
	err := s.db.Collection("stock_out").FindOne(ctx, bson.M{"requestID": requestID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch stock-out request: %w", err)
	}
	return &req, nil
}

func (s *MongoStore) GetInventoryByBarcode(ctx context.Context, barcode string) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	err := s.db.Collection("inventory").FindOne(ctx, bson.M{"barcode": barcode}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &BarcodeNotFoundError{Barcode: barcode}
		}
		return nil, fmt.Errorf("failed to fetch inventory record: %w", err)
	}
	return &rec, nil
}

func (s *MongoStore) SetRequestStatus(ctx context.Context, requestID, status, processedBy string) error {
	set := bson.M{"status": status, "updatedAt": time.Now()}
	update := bson.M{"$set": set}
	if processedBy == "" {
		update["$unset"] = bson.M{"processedBy": ""}
	} else {
		set["processedBy"] = processedBy
	}

	result, err := s.db.Collection("stock_out").UpdateOne(ctx, bson.M{"requestID": requestID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (s *MongoStore) CompleteInquiries(ctx context.Context, requestID string) error {
	_, err := s.db.Collection("customer_inquiries").UpdateMany(ctx,
		bson.M{"stockOutRequestID": requestID},
		bson.M{"$set": bson.M{"status": models.StatusCompleted, "updatedAt": time.Now()}},
	)
	return err
}

// DecrementInventory trừ kho có điều kiện: filter đòi quantity >= qty nên một
// bản ghi không bao giờ bị âm, kể cả khi hai lần duyệt chạy đồng thời trên
// cùng mã vạch. ModifiedCount == 0 nghĩa là điều kiện không còn thỏa.
func (s *MongoStore) DecrementInventory(ctx context.Context, barcode string, qty int) error {
	result, err := s.db.Collection("inventory").UpdateOne(ctx,
		bson.M{"barcode": barcode, "quantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"quantity": -qty}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		// Truy lại số lượng hiện tại để báo lỗi chính xác.
		rec, ferr := s.GetInventoryByBarcode(ctx, barcode)
		if ferr != nil {
			return ferr
		}
		return &ShortageError{Barcode: barcode, Requested: qty, Available: rec.Quantity}
	}
	return nil
}

func (s *MongoStore) InsertDetails(ctx context.Context, details []models.StockOutDetail) error {
	docs := make([]interface{}, len(details))
	for i, d := range details {
		docs[i] = d
	}
	_, err := s.db.Collection("stock_out_details").InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) InsertProcessedItems(ctx context.Context, items []models.StockOutProcessedItem) error {
	docs := make([]interface{}, len(items))
	for i, it := range items {
		docs[i] = it
	}
	_, err := s.db.Collection("stock_out_processed_items").InsertMany(ctx, docs)
	return err
}
