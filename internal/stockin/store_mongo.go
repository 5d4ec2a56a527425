// server/internal/stockin/store_mongo.go
package stockin

import (
	"context"
	"fmt"
	"time"

	"wms-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore là hiện thực Store trên MongoDB, dùng các collection
// stock_in, stock_in_details, inventory, batch_inventory_items, barcode_logs
// và stock_in_intents.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) GetRequest(ctx context.Context, requestID string) (*models.StockInRequest, error) {
	var req models.StockInRequest
	err := s.db.Collection("stock_in").FindOne(ctx, bson.M{"requestID": requestID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch stock-in request: %w", err)
	}
	return &req, nil
}

func (s *MongoStore) FindExistingBarcodes(ctx context.Context, barcodes []string) ([]string, error) {
	cursor, err := s.db.Collection("inventory").Find(ctx,
		bson.M{"barcode": bson.M{"$in": barcodes}},
		options.Find().SetProjection(bson.M{"barcode": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []struct {
		Barcode string `bson:"barcode"`
	}
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	existing := make([]string, 0, len(found))
	for _, f := range found {
		existing = append(existing, f.Barcode)
	}
	return existing, nil
}

func (s *MongoStore) HasPendingIntent(ctx context.Context, requestID string) (bool, error) {
	count, err := s.db.Collection("stock_in_intents").CountDocuments(ctx, bson.M{
		"requestID": requestID,
		"state":     models.IntentPending,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check pending intents: %w", err)
	}
	return count > 0, nil
}

func (s *MongoStore) CreateIntent(ctx context.Context, intent models.StockInIntent) error {
	_, err := s.db.Collection("stock_in_intents").InsertOne(ctx, intent)
	return err
}

func (s *MongoStore) MarkIntentCommitted(ctx context.Context, intentID string) error {
	_, err := s.db.Collection("stock_in_intents").UpdateOne(ctx,
		bson.M{"intentID": intentID},
		bson.M{"$set": bson.M{"state": models.IntentCommitted}},
	)
	return err
}

func (s *MongoStore) SetRequestStatus(ctx context.Context, requestID, status, processedBy string) error {
	set := bson.M{"status": status, "updatedAt": time.Now()}
	update := bson.M{"$set": set}
	if processedBy == "" {
		update["$unset"] = bson.M{"processedBy": ""}
	} else {
		set["processedBy"] = processedBy
	}

	result, err := s.db.Collection("stock_in").UpdateOne(ctx, bson.M{"requestID": requestID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (s *MongoStore) InsertDetails(ctx context.Context, details []models.StockInDetail) error {
	docs := make([]interface{}, len(details))
	for i, d := range details {
		docs[i] = d
	}
	_, err := s.db.Collection("stock_in_details").InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) InsertInventory(ctx context.Context, records []models.InventoryRecord) error {
	docs := make([]interface{}, len(records))
	barcodes := make([]string, len(records))
	for i, r := range records {
		docs[i] = r
		barcodes[i] = r.Barcode
	}

	_, err := s.db.Collection("inventory").InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return nil
	}

	// Vi phạm unique index trên barcode: truy lại danh sách mã đang tồn tại
	// để trả về lỗi có cấu trúc giống hệt bước pre-check.
	if mongo.IsDuplicateKeyError(err) {
		existing, qerr := s.FindExistingBarcodes(ctx, barcodes)
		if qerr == nil && len(existing) > 0 {
			return &DuplicateBarcodeError{Barcodes: existing}
		}
		return &DuplicateBarcodeError{Barcodes: barcodes}
	}
	return fmt.Errorf("failed to insert inventory records: %w", err)
}

func (s *MongoStore) InsertBatchItems(ctx context.Context, items []models.BatchInventoryItem) error {
	docs := make([]interface{}, len(items))
	for i, it := range items {
		docs[i] = it
	}
	_, err := s.db.Collection("batch_inventory_items").InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) InsertBarcodeLogs(ctx context.Context, logs []models.BarcodeLog) error {
	docs := make([]interface{}, len(logs))
	for i, l := range logs {
		docs[i] = l
	}
	_, err := s.db.Collection("barcode_logs").InsertMany(ctx, docs)
	return err
}
