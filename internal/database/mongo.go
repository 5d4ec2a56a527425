// server/internal/database/mongo.go
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect mở kết nối tới MongoDB và ping để chắc chắn server còn sống.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, client.Database(dbName), nil
}

// EnsureIndexes tạo các index bắt buộc. Unique index trên inventory.barcode là
// nguồn sự thật cho tính duy nhất của mã vạch; bước pre-check trong orchestrator
// chỉ để trả lỗi thân thiện hơn.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	inventoryIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "barcode", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("inventory").Indexes().CreateOne(ctx, inventoryIdx); err != nil {
		return fmt.Errorf("failed to create inventory barcode index: %w", err)
	}

	productIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "sku", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("products").Indexes().CreateOne(ctx, productIdx); err != nil {
		return fmt.Errorf("failed to create product sku index: %w", err)
	}

	userIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("users").Indexes().CreateOne(ctx, userIdx); err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}

	// Các index phục vụ tra cứu thường dùng, không unique.
	secondary := []struct {
		collection string
		field      string
	}{
		{"stock_in", "requestID"},
		{"stock_out", "requestID"},
		{"stock_in_details", "requestID"},
		{"stock_in_intents", "requestID"},
		{"batch_inventory_items", "batchID"},
		{"inventory", "batchID"},
	}
	for _, s := range secondary {
		idx := mongo.IndexModel{Keys: bson.D{{Key: s.field, Value: 1}}}
		if _, err := db.Collection(s.collection).Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s.%s index: %w", s.collection, s.field, err)
		}
	}

	return nil
}
