// server/internal/scheduler/store_mongo.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"wms-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore là hiện thực Store của reconciler trên MongoDB.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) ListStalePendingIntents(ctx context.Context, olderThan time.Time) ([]models.StockInIntent, error) {
	cursor, err := s.db.Collection("stock_in_intents").Find(ctx, bson.M{
		"state":     models.IntentPending,
		"createdAt": bson.M{"$lt": olderThan},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var intents []models.StockInIntent
	if err := cursor.All(ctx, &intents); err != nil {
		return nil, err
	}
	return intents, nil
}

func (s *MongoStore) GetRequestStatus(ctx context.Context, requestID string) (string, error) {
	var req models.StockInRequest
	err := s.db.Collection("stock_in").FindOne(ctx, bson.M{"requestID": requestID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", fmt.Errorf("stock-in request %s not found", requestID)
		}
		return "", err
	}
	return req.Status, nil
}

// DeletePartialRows xóa các dòng ghi dở ở cả ba collection đích, giới hạn
// trong bộ mã vạch của intent. Xóa theo requestID/batchID không thôi sẽ cuốn
// luôn dữ liệu của một lần commit khác đang chạy cho cùng yêu cầu.
func (s *MongoStore) DeletePartialRows(ctx context.Context, requestID string, barcodes []string) error {
	if len(barcodes) == 0 {
		return nil
	}
	inSet := bson.M{"$in": barcodes}

	if _, err := s.db.Collection("stock_in_details").DeleteMany(ctx,
		bson.M{"requestID": requestID, "barcode": inSet}); err != nil {
		return fmt.Errorf("failed to delete partial details: %w", err)
	}
	if _, err := s.db.Collection("inventory").DeleteMany(ctx,
		bson.M{"batchID": requestID, "barcode": inSet}); err != nil {
		return fmt.Errorf("failed to delete partial inventory: %w", err)
	}
	if _, err := s.db.Collection("batch_inventory_items").DeleteMany(ctx,
		bson.M{"batchID": requestID, "barcode": inSet}); err != nil {
		return fmt.Errorf("failed to delete partial batch items: %w", err)
	}
	return nil
}

// ResetRequest chỉ match khi yêu cầu còn ở processing: một commit khác vừa
// chuyển nó sang completed (hoặc revert về pending) thì không bị ghi đè.
func (s *MongoStore) ResetRequest(ctx context.Context, requestID string) error {
	_, err := s.db.Collection("stock_in").UpdateOne(ctx,
		bson.M{"requestID": requestID, "status": models.StatusProcessing},
		bson.M{
			"$set":   bson.M{"status": models.StatusPending, "updatedAt": time.Now()},
			"$unset": bson.M{"processedBy": ""},
		},
	)
	return err
}

func (s *MongoStore) DeleteIntent(ctx context.Context, intentID string) error {
	_, err := s.db.Collection("stock_in_intents").DeleteOne(ctx, bson.M{"intentID": intentID})
	return err
}
