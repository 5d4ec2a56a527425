// server/internal/models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SKU         string             `bson:"sku" json:"sku"` // Unique, e.g., "WGT1-20260828-X7KQ"
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Unit        string             `bson:"unit" json:"unit"` // e.g., "box", "piece"
	Category    string             `bson:"category" json:"category"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
