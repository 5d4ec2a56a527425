package models

// User struct matches the document in MongoDB
type User struct {
	Email       string `bson:"email" json:"email"`
	Name        string `bson:"name" json:"name"`
	Password    string `bson:"password" json:"-"`
	Role        string `bson:"role" json:"role"` // "superadmin", "admin", "worker"
	WarehouseID string `bson:"warehouseID" json:"warehouseID"`
	Status      string `bson:"status" json:"status"`
	UserID      string `bson:"userID" json:"userID"`
}
