// server/internal/auth/auth.go
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	WarehouseID string `json:"warehouseID"`
	UserID      string `json:"userID"`
	jwt.RegisteredClaims
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Secret được nạp từ config lúc khởi động (xem cmd/api/main.go).
var jwtSecret []byte

// Init đặt secret dùng để ký và xác thực JWT.
func Init(secret string) {
	jwtSecret = []byte(secret)
}

// Secret trả về key hiện tại cho việc parse token.
func Secret() []byte {
	return jwtSecret
}

// GenerateJWT tạo token cho một user đã đăng nhập thành công.
func GenerateJWT(email, role, warehouseID, userID string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration)
	claims := &JWTClaims{
		Email:       email,
		Role:        role,
		WarehouseID: warehouseID,
		UserID:      userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}
