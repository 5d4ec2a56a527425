// server/internal/barcode/generator.go
package barcode

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generate sinh ra boxCount mã vạch ứng viên cho một lô nhập kho.
// Định dạng: {PREFIX}-{số thùng 3 chữ số}-{suffix}, trong đó suffix gồm
// timestamp base-36 cộng một đoạn ngẫu nhiên base-36. Các mã này chỉ là
// "gần như duy nhất"; tính duy nhất thật sự do unique index trên
// inventory.barcode đảm bảo lúc commit.
//
// Khi không có SKU hay category để làm prefix, fallback sang UUID cho từng thùng.
func Generate(prefix string, boxCount int) []string {
	if boxCount <= 0 {
		return nil
	}

	prefix = sanitizePrefix(prefix)

	codes := make([]string, 0, boxCount)
	for i := 0; i < boxCount; i++ {
		if prefix == "" {
			codes = append(codes, uuid.New().String())
			continue
		}
		codes = append(codes, fmt.Sprintf("%s-%03d-%s", prefix, i+1, uniqueSuffix()))
	}
	return codes
}

// sanitizePrefix chuẩn hóa phần đầu mã: in hoa, bỏ khoảng trắng.
func sanitizePrefix(prefix string) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	return strings.ReplaceAll(prefix, " ", "")
}

// uniqueSuffix kết hợp timestamp mili giây base-36 với 6 ký tự ngẫu nhiên base-36.
func uniqueSuffix() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	frag := randBase36(6)
	return strings.ToUpper(ts + frag)
}

const base36Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Sinh chuỗi ngẫu nhiên base-36
func randBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Charset[rand.Intn(len(base36Charset))]
	}
	return string(b)
}
