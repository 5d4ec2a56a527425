// server/internal/stockin/errors.go
package stockin

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestNotFound = errors.New("stock-in request not found")
	ErrEmptyCommit     = errors.New("commit requires at least one batch")

	// ErrInvalidState: yêu cầu không ở trạng thái pending nên không commit được.
	ErrInvalidState = errors.New("stock-in request is not in pending state")

	// ErrPriorCommitPending: một lần commit trước của cùng yêu cầu còn intent
	// chưa hoàn tất. Commit lại lúc này sẽ sinh bộ mã vạch mới và biến phần
	// ghi dở của lần trước thành tồn kho ma; phải chờ reconciler dọn xong.
	ErrPriorCommitPending = errors.New("a previous commit attempt is still awaiting cleanup")
)

// DuplicateBarcodeError báo các mã vạch đã tồn tại trong kho (hoặc trùng nhau
// ngay trong một lần commit). Đây là lỗi cứng ở mọi call site; danh sách mã
// được trả nguyên vẹn cho client hiển thị.
type DuplicateBarcodeError struct {
	Barcodes []string
}

func (e *DuplicateBarcodeError) Error() string {
	return fmt.Sprintf("duplicate barcodes: %s", strings.Join(e.Barcodes, ", "))
}

// AsDuplicateBarcodeError là helper gọn cho errors.As.
func AsDuplicateBarcodeError(err error) (*DuplicateBarcodeError, bool) {
	var dup *DuplicateBarcodeError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}
