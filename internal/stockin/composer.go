// server/internal/stockin/composer.go
package stockin

import (
	"errors"
	"fmt"

	"wms-api-server/internal/barcode"
)

// Batch là một nhóm thùng cùng thuộc tính, chưa persist. Batch chỉ tồn tại
// trong bộ nhớ cho đến khi Orchestrator.Commit expand nó thành các bản ghi
// tồn kho; khi đó danh tính của batch gộp vào requestID của yêu cầu nhập kho.
type Batch struct {
	ProductID      string   `json:"productID"`
	ProductSKU     string   `json:"productSKU"`
	WarehouseID    string   `json:"warehouseID"`
	LocationID     string   `json:"locationID"`
	BoxCount       int      `json:"boxCount"`
	QuantityPerBox int      `json:"quantityPerBox"`
	Color          string   `json:"color,omitempty"`
	Size           string   `json:"size,omitempty"`
	Barcodes       []string `json:"barcodes"`
}

// BatchInput là dữ liệu người dùng để tạo một batch mới.
type BatchInput struct {
	ProductID      string
	ProductSKU     string // dùng làm prefix mã vạch; rỗng thì fallback UUID
	WarehouseID    string
	LocationID     string
	BoxCount       int
	QuantityPerBox int
	Color          string
	Size           string
}

// BatchPatch chứa các trường được phép sửa trên một batch đã có.
// Con trỏ nil nghĩa là giữ nguyên giá trị cũ.
type BatchPatch struct {
	LocationID     *string
	BoxCount       *int
	QuantityPerBox *int
	Color          *string
	Size           *string
}

var (
	ErrInvalidBoxCount = errors.New("box count must be greater than zero")
	ErrMissingRefs     = errors.New("product, warehouse and location are required")
)

// Composer giữ danh sách batch theo thứ tự thêm vào (thứ tự này quyết định
// thứ tự hiển thị và đánh số mã vạch).
type Composer struct {
	batches   []Batch
	editIndex int
}

func NewComposer() *Composer {
	return &Composer{editIndex: -1}
}

// AddBatch sinh mã vạch cho từng thùng và thêm batch vào cuối danh sách.
func (c *Composer) AddBatch(in BatchInput) (Batch, error) {
	if in.BoxCount <= 0 {
		return Batch{}, ErrInvalidBoxCount
	}
	if in.ProductID == "" || in.WarehouseID == "" || in.LocationID == "" {
		return Batch{}, ErrMissingRefs
	}

	b := Batch{
		ProductID:      in.ProductID,
		ProductSKU:     in.ProductSKU,
		WarehouseID:    in.WarehouseID,
		LocationID:     in.LocationID,
		BoxCount:       in.BoxCount,
		QuantityPerBox: in.QuantityPerBox,
		Color:          in.Color,
		Size:           in.Size,
		Barcodes:       barcode.Generate(in.ProductSKU, in.BoxCount),
	}
	c.batches = append(c.batches, b)
	return b, nil
}

// Batches trả về bản sao slice hiện tại, giữ nguyên thứ tự thêm vào.
func (c *Composer) Batches() []Batch {
	out := make([]Batch, len(c.batches))
	copy(out, c.batches)
	return out
}

// Len trả về số batch đang được soạn.
func (c *Composer) Len() int {
	return len(c.batches)
}

// EditBatch đánh dấu batch tại index là mục đang sửa.
func (c *Composer) EditBatch(index int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	c.editIndex = index
	return nil
}

// EditIndex trả về index đang sửa, -1 nếu không có.
func (c *Composer) EditIndex() int {
	return c.editIndex
}

// UpdateBatch merge các trường trong patch vào batch tại index.
// Nếu BoxCount thay đổi thì sinh lại toàn bộ mã vạch của batch để giữ
// bất biến len(Barcodes) == BoxCount.
func (c *Composer) UpdateBatch(index int, patch BatchPatch) (Batch, error) {
	if err := c.checkIndex(index); err != nil {
		return Batch{}, err
	}

	b := c.batches[index]
	if patch.LocationID != nil {
		b.LocationID = *patch.LocationID
	}
	if patch.QuantityPerBox != nil {
		b.QuantityPerBox = *patch.QuantityPerBox
	}
	if patch.Color != nil {
		b.Color = *patch.Color
	}
	if patch.Size != nil {
		b.Size = *patch.Size
	}
	if patch.BoxCount != nil && *patch.BoxCount != b.BoxCount {
		if *patch.BoxCount <= 0 {
			return Batch{}, ErrInvalidBoxCount
		}
		b.BoxCount = *patch.BoxCount
		b.Barcodes = barcode.Generate(b.ProductSKU, b.BoxCount)
	}

	c.batches[index] = b
	c.editIndex = -1
	return b, nil
}

// DeleteBatch xóa batch tại index.
func (c *Composer) DeleteBatch(index int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	c.batches = append(c.batches[:index], c.batches[index+1:]...)
	if c.editIndex == index {
		c.editIndex = -1
	}
	return nil
}

func (c *Composer) checkIndex(index int) error {
	if index < 0 || index >= len(c.batches) {
		return fmt.Errorf("batch index %d out of range", index)
	}
	return nil
}
