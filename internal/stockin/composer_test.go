package stockin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() BatchInput {
	return BatchInput{
		ProductID:      "PORK-BELLY",
		ProductSKU:     "MEAT-PB",
		WarehouseID:    "WH-01",
		LocationID:     "A-01-01",
		BoxCount:       3,
		QuantityPerBox: 10,
		Color:          "red",
		Size:           "L",
	}
}

func TestAddBatchGeneratesBarcodes(t *testing.T) {
	c := NewComposer()

	b, err := c.AddBatch(validInput())
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	assert.Len(t, b.Barcodes, b.BoxCount)
}

func TestAddBatchValidation(t *testing.T) {
	c := NewComposer()

	in := validInput()
	in.BoxCount = 0
	_, err := c.AddBatch(in)
	assert.ErrorIs(t, err, ErrInvalidBoxCount)

	in = validInput()
	in.LocationID = ""
	_, err = c.AddBatch(in)
	assert.ErrorIs(t, err, ErrMissingRefs)

	assert.Equal(t, 0, c.Len())
}

func TestBatchesReturnsCopyInOrder(t *testing.T) {
	c := NewComposer()

	first := validInput()
	second := validInput()
	second.ProductID = "PORK-RIBS"

	_, err := c.AddBatch(first)
	require.NoError(t, err)
	_, err = c.AddBatch(second)
	require.NoError(t, err)

	got := c.Batches()
	require.Len(t, got, 2)
	assert.Equal(t, "PORK-BELLY", got[0].ProductID)
	assert.Equal(t, "PORK-RIBS", got[1].ProductID)

	// Sửa bản sao không ảnh hưởng composer.
	got[0].ProductID = "mutated"
	assert.Equal(t, "PORK-BELLY", c.Batches()[0].ProductID)
}

func TestEditAndUpdateBatch(t *testing.T) {
	c := NewComposer()
	_, err := c.AddBatch(validInput())
	require.NoError(t, err)

	require.NoError(t, c.EditBatch(0))
	assert.Equal(t, 0, c.EditIndex())

	newLoc := "B-02-02"
	newQty := 20
	updated, err := c.UpdateBatch(0, BatchPatch{LocationID: &newLoc, QuantityPerBox: &newQty})
	require.NoError(t, err)

	assert.Equal(t, "B-02-02", updated.LocationID)
	assert.Equal(t, 20, updated.QuantityPerBox)
	// Cập nhật xong thì thoát chế độ sửa.
	assert.Equal(t, -1, c.EditIndex())
}

func TestUpdateBatchBoxCountRegeneratesBarcodes(t *testing.T) {
	c := NewComposer()
	original, err := c.AddBatch(validInput())
	require.NoError(t, err)
	require.Len(t, original.Barcodes, 3)

	newCount := 5
	updated, err := c.UpdateBatch(0, BatchPatch{BoxCount: &newCount})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.BoxCount)
	assert.Len(t, updated.Barcodes, 5)
}

func TestUpdateBatchRejectsNonPositiveBoxCount(t *testing.T) {
	c := NewComposer()
	_, err := c.AddBatch(validInput())
	require.NoError(t, err)

	bad := -1
	_, err = c.UpdateBatch(0, BatchPatch{BoxCount: &bad})
	assert.ErrorIs(t, err, ErrInvalidBoxCount)
}

func TestDeleteBatch(t *testing.T) {
	c := NewComposer()

	first := validInput()
	second := validInput()
	second.ProductID = "PORK-RIBS"
	_, err := c.AddBatch(first)
	require.NoError(t, err)
	_, err = c.AddBatch(second)
	require.NoError(t, err)

	require.NoError(t, c.EditBatch(1))
	require.NoError(t, c.DeleteBatch(1))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "PORK-BELLY", c.Batches()[0].ProductID)
	assert.Equal(t, -1, c.EditIndex())
}

func TestIndexOutOfRange(t *testing.T) {
	c := NewComposer()

	assert.Error(t, c.EditBatch(0))
	assert.Error(t, c.DeleteBatch(-1))
	_, err := c.UpdateBatch(2, BatchPatch{})
	assert.Error(t, err)
}
