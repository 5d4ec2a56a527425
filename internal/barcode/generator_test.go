package barcode

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCountMatchesBoxCount(t *testing.T) {
	codes := Generate("PORK-BELLY", 5)
	assert.Len(t, codes, 5)
}

func TestGenerateFormat(t *testing.T) {
	codes := Generate("wgt 1", 3)
	require.Len(t, codes, 3)

	// Prefix được in hoa, bỏ khoảng trắng; số thùng đệm 3 chữ số.
	pattern := regexp.MustCompile(`^WGT1-00[1-3]-[0-9A-Z]+$`)
	for i, code := range codes {
		assert.Regexp(t, pattern, code)
		assert.Contains(t, code, "-00"+string(rune('1'+i))+"-")
	}
}

func TestGeneratePairwiseDistinct(t *testing.T) {
	codes := Generate("SKU", 50)
	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate barcode generated: %s", code)
		seen[code] = true
	}
}

func TestGenerateEmptyPrefixFallsBackToUUID(t *testing.T) {
	codes := Generate("", 2)
	require.Len(t, codes, 2)
	for _, code := range codes {
		_, err := uuid.Parse(code)
		assert.NoError(t, err, "expected a UUID, got %s", code)
	}
	assert.NotEqual(t, codes[0], codes[1])
}

func TestGenerateNonPositiveBoxCount(t *testing.T) {
	assert.Nil(t, Generate("SKU", 0))
	assert.Nil(t, Generate("SKU", -1))
}
