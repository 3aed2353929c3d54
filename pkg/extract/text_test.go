package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextExtractor(t *testing.T) {
	e := NewTextExtractor()
	ctx := context.Background()

	result, err := e.Extract(ctx, "text/csv", []byte("sku,qty\nA,1\nB,2"))
	require.NoError(t, err)
	assert.Equal(t, "sku,qty\nA,1\nB,2", result.Text)
	assert.Equal(t, 3, result.Data["lines"])

	t.Run("rejects unknown mime type", func(t *testing.T) {
		_, err := e.Extract(ctx, "application/pdf", []byte("%PDF"))
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("rejects invalid utf8", func(t *testing.T) {
		_, err := e.Extract(ctx, "text/plain", []byte{0xff, 0xfe, 0xfd})
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry(NewTextExtractor())
	ctx := context.Background()

	assert.True(t, r.Supports("text/markdown"))
	assert.False(t, r.Supports("image/png"))

	_, err := r.Extract(ctx, "image/png", []byte("not text"))
	assert.ErrorIs(t, err, ErrUnsupported)
}
