package util

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCodePNG(t *testing.T) {
	data, err := GenerateQRCodePNG("https://pizza.example.com/orders/42", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRCodeSize, img.Bounds().Dx())
}

func TestGenerateQRCodePNG_Empty(t *testing.T) {
	_, err := GenerateQRCodePNG("", 128)
	assert.Error(t, err)
}
