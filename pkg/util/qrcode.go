package util

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultQRCodeSize = 256

// GenerateQRCodePNG encodes content as a PNG QR code of size×size pixels.
func GenerateQRCodePNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr code content is empty")
	}
	if size <= 0 {
		size = DefaultQRCodeSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
