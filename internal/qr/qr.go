// SPDX-License-Identifier: EPL-2.0

// Package qr renders links as QR code images.
package qr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels used for media links.
const DefaultSize = 256

var ErrEmptyContent = errors.New("qr: empty content")

// Encode returns a size x size PNG encoding content at medium recovery level.
func Encode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode %q: %w", content, err)
	}

	return png, nil
}
