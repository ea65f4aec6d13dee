// SPDX-License-Identifier: EPL-2.0

// Package blob stores uploaded files, QR codes and mood tracks.
package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object not found")

// Bucket is a flat object namespace. Names use "/" as a separator
// ("record/<id>.wav", "moods/A.mp3").
type Bucket interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// URL returns a link a browser can GET the object from.
	URL(ctx context.Context, name string) (string, error)
}
