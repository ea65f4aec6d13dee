// SPDX-License-Identifier: EPL-2.0

package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type object struct {
	contentType string
	data        []byte
	modified    time.Time
}

// Memory keeps objects in process and serves them over HTTP under its base
// URL, which makes it usable by a browser in local runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

// NewMemory returns a bucket whose URLs are baseURL + "/" + name.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		objects: make(map[string]object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (b *Memory) Put(_ context.Context, name, contentType string, data []byte) error {
	if name == "" {
		return errors.New("upload: empty object name")
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	b.mu.Lock()
	b.objects[name] = object{contentType: contentType, data: cp, modified: time.Now()}
	b.mu.Unlock()

	return nil
}

func (b *Memory) Get(_ context.Context, name string) ([]byte, error) {
	b.mu.RLock()
	obj, ok := b.objects[name]
	b.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)

	return cp, nil
}

func (b *Memory) URL(_ context.Context, name string) (string, error) {
	b.mu.RLock()
	_, ok := b.objects[name]
	b.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return b.baseURL + "/" + (&url.URL{Path: name}).EscapedPath(), nil
}

// ServeHTTP serves the object named by the request path. Mount it with
// http.StripPrefix so the path is the bare object name.
func (b *Memory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")

	b.mu.RLock()
	obj, ok := b.objects[name]
	b.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	http.ServeContent(w, r, name, obj.modified, bytes.NewReader(obj.data))
}
