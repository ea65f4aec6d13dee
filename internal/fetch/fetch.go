// SPDX-License-Identifier: EPL-2.0

// Package fetch downloads remote audio for the mixer.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

var (
	ErrInvalidURL = errors.New("fetch: invalid URL")
	ErrTooLarge   = errors.New("fetch: response too large")
	ErrUpstream   = errors.New("fetch: upstream error")
)

const maxRedirects = 5

type Fetcher struct {
	client       *http.Client
	maxBytes     int64
	allowPrivate bool
}

// New returns a Fetcher that refuses bodies over maxBytes. allowPrivate
// permits loopback and private addresses, for local setups. Otherwise every
// connection, redirects included, is checked against the address actually
// dialed.
func New(maxBytes int64, allowPrivate bool) *Fetcher {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		dialer.Control = dialControl
	}

	f := &Fetcher{maxBytes: maxBytes, allowPrivate: allowPrivate}
	f.client = &http.Client{
		Timeout: 60 * time.Second,
		// no Proxy: the dial check must see the origin's address
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          16,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped after %d redirects", ErrInvalidURL, maxRedirects)
			}
			return ValidateURL(req.URL.String(), f.allowPrivate)
		},
	}

	return f
}

// Get validates rawURL and returns the response body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ValidateURL(rawURL, f.allowPrivate); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrInvalidURL) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %s", ErrUpstream, rawURL, resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, resp.ContentLength, f.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	return data, nil
}
