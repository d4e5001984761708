// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
)

// UserAgent is sent with every request made while fetching
const UserAgent = "ennio"

// MaxFileSize is the largest remote workflow file HTTPFetcher accepts
const MaxFileSize int64 = 4 << 20

const acceptWorkflow = "application/yaml, text/yaml;q=0.9, text/plain;q=0.8, */*;q=0.1"

// HTTPFetcher downloads workflow files over http(s)
type HTTPFetcher struct {
	client  *http.Client
	maxSize int64
}

// NewHTTPFetcher returns an HTTPFetcher using client, or http.DefaultClient when nil
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, maxSize: MaxFileSize}
}

// Fetch downloads the workflow file at uri
//
// Anything but a 200 response, or a body larger than MaxFileSize, is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri *url.URL) (io.ReadCloser, error) {
	if uri == nil {
		return nil, fmt.Errorf("uri is nil")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", acceptWorkflow)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", uri, resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > f.maxSize {
		return nil, fmt.Errorf("failed to fetch %s: larger than %d bytes", uri, f.maxSize)
	}

	log.FromContext(ctx).Debug("downloaded", "location", uri, "content-type", resp.Header.Get("Content-Type"), "bytes", len(b))

	return io.NopCloser(bytes.NewReader(b)), nil
}
