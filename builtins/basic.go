// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package builtins provides the actions ennio implements in Go
package builtins

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cast"
)

// echo prints text and hands it to later actions
type echo struct {
	Text string `json:"text" jsonschema:"description=Text to echo"`
}

// Description implements Describer
func (b *echo) Description() string {
	return "Print text, outputs: stdout"
}

// Execute the builtin
func (b *echo) Execute(ctx context.Context) (map[string]any, error) {
	logger := log.FromContext(ctx)

	logger.Print(b.Text)
	return map[string]any{"stdout": b.Text}, nil
}

// fetch performs an HTTP request and exposes the response to later actions
type fetch struct {
	URL     string         `json:"url"               jsonschema:"description=URL to fetch"`
	Method  string         `json:"method,omitempty"  jsonschema:"description=HTTP method to use,default=GET"`
	Timeout string         `json:"timeout,omitempty" jsonschema:"description=Timeout for the request,default=30s"`
	Headers map[string]any `json:"headers,omitempty" jsonschema:"description=HTTP headers to send"`
	Body    string         `json:"body,omitempty"    jsonschema:"description=Request body"`
}

const defaultFetchTimeout = 30 * time.Second

// Description implements Describer
func (b *fetch) Description() string {
	return "Perform an HTTP request, outputs: body, status-code, content-type"
}

func (b *fetch) timeout() (time.Duration, error) {
	if b.Timeout == "" {
		return defaultFetchTimeout, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout: %w", err)
	}
	return d, nil
}

func (b *fetch) request(ctx context.Context) (*http.Request, error) {
	method := http.MethodGet
	if b.Method != "" {
		method = strings.ToUpper(b.Method)
	}

	var body io.Reader
	if b.Body != "" {
		body = strings.NewReader(b.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.URL, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	for _, k := range slices.Sorted(maps.Keys(b.Headers)) {
		v, err := cast.ToStringE(b.Headers[k])
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", k, err)
		}
		req.Header.Set(k, v)
	}
	return req, nil
}

// Execute the builtin
//
// Any response outside of the 2xx range is an error.
func (b *fetch) Execute(ctx context.Context) (map[string]any, error) {
	logger := log.FromContext(ctx)

	timeout, err := b.timeout()
	if err != nil {
		return nil, err
	}

	req, err := b.request(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("fetch", "method", req.Method, "url", b.URL, "headers", len(req.Header))

	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: expected a 2xx status code got %d", req.Method, b.URL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	logger.Info("fetched", "status", resp.Status, "content-type", contentType, "bytes", len(body))

	if strings.HasPrefix(contentType, "application/json") {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err == nil {
			logger.Debug(pretty.String())
		}
	}

	return map[string]any{
		"body":         string(body),
		"status-code":  uint64(resp.StatusCode),
		"content-type": contentType,
	}, nil
}
