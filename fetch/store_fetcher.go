// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/ennio-run/ennio/config"
	v0 "github.com/ennio-run/ennio/schema/v0"
)

// StoreFetcher serves remote workflow files out of a store, going to the source as the fetch policy requires
//
// Only content that reads as a workflow file is stored, a broken remote file never replaces a good stored copy.
type StoreFetcher struct {
	Source Fetcher
	Store  Storage
	Policy config.FetchPolicy
}

// Fetch implements the Fetcher interface
func (f *StoreFetcher) Fetch(ctx context.Context, uri *url.URL) (io.ReadCloser, error) {
	if uri == nil {
		return nil, fmt.Errorf("uri is nil")
	}

	logger := log.FromContext(ctx).With("policy", f.Policy, "location", uri)

	switch f.Policy {
	case config.FetchPolicyNever:
		logger.Debug("reading store")
		return f.Store.Fetch(ctx, uri)
	case config.FetchPolicyIfNotPresent:
		stored, err := f.Store.Exists(uri)
		if err != nil {
			return nil, err
		}
		if stored {
			logger.Debug("store hit")
			return f.Store.Fetch(ctx, uri)
		}
		logger.Debug("store miss")
	case config.FetchPolicyAlways:
	default:
		return nil, fmt.Errorf("unsupported fetch policy: %s", f.Policy)
	}

	return f.refresh(log.WithContext(ctx, logger), uri)
}

func (f *StoreFetcher) refresh(ctx context.Context, uri *url.URL) (io.ReadCloser, error) {
	logger := log.FromContext(ctx)

	rc, err := f.Source.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	if _, err := v0.Read(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("%s: not stored: %w", uri, err)
	}

	if err := f.Store.Store(bytes.NewReader(b), uri); err != nil {
		return nil, err
	}
	logger.Debug("stored", "bytes", len(b))

	return io.NopCloser(bytes.NewReader(b)), nil
}
