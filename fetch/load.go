// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"

	v0 "github.com/ennio-run/ennio/schema/v0"
)

// LoadFile fetches the workflow file at uri, then reads and validates it
func LoadFile(ctx context.Context, svc *Service, uri *url.URL) (v0.File, error) {
	logger := log.FromContext(ctx)

	fetcher, err := svc.Fetcher(uri)
	if err != nil {
		return v0.File{}, err
	}

	fetcherType := fmt.Sprintf("%T", fetcher)
	if sf, ok := fetcher.(*StoreFetcher); ok {
		fetcherType = fmt.Sprintf("%T|%T", sf.Store, sf.Source)
	}

	logger.Debug("fetching", "url", uri, "fetcher", fetcherType)

	rc, err := fetcher.Fetch(ctx, uri)
	if err != nil {
		return v0.File{}, err
	}
	defer rc.Close()

	return v0.Load(rc)
}
