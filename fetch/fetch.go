// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package fetch retrieves workflow files from local and remote locations, caching remote ones in a local store.
package fetch

import (
	"context"
	"io"
	"net/url"
)

// DefaultFileName is the file used when a location does not name one
const DefaultFileName = "ennio.yaml"

// DefaultVersion is the git ref used when a package URL has no version
const DefaultVersion = "main"

// QualifierTokenFromEnv is the qualifier naming the environment variable holding an access token
const QualifierTokenFromEnv = "token-from-env"

// QualifierBaseURL is the qualifier setting the API base URL of a package source
const QualifierBaseURL = "base"

// Fetcher fetches a file from a location.
type Fetcher interface {
	Fetch(ctx context.Context, uri *url.URL) (io.ReadCloser, error)
}

// Storage is a Fetcher that can also store files
type Storage interface {
	Fetcher
	Store(r io.Reader, uri *url.URL) error
	Exists(uri *url.URL) (bool, error)
}
