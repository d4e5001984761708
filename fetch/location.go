// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/ennio-run/ennio/config"
)

// Parse turns a user supplied location into a URL a Service can fetch
//
// Bare paths become file: URLs, package URLs have their aliases resolved and
// their version and subpath defaulted to DefaultVersion and DefaultFileName.
func Parse(raw string, aliases config.AliasMap) (*url.URL, error) {
	// fix fish needing "'pkg:...'" for tab completion
	raw = strings.Trim(raw, `"`)
	raw = strings.Trim(raw, `'`)

	if raw == "" {
		return nil, fmt.Errorf("location cannot be empty")
	}

	if filepath.VolumeName(raw) != "" {
		return &url.URL{Scheme: "file", Opaque: filepath.ToSlash(raw)}, nil
	}

	uri, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	switch uri.Scheme {
	case "":
		return &url.URL{Scheme: "file", Opaque: raw}, nil
	case "file":
		if LocalPath(uri) == "" {
			return nil, fmt.Errorf("%q: missing path", raw)
		}
		return uri, nil
	case "http", "https":
		return uri, nil
	case "oci":
		if uri.Opaque == "" && uri.Host == "" {
			return nil, fmt.Errorf("%q: missing reference", raw)
		}
		return uri, nil
	case "pkg":
		pURL, err := packageurl.FromString(raw)
		if err != nil {
			return nil, err
		}

		pURL, _ = ResolveAlias(pURL, aliases)

		if pURL.Type != packageurl.TypeGithub && pURL.Type != packageurl.TypeGitlab {
			return nil, fmt.Errorf("unsupported package type: %q", pURL.Type)
		}
		if pURL.Version == "" {
			pURL.Version = DefaultVersion
		}
		if pURL.Subpath == "" {
			pURL.Subpath = DefaultFileName
		}
		return url.Parse(pURL.String())
	default:
		return nil, fmt.Errorf("unsupported scheme: %q", uri.Scheme)
	}
}

// LocalPath returns the filesystem path of a file: URL
func LocalPath(uri *url.URL) string {
	if uri.Opaque != "" {
		return filepath.FromSlash(uri.Opaque)
	}
	return filepath.FromSlash(uri.Path)
}
