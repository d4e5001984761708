// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// LocalFetcher opens workflow files on a filesystem
//
// Relative paths are resolved against the fetcher's work directory when it has one,
// and a directory stands for the DefaultFileName inside it.
type LocalFetcher struct {
	fsys    afero.Fs
	workDir string
}

// NewLocalFetcher creates a local fetcher resolving relative paths against workDir, "" keeps them as is
func NewLocalFetcher(fsys afero.Fs, workDir string) *LocalFetcher {
	return &LocalFetcher{fsys: fsys, workDir: workDir}
}

// Path returns the workflow file uri names on the fetcher's filesystem
func (f *LocalFetcher) Path(uri *url.URL) (string, error) {
	if uri == nil {
		return "", fmt.Errorf("uri is nil")
	}
	if uri.Scheme != "" && uri.Scheme != "file" {
		return "", fmt.Errorf("%s: not a local file", uri)
	}

	p := LocalPath(uri)
	if f.workDir != "" && !filepath.IsAbs(p) {
		p = filepath.Join(f.workDir, p)
	}
	p = filepath.Clean(p)

	dir, err := afero.IsDir(f.fsys, p)
	if err != nil {
		return "", err
	}
	if dir {
		p = filepath.Join(p, DefaultFileName)
	}
	return p, nil
}

// Fetch opens the workflow file uri names
func (f *LocalFetcher) Fetch(ctx context.Context, uri *url.URL) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := f.Path(uri)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).Debug("opening", "path", p)

	return f.fsys.Open(p)
}
