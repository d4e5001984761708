// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFetcher(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "ennio.yaml", []byte("schema-version: v0\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "dir/other.yaml", []byte("other"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "project/ennio.yaml", []byte("project"), 0o644))
	abs := filepath.Join(string(filepath.Separator), "abs", "ennio.yaml")
	require.NoError(t, afero.WriteFile(fsys, abs, []byte("absolute"), 0o644))

	testCases := []struct {
		name        string
		workDir     string
		uri         *url.URL
		expected    string
		expectedErr string
		errIs       error
	}{
		{
			name:     "opaque path",
			uri:      &url.URL{Scheme: "file", Opaque: "ennio.yaml"},
			expected: "schema-version: v0\n",
		},
		{
			name:     "nested path",
			uri:      &url.URL{Scheme: "file", Opaque: "dir/other.yaml"},
			expected: "other",
		},
		{
			name:     "no scheme",
			uri:      &url.URL{Path: "dir/../ennio.yaml"},
			expected: "schema-version: v0\n",
		},
		{
			name:     "directory holding a workflow file",
			uri:      &url.URL{Scheme: "file", Opaque: "project"},
			expected: "project",
		},
		{
			name:  "directory without a workflow file",
			uri:   &url.URL{Scheme: "file", Opaque: "dir"},
			errIs: os.ErrNotExist,
		},
		{
			name:     "relative to the work directory",
			workDir:  "project",
			uri:      &url.URL{Scheme: "file", Opaque: "ennio.yaml"},
			expected: "project",
		},
		{
			name:     "work directory itself",
			workDir:  "project",
			uri:      &url.URL{Scheme: "file", Opaque: "."},
			expected: "project",
		},
		{
			name:     "absolute paths ignore the work directory",
			workDir:  "project",
			uri:      &url.URL{Scheme: "file", Opaque: filepath.ToSlash(abs)},
			expected: "absolute",
		},
		{
			name:  "missing",
			uri:   &url.URL{Scheme: "file", Opaque: "missing.yaml"},
			errIs: os.ErrNotExist,
		},
		{
			name:        "wrong scheme",
			uri:         &url.URL{Scheme: "https", Host: "example.com", Path: "/ennio.yaml"},
			expectedErr: "https://example.com/ennio.yaml: not a local file",
		},
		{
			name:        "nil",
			expectedErr: "uri is nil",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := NewLocalFetcher(fsys, tc.workDir)

			rc, err := fetcher.Fetch(t.Context(), tc.uri)
			switch {
			case tc.expectedErr != "":
				require.EqualError(t, err, tc.expectedErr)
				assert.Nil(t, rc)
				return
			case tc.errIs != nil:
				require.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, rc)
				return
			}
			require.NoError(t, err)
			defer rc.Close()

			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(b))
		})
	}

	cancelled, cancel := context.WithCancel(t.Context())
	cancel()
	rc, err := NewLocalFetcher(fsys, "").Fetch(cancelled, &url.URL{Scheme: "file", Opaque: "ennio.yaml"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, rc)
}

func TestLocalFetcherPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, filepath.Join("project", "ennio.yaml"), []byte("x"), 0o644))

	p, err := NewLocalFetcher(fsys, "").Path(&url.URL{Scheme: "file", Opaque: "project"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("project", "ennio.yaml"), p)

	p, err = NewLocalFetcher(fsys, "project").Path(&url.URL{Scheme: "file", Opaque: "release.yaml"})
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, p)
}
