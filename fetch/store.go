// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"maps"
	"net/url"
	"slices"
	"sync"

	"github.com/spf13/afero"
)

// Descriptor describes a stored file
type Descriptor struct {
	Size int64  `json:"size"`
	Hex  string `json:"hex"`
}

func describe(b []byte) Descriptor {
	sum := sha256.Sum256(b)
	return Descriptor{Size: int64(len(b)), Hex: hex.EncodeToString(sum[:])}
}

// IndexFileName is the name of the file mapping locations to stored files
const IndexFileName = "index.json"

// LocalStore caches remote workflow files on a filesystem
//
// Files are named by the hex sha256 of their content, so locations serving
// identical files share one blob. index.json maps each location to its blob.
type LocalStore struct {
	fsys afero.Fs

	mu    sync.RWMutex
	index map[string]Descriptor
}

var _ Storage = (*LocalStore)(nil)

// NewLocalStore opens the store rooted at fsys, creating an empty index on first use
func NewLocalStore(fsys afero.Fs) (*LocalStore, error) {
	index, err := readIndex(fsys)
	if err != nil {
		return nil, err
	}
	return &LocalStore{fsys: fsys, index: index}, nil
}

func readIndex(fsys afero.Fs) (map[string]Descriptor, error) {
	b, err := afero.ReadFile(fsys, IndexFileName)
	if errors.Is(err, fs.ErrNotExist) {
		index := map[string]Descriptor{}
		return index, writeIndex(fsys, index)
	}
	if err != nil {
		return nil, err
	}

	var index map[string]Descriptor
	if err := json.Unmarshal(b, &index); err != nil {
		return nil, fmt.Errorf("corrupt store index: %w", err)
	}
	if index == nil {
		index = map[string]Descriptor{}
	}
	return index, nil
}

// writeIndex replaces the index through a rename so readers never see a partial file
func writeIndex(fsys afero.Fs, index map[string]Descriptor) error {
	b, err := json.Marshal(index)
	if err != nil {
		return err
	}

	tmp := IndexFileName + ".tmp"
	if err := afero.WriteFile(fsys, tmp, b, 0o644); err != nil {
		return err
	}
	return fsys.Rename(tmp, IndexFileName)
}

// Fetch opens the file stored for uri
func (s *LocalStore) Fetch(_ context.Context, uri *url.URL) (io.ReadCloser, error) {
	if uri == nil {
		return nil, fmt.Errorf("uri is nil")
	}

	s.mu.RLock()
	desc, ok := s.index[uri.String()]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: not found in store", uri)
	}
	return s.fsys.Open(desc.Hex)
}

// Store records the content of r as the file for uri, replacing any previous entry
func (s *LocalStore) Store(r io.Reader, uri *url.URL) error {
	if uri == nil {
		return fmt.Errorf("uri is nil")
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	desc := describe(b)
	key := uri.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.verify(desc) != nil {
		if err := afero.WriteFile(s.fsys, desc.Hex, b, 0o644); err != nil {
			return err
		}
	}

	prev, had := s.index[key]
	s.index[key] = desc
	if err := writeIndex(s.fsys, s.index); err != nil {
		if had {
			s.index[key] = prev
		} else {
			delete(s.index, key)
		}
		return err
	}
	return nil
}

// Exists reports whether a file is stored for uri
//
// A stored file that no longer matches its descriptor is an error.
func (s *LocalStore) Exists(uri *url.URL) (bool, error) {
	if uri == nil {
		return false, fmt.Errorf("uri is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	desc, ok := s.index[uri.String()]
	if !ok {
		return false, nil
	}
	if err := s.verify(desc); err != nil {
		return false, err
	}
	return true, nil
}

func (s *LocalStore) verify(desc Descriptor) error {
	b, err := afero.ReadFile(s.fsys, desc.Hex)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stored file %s is missing, the store is corrupt", desc.Hex)
	}
	if err != nil {
		return err
	}

	got := describe(b)
	if got.Size != desc.Size {
		return fmt.Errorf("stored file %s is %d bytes, expected %d", desc.Hex, got.Size, desc.Size)
	}
	if got.Hex != desc.Hex {
		return fmt.Errorf("stored file %s does not match its digest", desc.Hex)
	}
	return nil
}

// List iterates over the stored entries sorted by location
func (s *LocalStore) List() iter.Seq2[string, Descriptor] {
	s.mu.RLock()
	snapshot := maps.Clone(s.index)
	s.mu.RUnlock()

	return func(yield func(string, Descriptor) bool) {
		for _, k := range slices.Sorted(maps.Keys(snapshot)) {
			if !yield(k, snapshot[k]) {
				return
			}
		}
	}
}

// GC removes blobs no location refers to, returning how many were removed
func (s *LocalStore) GC() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := map[string]bool{IndexFileName: true}
	for _, desc := range s.index {
		live[desc.Hex] = true
	}

	entries, err := afero.ReadDir(s.fsys, ".")
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || live[entry.Name()] {
			continue
		}
		if err := s.fsys.Remove(entry.Name()); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
