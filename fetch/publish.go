// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"

	v0 "github.com/ennio-run/ennio/schema/v0"
)

// Publish validates the workflow files at paths, then pushes them as a single OCI artifact to dst
//
// Each file becomes one layer titled file:<base name>, the titles OCIFetcher selects with the location's fragment.
func Publish(ctx context.Context, dst *remote.Repository, paths ...string) (ocispec.Descriptor, error) {
	logger := log.FromContext(ctx)

	if len(paths) == 0 {
		return ocispec.Descriptor{}, fmt.Errorf("need at least one workflow file")
	}

	tag := dst.Reference.Reference
	if tag == "" {
		return ocispec.Descriptor{}, fmt.Errorf("%s: missing tag", dst.Reference)
	}

	tmp, err := os.MkdirTemp("", "ennio-publish-*")
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	defer os.RemoveAll(tmp)

	ociStore, err := file.New(tmp)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	defer ociStore.Close()

	layers := make([]ocispec.Descriptor, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return ocispec.Descriptor{}, err
		}

		if err := validateFile(abs); err != nil {
			return ocispec.Descriptor{}, fmt.Errorf("%s: %w", p, err)
		}

		name := "file:" + filepath.Base(abs)
		if prev, ok := seen[name]; ok {
			return ocispec.Descriptor{}, fmt.Errorf("%s and %s would both be published as %s", prev, p, name)
		}
		seen[name] = p

		logger.Debug("staging", "entry", name)
		desc, err := ociStore.Add(ctx, name, v0.MediaType, abs)
		if err != nil {
			return ocispec.Descriptor{}, err
		}
		layers = append(layers, desc)
	}

	root, err := oras.PackManifest(ctx, ociStore, oras.PackManifestVersion1_1, v0.MediaType, oras.PackManifestOptions{
		Layers: layers,
	})
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	if err := ociStore.Tag(ctx, root, root.Digest.String()); err != nil {
		return ocispec.Descriptor{}, err
	}

	desc, err := oras.Copy(ctx, ociStore, root.Digest.String(), dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	logger.Info("published", "digest", desc.Digest, "to", dst.Reference)

	return desc, nil
}

func validateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = v0.Load(f)
	return err
}
