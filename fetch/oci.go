// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"
)

// Query parameters understood on oci: locations
const (
	OCIQueryParamPlainHTTP             = "plain-http"
	OCIQueryParamInsecureSkipTLSVerify = "insecure-skip-tls-verify"
)

// ociLocation is an oci: location split into the manifest reference and the title of the layer it selects
type ociLocation struct {
	ref   string
	title string
}

func parseOCILocation(uri *url.URL) (ociLocation, error) {
	if uri == nil {
		return ociLocation{}, fmt.Errorf("uri is nil")
	}
	if uri.Scheme != "oci" {
		return ociLocation{}, fmt.Errorf("scheme is not \"oci\"")
	}

	title, err := url.QueryUnescape(uri.Fragment)
	if err != nil {
		return ociLocation{}, err
	}
	if title == "" {
		title = "file:" + DefaultFileName
	}

	ref := url.URL{Opaque: uri.Opaque, Host: uri.Host, Path: uri.Path}
	return ociLocation{ref: strings.TrimPrefix(ref.String(), "//"), title: title}, nil
}

// OCIFetcher fetches workflow files published as layers of an OCI artifact
type OCIFetcher struct {
	client    remote.Client
	plainHTTP bool
}

// ociTransport clones the base client's transport, or the default one, adding retries
func ociTransport(base *http.Client, insecureSkipTLSVerify bool) http.RoundTripper {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if base != nil {
		if t, isHTTP := base.Transport.(*http.Transport); isHTTP {
			transport, ok = t, true
		}
	}
	if !ok {
		transport = &http.Transport{}
	}

	transport = transport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	}
	if insecureSkipTLSVerify {
		transport.TLSClientConfig.InsecureSkipVerify = true
	}
	return retry.NewTransport(transport)
}

// NewOCIClient returns an auth client for OCI registries reusing the docker credential store
func NewOCIClient(baseClient *http.Client, insecureSkipTLSVerify bool) (*auth.Client, error) {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Transport: ociTransport(baseClient, insecureSkipTLSVerify)}
	if baseClient != nil {
		httpClient.Timeout = baseClient.Timeout
	}

	client := &auth.Client{
		Client:     httpClient,
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}
	client.SetUserAgent(UserAgent)
	return client, nil
}

// NewOCIFetcher creates a new ORAS backed fetcher
func NewOCIFetcher(baseClient *http.Client, insecureSkipTLSVerify, plainHTTP bool) (*OCIFetcher, error) {
	client, err := NewOCIClient(baseClient, insecureSkipTLSVerify)
	if err != nil {
		return nil, err
	}
	return &OCIFetcher{client: client, plainHTTP: plainHTTP}, nil
}

// Fetch pulls the layer the location's fragment names out of the artifact's manifest
//
// The fragment defaults to file:ennio.yaml. Layer content is verified against its digest.
func (c *OCIFetcher) Fetch(ctx context.Context, uri *url.URL) (io.ReadCloser, error) {
	loc, err := parseOCILocation(uri)
	if err != nil {
		return nil, err
	}

	repo, err := remote.NewRepository(loc.ref)
	if err != nil {
		return nil, err
	}
	repo.Client = c.client
	repo.PlainHTTP = c.plainHTTP

	desc, b, err := oras.FetchBytes(ctx, repo, loc.ref, oras.DefaultFetchBytesOptions)
	if err != nil {
		return nil, err
	}
	if desc.MediaType != ocispec.MediaTypeImageManifest {
		return nil, fmt.Errorf("unexpected mediatype, want %q got %q", ocispec.MediaTypeImageManifest, desc.MediaType)
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(b, &manifest); err != nil {
		return nil, err
	}

	layer, err := selectLayer(manifest, loc.title)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).Debug("pulling", "ref", loc.ref, "layer", loc.title, "digest", layer.Digest)

	b, err = content.FetchAll(ctx, repo, layer)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func selectLayer(manifest ocispec.Manifest, title string) (ocispec.Descriptor, error) {
	titles := make([]string, 0, len(manifest.Layers))
	for _, layer := range manifest.Layers {
		t := layer.Annotations[ocispec.AnnotationTitle]
		if t == title {
			return layer, nil
		}
		if t != "" {
			titles = append(titles, t)
		}
	}
	return ocispec.Descriptor{}, fmt.Errorf("%s: not found, artifact holds: %s", title, strings.Join(titles, ", "))
}
