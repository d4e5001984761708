// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/package-url/packageurl-go"
	"github.com/spf13/afero"

	"github.com/ennio-run/ennio/config"
)

// Service creates fetchers for locations and reuses them
type Service struct {
	client       *http.Client
	fsys         afero.Fs
	workDir      string
	fetcherCache map[string]Fetcher
	storage      Storage
	policy       config.FetchPolicy
	mu           sync.RWMutex
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithFS sets the filesystem local files are read from
func WithFS(fs afero.Fs) ServiceOption {
	return func(s *Service) {
		s.fsys = fs
	}
}

// WithWorkDir sets the absolute directory relative local locations resolve against
func WithWorkDir(dir string) ServiceOption {
	return func(s *Service) {
		s.workDir = dir
	}
}

// WithClient sets the HTTP client used by remote fetchers
func WithClient(client *http.Client) ServiceOption {
	return func(s *Service) {
		s.client = client
	}
}

// WithStorage sets the store remote files are cached in
func WithStorage(store Storage) ServiceOption {
	return func(s *Service) {
		s.storage = store
	}
}

// WithFetchPolicy sets when remote files are fetched instead of read from the store
func WithFetchPolicy(policy config.FetchPolicy) ServiceOption {
	return func(s *Service) {
		s.policy = policy
	}
}

// NewService creates a new Service
func NewService(opts ...ServiceOption) (*Service, error) {
	svc := &Service{
		fetcherCache: make(map[string]Fetcher),
		policy:       config.DefaultFetchPolicy,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.fsys == nil {
		svc.fsys = afero.NewOsFs()
	}

	if svc.client == nil {
		svc.client = &http.Client{}
	}

	if _, err := config.ParseFetchPolicy(string(svc.policy)); err != nil {
		return nil, err
	}

	if svc.workDir != "" && !filepath.IsAbs(svc.workDir) {
		return nil, fmt.Errorf("work directory %q is not absolute", svc.workDir)
	}

	if svc.policy == config.FetchPolicyNever && svc.storage == nil {
		return nil, fmt.Errorf("store is not initialized")
	}

	return svc, nil
}

// Policy returns the fetch policy of the service
func (s *Service) Policy() config.FetchPolicy {
	return s.policy
}

// Fetcher returns the fetcher for uri
//
// Remote fetchers are wrapped in a StoreFetcher when the service has a store.
func (s *Service) Fetcher(uri *url.URL) (Fetcher, error) {
	if uri == nil {
		return nil, fmt.Errorf("uri cannot be nil")
	}

	s.mu.RLock()
	fetcher, exists := s.fetcherCache[uri.String()]
	s.mu.RUnlock()
	if exists {
		return fetcher, nil
	}

	fetcher, err := s.createFetcher(uri)
	if err != nil {
		return nil, err
	}

	if s.storage != nil && uri.Scheme != "file" {
		fetcher = &StoreFetcher{
			Source: fetcher,
			Store:  s.storage,
			Policy: s.policy,
		}
	}

	s.mu.Lock()
	s.fetcherCache[uri.String()] = fetcher
	s.mu.Unlock()

	return fetcher, nil
}

func (s *Service) createFetcher(uri *url.URL) (Fetcher, error) {
	switch uri.Scheme {
	case "http", "https":
		return NewHTTPFetcher(s.client), nil
	case "pkg":
		pURL, err := packageurl.FromString(uri.String())
		if err != nil {
			return nil, err
		}

		qualifiers := pURL.Qualifiers.Map()
		tokenEnv := qualifiers[QualifierTokenFromEnv]
		base := qualifiers[QualifierBaseURL]

		switch pURL.Type {
		case packageurl.TypeGithub:
			return NewGitHubFetcher(s.client, base, tokenEnv)
		case packageurl.TypeGitlab:
			return NewGitLabFetcher(s.client, base, tokenEnv)
		default:
			return nil, fmt.Errorf("unsupported package type: %q", pURL.Type)
		}
	case "file", "":
		return NewLocalFetcher(s.fsys, s.workDir), nil
	case "oci":
		insecureSkipTLSVerify := uri.Query().Get(OCIQueryParamInsecureSkipTLSVerify) == "true"
		plainHTTP := uri.Query().Get(OCIQueryParamPlainHTTP) == "true"
		return NewOCIFetcher(s.client, insecureSkipTLSVerify, plainHTTP)
	default:
		return nil, fmt.Errorf("unsupported scheme: %q", uri.Scheme)
	}
}
