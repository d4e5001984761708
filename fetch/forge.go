// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v62/github"
	"github.com/package-url/packageurl-go"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// Token variables read when a pkg: location has no token-from-env qualifier
const (
	DefaultGitHubTokenEnv = "GITHUB_TOKEN"
	DefaultGitLabTokenEnv = "GITLAB_TOKEN"
)

// DefaultGitLabBaseURL is used when no base qualifier is set
const DefaultGitLabBaseURL = "https://gitlab.com"

// repoFile is a workflow file at a ref of a forge hosted repository, as named by a pkg: location
type repoFile struct {
	owner string
	repo  string
	path  string
	ref   string
}

// parseRepoFile reads a pkg: location of the given package type, defaulting the ref and path like Parse does
func parseRepoFile(uri *url.URL, pkgType string) (repoFile, error) {
	if uri == nil {
		return repoFile{}, fmt.Errorf("uri is nil")
	}

	pURL, err := packageurl.FromString(uri.String())
	if err != nil {
		return repoFile{}, err
	}
	if pURL.Type != pkgType {
		return repoFile{}, fmt.Errorf("%s: not a %s package", uri, pkgType)
	}
	if pURL.Namespace == "" {
		return repoFile{}, fmt.Errorf("%s: missing repository owner", uri)
	}

	f := repoFile{owner: pURL.Namespace, repo: pURL.Name, path: pURL.Subpath, ref: pURL.Version}
	if f.ref == "" {
		f.ref = DefaultVersion
	}
	if f.path == "" {
		f.path = DefaultFileName
	}
	return f, nil
}

func (f repoFile) project() string {
	return f.owner + "/" + f.repo
}

func (f repoFile) String() string {
	return f.project() + "/" + f.path + "@" + f.ref
}

// forgeToken reads the access token from tokenEnv
//
// The forge's default variable may be unset, a custom one named by a location must be set.
func forgeToken(tokenEnv, defaultEnv string) (string, error) {
	if tokenEnv == "" || tokenEnv == defaultEnv {
		return os.Getenv(defaultEnv), nil
	}
	token, ok := os.LookupEnv(tokenEnv)
	if !ok {
		return "", fmt.Errorf("token environment variable %s is not set", tokenEnv)
	}
	return token, nil
}

// GitHubFetcher downloads workflow files from GitHub repositories
type GitHubFetcher struct {
	client *github.Client
}

// NewGitHubFetcher creates a GitHub fetcher, base overrides the API URL for GitHub Enterprise
func NewGitHubFetcher(client *http.Client, base string, tokenEnv string) (*GitHubFetcher, error) {
	token, err := forgeToken(tokenEnv, DefaultGitHubTokenEnv)
	if err != nil {
		return nil, err
	}

	c := github.NewClient(client)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	c.UserAgent = UserAgent

	if base != "" {
		baseURL, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		c.BaseURL = baseURL
	}

	return &GitHubFetcher{client: c}, nil
}

// Fetch downloads the file a pkg:github location names
func (g *GitHubFetcher) Fetch(ctx context.Context, uri *url.URL) (io.ReadCloser, error) {
	file, err := parseRepoFile(uri, packageurl.TypeGithub)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).Debug("downloading", "forge", "github", "repo", file.project(), "path", file.path, "ref", file.ref)

	rc, resp, err := g.client.Repositories.DownloadContents(ctx, file.owner, file.repo, file.path, &github.RepositoryContentGetOptions{
		Ref: file.ref,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = rc.Close()
		return nil, fmt.Errorf("%s: %s", file, resp.Status)
	}
	return rc, nil
}

// GitLabFetcher downloads workflow files from GitLab projects
type GitLabFetcher struct {
	client *gitlab.Client
}

// NewGitLabFetcher creates a GitLab fetcher for the instance at base, DefaultGitLabBaseURL when empty
func NewGitLabFetcher(client *http.Client, base string, tokenEnv string) (*GitLabFetcher, error) {
	token, err := forgeToken(tokenEnv, DefaultGitLabTokenEnv)
	if err != nil {
		return nil, err
	}

	if base == "" {
		base = DefaultGitLabBaseURL
	}
	opts := []gitlab.ClientOptionFunc{gitlab.WithBaseURL(base)}
	if client != nil {
		opts = append(opts, gitlab.WithHTTPClient(client))
	}

	c, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, err
	}
	c.UserAgent = UserAgent

	return &GitLabFetcher{client: c}, nil
}

// Fetch downloads the file a pkg:gitlab location names
func (g *GitLabFetcher) Fetch(ctx context.Context, uri *url.URL) (io.ReadCloser, error) {
	file, err := parseRepoFile(uri, packageurl.TypeGitlab)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).Debug("downloading", "forge", "gitlab", "repo", file.project(), "path", file.path, "ref", file.ref)

	b, resp, err := g.client.RepositoryFiles.GetRawFile(file.project(), file.path, &gitlab.GetRawFileOptions{
		Ref: gitlab.Ptr(file.ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", file, resp.Status)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
