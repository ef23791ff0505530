package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v71/github"
	"golang.org/x/oauth2"
)

// Source fetches the raw payload of one catalog tier.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads a payload from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.Path)
}

func (s FileSource) String() string {
	return s.Path
}

// HTTPSource downloads a payload, e.g. https://landscape.cncf.io/data/full.json.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s HTTPSource) String() string {
	return s.URL
}

// GitHubSource downloads a payload committed to a GitHub repository.
type GitHubSource struct {
	Client *github.Client
	Owner  string
	Repo   string
	Path   string
	Ref    string
}

func (s GitHubSource) Fetch(ctx context.Context) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if s.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: s.Ref}
	}
	rc, _, err := s.Client.Repositories.DownloadContents(ctx, s.Owner, s.Repo, s.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", s, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s GitHubSource) String() string {
	ref := ""
	if s.Ref != "" {
		ref = "@" + s.Ref
	}
	return fmt.Sprintf("github:%s/%s/%s%s", s.Owner, s.Repo, s.Path, ref)
}

// ParseSource turns a location into a Source. Locations are either
// http(s) URLs, "github:owner/repo/path/to/file[@ref]" references or local
// paths. An empty location yields a nil Source. The token, when set,
// authenticates GitHub requests.
func ParseSource(ctx context.Context, location, token string) (Source, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return HTTPSource{URL: location}, nil
	case strings.HasPrefix(location, "github:"):
		return parseGitHubSource(ctx, strings.TrimPrefix(location, "github:"), token)
	default:
		return FileSource{Path: location}, nil
	}
}

func parseGitHubSource(ctx context.Context, ref, token string) (Source, error) {
	s := GitHubSource{}
	if at := strings.LastIndex(ref, "@"); at >= 0 {
		s.Ref = ref[at+1:]
		ref = ref[:at]
	}
	parts := strings.SplitN(ref, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, errors.New("github source must look like github:owner/repo/path[@ref]")
	}
	s.Owner, s.Repo, s.Path = parts[0], parts[1], parts[2]

	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		s.Client = github.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		s.Client = github.NewClient(nil)
	}
	return s, nil
}
