// Package templates downloads project templates from the smle templates
// repository on GitHub.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/go-github/v57/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	templatesOwner = "smle-dev"
	templatesRepo  = "templates"
)

// Puller lists and downloads templates. Each template is a top-level
// directory of the templates repository.
type Puller struct {
	client *github.Client
	owner  string
	repo   string
	logger zerolog.Logger
}

// NewPuller creates a Puller. A non-empty token authenticates API calls and
// raises the rate limit; anonymous access works for public templates.
func NewPuller(token string, log *zerolog.Logger) *Puller {
	httpClient := http.DefaultClient
	if token != "" {
		httpClient = oauth2.NewClient(context.Background(),
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	return NewPullerWithClient(github.NewClient(httpClient), log)
}

// NewPullerWithClient creates a Puller around an existing GitHub client.
// Tests inject a client pointed at a fake server.
func NewPullerWithClient(client *github.Client, log *zerolog.Logger) *Puller {
	return &Puller{
		client: client,
		owner:  templatesOwner,
		repo:   templatesRepo,
		logger: log.With().Str("component", "template_puller").Logger(),
	}
}

// List returns the names of available templates, sorted.
func (p *Puller) List(ctx context.Context) ([]string, error) {
	_, contents, _, err := p.client.Repositories.GetContents(ctx, p.owner, p.repo, "", nil)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	var names []string
	for _, c := range contents {
		if c.GetType() == "dir" {
			names = append(names, c.GetName())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Pull downloads the named template into dest. It refuses to write into a
// non-empty directory unless force is set.
func (p *Puller) Pull(ctx context.Context, template, dest string, force bool) error {
	if template == "" {
		return fmt.Errorf("template name is required")
	}

	if !force {
		nonEmpty, err := dirNonEmpty(dest)
		if err != nil {
			return err
		}
		if nonEmpty {
			return fmt.Errorf("refusing to pull into non-empty directory %s (use --force to override)", dest)
		}
	}

	if err := p.pullDir(ctx, template, dest); err != nil {
		return err
	}

	p.logger.Info().Str("template", template).Str("dest", dest).Msg("template pulled")
	return nil
}

// pullDir mirrors one repository directory into dest, recursively.
func (p *Puller) pullDir(ctx context.Context, repoPath, dest string) error {
	file, contents, resp, err := p.client.Repositories.GetContents(ctx, p.owner, p.repo, repoPath, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("template %q not found", repoPath)
		}
		return fmt.Errorf("fetch %s: %w", repoPath, err)
	}
	if file != nil {
		return fmt.Errorf("template %q is not a directory", repoPath)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	for _, c := range contents {
		target := filepath.Join(dest, c.GetName())
		switch c.GetType() {
		case "dir":
			if err := p.pullDir(ctx, c.GetPath(), target); err != nil {
				return err
			}
		case "file":
			if err := p.pullFile(ctx, c.GetPath(), target); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Puller) pullFile(ctx context.Context, repoPath, dest string) error {
	rc, _, err := p.client.Repositories.DownloadContents(ctx, p.owner, p.repo, repoPath, nil)
	if err != nil {
		return fmt.Errorf("download %s: %w", repoPath, err)
	}
	defer rc.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

// dirNonEmpty reports whether dest exists and contains entries.
func dirNonEmpty(dest string) (bool, error) {
	entries, err := os.ReadDir(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("inspect %s: %w", dest, err)
	}
	return len(entries) > 0, nil
}
