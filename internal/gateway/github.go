// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/repolens/repolens/internal/domain"
)

const (
	// listPageSize is the fixed page size for the repository listing.
	listPageSize = 100

	// maxMarkerFileBytes is the largest marker file the gateway will download.
	maxMarkerFileBytes = 50_000

	// maxMarkerContentChars caps how much of a marker file is kept for
	// classification. Dependency blocks sit at the top of every manifest,
	// so the cap loses nothing in practice.
	maxMarkerContentChars = 10_000
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchUser(ctx context.Context, user string) (*domain.UserProfile, error)
	FetchRepositories(ctx context.Context, user string, maxRepos int) ([]domain.RepositorySummary, error)
	FetchLanguages(ctx context.Context, owner, repo string) (domain.LanguageHistogram, error)
	FetchMarkerFiles(ctx context.Context, owner, repo string) (domain.MarkerFileSet, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client *github.Client
	logger *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The client authenticates with a static token and pauses on secondary rate
// limit responses instead of hammering the API.
func NewGitHubGateway(token string, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		client: github.NewClient(httpClient),
		logger: logger,
	}, nil
}

// FetchUser looks up the target user, or the authenticated user when user is empty.
func (g *GitHubGateway) FetchUser(ctx context.Context, user string) (*domain.UserProfile, error) {
	u, _, err := g.client.Users.Get(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", translateError(err))
	}
	return &domain.UserProfile{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
	}, nil
}

// FetchRepositories lists repositories for the target user (or the
// authenticated user when user is empty), newest-updated first, up to maxRepos.
// Listing stops early when a page comes back shorter than the page size.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, user string, maxRepos int) ([]domain.RepositorySummary, error) {
	g.logger.Println("Fetching repository listing...")

	var summaries []domain.RepositorySummary
	page := 1
	for len(summaries) < maxRepos {
		repos, resp, err := g.listPage(ctx, user, page)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", translateError(err))
		}
		for _, r := range repos {
			if len(summaries) >= maxRepos {
				break
			}
			summaries = append(summaries, toSummary(r))
		}
		g.logger.Printf("  %d repositories fetched so far", len(summaries))
		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}
	g.logger.Printf("Completed repository listing: %d repositories", len(summaries))
	return summaries, nil
}

func (g *GitHubGateway) listPage(ctx context.Context, user string, page int) ([]*github.Repository, *github.Response, error) {
	listOpts := github.ListOptions{PerPage: listPageSize, Page: page}
	if user == "" {
		opts := &github.RepositoryListByAuthenticatedUserOptions{
			Type:        "all",
			Sort:        "updated",
			ListOptions: listOpts,
		}
		return g.client.Repositories.ListByAuthenticatedUser(ctx, opts)
	}
	opts := &github.RepositoryListByUserOptions{
		Type:        "all",
		Sort:        "updated",
		ListOptions: listOpts,
	}
	return g.client.Repositories.ListByUser(ctx, user, opts)
}

func toSummary(r *github.Repository) domain.RepositorySummary {
	return domain.RepositorySummary{
		FullName:        r.GetFullName(),
		Owner:           r.GetOwner().GetLogin(),
		Name:            r.GetName(),
		Description:     r.GetDescription(),
		Private:         r.GetPrivate(),
		Stars:           r.GetStargazersCount(),
		Forks:           r.GetForksCount(),
		PrimaryLanguage: r.GetLanguage(),
		PushedAt:        r.GetPushedAt().Time,
		SizeKB:          r.GetSize(),
		Topics:          r.Topics,
	}
}

// FetchLanguages fetches the language-byte histogram for one repository.
func (g *GitHubGateway) FetchLanguages(ctx context.Context, owner, repo string) (domain.LanguageHistogram, error) {
	langs, _, err := g.client.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch languages for %s/%s: %w", owner, repo, translateError(err))
	}
	histogram := make(domain.LanguageHistogram, len(langs))
	for lang, bytes := range langs {
		histogram[lang] = int64(bytes)
	}
	return histogram, nil
}

// FetchMarkerFiles lists the repository root and downloads the marker files
// present there. A missing file or an empty repository is a normal empty
// result. Individual download failures degrade to "not detected" unless they
// signal rate-limit or auth exhaustion, which abort immediately.
func (g *GitHubGateway) FetchMarkerFiles(ctx context.Context, owner, repo string) (domain.MarkerFileSet, error) {
	set := domain.MarkerFileSet{Contents: make(map[string]string)}

	_, entries, _, err := g.client.Repositories.GetContents(ctx, owner, repo, "", nil)
	if err != nil {
		terr := translateError(err)
		if errors.Is(terr, ErrNotFound) {
			// Empty repository: nothing to detect.
			return set, nil
		}
		return set, fmt.Errorf("failed to list root of %s/%s: %w", owner, repo, terr)
	}

	rootNames := make(map[string]string, len(entries)) // lowercase name -> exact name
	for _, entry := range entries {
		name := entry.GetName()
		lower := strings.ToLower(name)
		rootNames[lower] = name

		switch lower {
		case "readme.md", "readme.rst", "readme.txt":
			set.HasReadme = true
		}
		if strings.Contains(lower, "test") || strings.Contains(lower, "spec") {
			set.HasTests = true
		}
	}

	for _, marker := range domain.MarkerFilenames {
		exact, ok := rootNames[strings.ToLower(marker)]
		if !ok {
			continue
		}
		content, err := g.fetchFileContent(ctx, owner, repo, exact)
		if err != nil {
			terr := translateError(err)
			if errors.Is(terr, ErrNotFound) {
				continue
			}
			if IsAbort(terr) {
				return set, terr
			}
			g.logger.Printf("  skipping %s in %s/%s: %v", marker, owner, repo, terr)
			continue
		}
		if content != "" {
			set.Contents[marker] = content
		}
	}
	return set, nil
}

func (g *GitHubGateway) fetchFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	file, _, _, err := g.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return "", err
	}
	if file == nil || file.GetType() != "file" || file.GetSize() > maxMarkerFileBytes {
		return "", nil
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if len(content) > maxMarkerContentChars {
		content = content[:maxMarkerContentChars]
	}
	return content, nil
}
