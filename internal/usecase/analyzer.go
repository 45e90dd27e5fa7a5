// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/repolens/repolens/internal/classifier"
	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/gateway"
)

// Result is the complete outcome of one analysis run.
type Result struct {
	User         domain.UserProfile            `json:"user"`
	Repositories []domain.ClassifiedRepository `json:"repositories"`
	Stats        domain.PortfolioStats         `json:"stats"`
}

// Analyzer is the use case for analyzing a user's portfolio.
// It orchestrates fetching, classification and aggregation.
type Analyzer struct {
	fetcher     gateway.Fetcher
	logger      *log.Logger
	concurrency int
}

// NewAnalyzer creates a new Analyzer instance. concurrency bounds how many
// per-repository detail fetches run at once; values below 1 mean sequential.
func NewAnalyzer(fetcher gateway.Fetcher, logger *log.Logger, concurrency int) *Analyzer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Analyzer{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Analyze performs the main business logic: list repositories, fetch each
// one's languages and marker files, classify, then aggregate.
//
// The user lookup and the listing are mandatory; any error there aborts the
// run. Per-repository detail fetches are best effort: a failure is logged and
// the repository is classified from whatever was obtained, except rate-limit
// and auth errors, which abort because continuing would burn the quota window.
// The classified slice is sorted by full name before aggregation, so the
// output never depends on fetch completion order.
func (a *Analyzer) Analyze(ctx context.Context, user string, maxRepos int) (*Result, error) {
	a.logger.Println("Usecase: Starting portfolio analysis...")

	profile, err := a.fetcher.FetchUser(ctx, user)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Analyzing portfolio of %s", profile.Login)

	summaries, err := a.fetcher.FetchRepositories(ctx, user, maxRepos)
	if err != nil {
		return nil, err
	}

	classified := make([]domain.ClassifiedRepository, len(summaries))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, summary := range summaries {
		i, summary := i, summary
		eg.Go(func() error {
			a.logger.Printf("  [%d/%d] analyzing %s", i+1, len(summaries), summary.FullName)

			languages, err := a.fetcher.FetchLanguages(egCtx, summary.Owner, summary.Name)
			if err != nil {
				if gateway.IsAbort(err) {
					return err
				}
				a.logger.Printf("  %s: language fetch failed, continuing without histogram: %v", summary.FullName, err)
				languages = nil
			}

			markers, err := a.fetcher.FetchMarkerFiles(egCtx, summary.Owner, summary.Name)
			if err != nil {
				if gateway.IsAbort(err) {
					return err
				}
				a.logger.Printf("  %s: marker fetch failed, continuing with partial set: %v", summary.FullName, err)
			}

			classified[i] = classifier.Classify(summary, languages, markers)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(classified, func(i, j int) bool {
		return classified[i].FullName < classified[j].FullName
	})

	a.logger.Println("Usecase: Analysis complete.")
	return &Result{
		User:         *profile,
		Repositories: classified,
		Stats:        Aggregate(classified),
	}, nil
}
