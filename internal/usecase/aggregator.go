// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/gh-status/internal/domain"
	"github.com/naka-gawa/gh-status/internal/gateway"
)

// DefaultHotRepoCount is how many of the most recently pushed repositories
// get their README, CHANGELOG and file list attached.
const DefaultHotRepoCount = 3

// Aggregator is the use case for building snapshots.
// It orchestrates the fetching and reshaping of data.
type Aggregator struct {
	fetcher      gateway.Fetcher
	logger       zerolog.Logger
	now          func() time.Time
	hotRepoCount int
	concurrency  int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithHotRepoCount sets how many repositories are enriched.
func WithHotRepoCount(n int) Option {
	return func(a *Aggregator) {
		if n >= 0 {
			a.hotRepoCount = n
		}
	}
}

// WithConcurrency bounds the number of hot repositories enriched at once.
// Default is 1, which enriches them one after another.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger zerolog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:      fetcher,
		logger:       logger,
		now:          time.Now,
		hotRepoCount: DefaultHotRepoCount,
		concurrency:  1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) nowUTC() time.Time {
	return a.now().UTC().Truncate(time.Second)
}

// BuildInventory builds the repository inventory, including detailed content for hot repos.
func (a *Aggregator) BuildInventory(ctx context.Context, user string) (*domain.Inventory, error) {
	repos, err := a.fetcher.FetchPublicRepos(ctx, user)
	if err != nil {
		if len(repos) == 0 {
			return nil, fmt.Errorf("failed to fetch repositories: %w", err)
		}
		a.logger.Warn().Err(err).Int("count", len(repos)).Msg("Continuing with a partial repository list")
	}

	hot := repos[:min(a.hotRepoCount, len(repos))]
	names := make([]string, 0, len(hot))
	for _, r := range hot {
		names = append(names, r.Full)
	}
	a.logger.Info().Strs("repos", names).Msg("Identified hot repos for detailed summary")

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for _, repo := range hot {
		repo := repo
		eg.Go(func() error {
			a.enrich(egCtx, repo)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if repos == nil {
		repos = []*domain.RepoRecord{}
	}
	return &domain.Inventory{
		SchemaVersion: domain.SchemaVersion,
		Username:      user,
		GeneratedUTC:  a.nowUTC(),
		Repos:         repos,
	}, nil
}

// enrich attaches README, CHANGELOG and the latest file list to repo.
func (a *Aggregator) enrich(ctx context.Context, repo *domain.RepoRecord) {
	a.logger.Info().Str("repo", repo.Full).Msg("Fetching details for hot repo")
	if readme, ok := a.fetcher.FetchFile(ctx, repo.Full, "README.md"); ok {
		repo.Readme = &readme
	}
	if changelog, ok := a.fetcher.FetchFile(ctx, repo.Full, "CHANGELOG.md"); ok {
		repo.Changelog = &changelog
	}
	if files, ok := a.fetcher.FetchLatestCommitTree(ctx, repo.Full); ok {
		repo.RecentFiles = files
	}
}
