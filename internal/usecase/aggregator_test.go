package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/gh-status/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchPublicRepos(ctx context.Context, user string) ([]*domain.RepoRecord, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepoRecord), args.Error(1)
}

func (m *mockFetcher) FetchPublicEvents(ctx context.Context, user string) ([]*domain.Event, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *mockFetcher) FetchFile(ctx context.Context, fullName, path string) (string, bool) {
	args := m.Called(ctx, fullName, path)
	return args.String(0), args.Bool(1)
}

func (m *mockFetcher) FetchLatestCommitTree(ctx context.Context, fullName string) ([]string, bool) {
	args := m.Called(ctx, fullName)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]string), args.Bool(1)
}

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestAggregator(fetcher *mockFetcher, opts ...Option) *Aggregator {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewAggregator(fetcher, zerolog.Nop(), opts...)
}

func repos(names ...string) []*domain.RepoRecord {
	out := make([]*domain.RepoRecord, 0, len(names))
	for i, n := range names {
		out = append(out, &domain.RepoRecord{
			Full:      n,
			Topics:    []string{},
			PushedUTC: fixedNow.Add(-time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestAggregator_BuildInventory(t *testing.T) {
	testCases := []struct {
		name         string
		repos        []string
		hotRepoCount int
		concurrency  int
		wantHot      []string
	}{
		{
			name:         "marks the three most recently pushed repos as hot",
			repos:        []string{"u/a", "u/b", "u/c", "u/d", "u/e"},
			hotRepoCount: 3,
			concurrency:  1,
			wantHot:      []string{"u/a", "u/b", "u/c"},
		},
		{
			name:         "fewer repos than the hot count",
			repos:        []string{"u/a", "u/b"},
			hotRepoCount: 3,
			concurrency:  1,
			wantHot:      []string{"u/a", "u/b"},
		},
		{
			name:         "concurrent enrichment gives the same result",
			repos:        []string{"u/a", "u/b", "u/c", "u/d"},
			hotRepoCount: 2,
			concurrency:  4,
			wantHot:      []string{"u/a", "u/b"},
		},
		{
			name:         "no repos",
			repos:        []string{},
			hotRepoCount: 3,
			concurrency:  1,
			wantHot:      []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchPublicRepos", mock.Anything, "octocat").Return(repos(tc.repos...), nil)
			for _, name := range tc.wantHot {
				fetcher.On("FetchFile", mock.Anything, name, "README.md").Return("# "+name+"\nreadme", true)
				fetcher.On("FetchFile", mock.Anything, name, "CHANGELOG.md").Return("", false)
				fetcher.On("FetchLatestCommitTree", mock.Anything, name).Return([]string{"main.go"}, true)
			}

			aggregator := newTestAggregator(fetcher, WithHotRepoCount(tc.hotRepoCount), WithConcurrency(tc.concurrency))
			inventory, err := aggregator.BuildInventory(context.Background(), "octocat")
			require.NoError(t, err)

			assert.Equal(t, domain.SchemaVersion, inventory.SchemaVersion)
			assert.Equal(t, "octocat", inventory.Username)
			assert.Equal(t, fixedNow, inventory.GeneratedUTC)
			require.Len(t, inventory.Repos, len(tc.repos))

			hot := 0
			for i, repo := range inventory.Repos {
				assert.Equal(t, tc.repos[i], repo.Full, "order must be preserved")
				if repo.Readme != nil || repo.Changelog != nil || repo.RecentFiles != nil {
					hot++
					assert.Contains(t, tc.wantHot, repo.Full)
					assert.Equal(t, "# "+repo.Full+"\nreadme", *repo.Readme)
					assert.Nil(t, repo.Changelog)
					assert.Equal(t, []string{"main.go"}, repo.RecentFiles)
				}
			}
			assert.Equal(t, min(tc.hotRepoCount, len(tc.repos)), hot)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestAggregator_BuildInventory_FetchErrors(t *testing.T) {
	t.Run("nothing fetched is a hard failure", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchPublicRepos", mock.Anything, "octocat").Return(nil, errors.New("github api error"))

		inventory, err := newTestAggregator(fetcher).BuildInventory(context.Background(), "octocat")
		assert.Error(t, err)
		assert.Nil(t, inventory)
	})

	t.Run("partial list is kept", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchPublicRepos", mock.Anything, "octocat").Return(repos("u/a"), errors.New("page 2 failed"))
		fetcher.On("FetchFile", mock.Anything, "u/a", mock.Anything).Return("", false)
		fetcher.On("FetchLatestCommitTree", mock.Anything, "u/a").Return(nil, false)

		inventory, err := newTestAggregator(fetcher).BuildInventory(context.Background(), "octocat")
		require.NoError(t, err)
		require.Len(t, inventory.Repos, 1)
		assert.Nil(t, inventory.Repos[0].Readme)
		assert.Nil(t, inventory.Repos[0].RecentFiles)
	})
}
