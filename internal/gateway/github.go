// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/gh-status/internal/cache"
	"github.com/naka-gawa/gh-status/internal/domain"
)

const (
	perPage        = 100
	rawContentType = "application/vnd.github.raw"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchPublicRepos(ctx context.Context, user string) ([]*domain.RepoRecord, error)
	FetchPublicEvents(ctx context.Context, user string) ([]*domain.Event, error)
	// FetchFile returns the raw content of path, or false when it is absent or unreadable.
	FetchFile(ctx context.Context, fullName, path string) (string, bool)
	// FetchLatestCommitTree lists the blob paths of the default branch head.
	FetchLatestCommitTree(ctx context.Context, fullName string) ([]string, bool)
}

// Options configures NewGitHubGateway.
// An empty CachePath keeps the HTTP cache in memory for the lifetime of the gateway.
type Options struct {
	Token      string
	BaseURL    string
	GraphQLURL string
	CachePath  string
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	store         *cache.Store
	logger        zerolog.Logger
}

// headRefQuery resolves the head commit of a repository's default branch.
type headRefQuery struct {
	Repository struct {
		DefaultBranchRef struct {
			Target struct {
				Oid githubv4.GitObjectID
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The caller owns the returned gateway and must Close it.
func NewGitHubGateway(opts Options, logger zerolog.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var (
		store     *cache.Store
		respCache httpcache.Cache = httpcache.NewMemoryCache()
	)
	if opts.CachePath != "" {
		store, err = cache.Open(opts.CachePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open http cache: %w", err)
		}
		respCache = store
	}
	cacheTransport := httpcache.NewTransport(respCache)
	cacheTransport.Transport = rateLimitWaiter

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   cacheTransport,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			closeStore(store)
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
		}
		restClient.BaseURL = baseURL
	}

	graphqlClient := githubv4.NewClient(httpClient)
	if opts.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		store:         store,
		logger:        logger,
	}, nil
}

// Close releases the persistent HTTP cache, if any.
func (g *GitHubGateway) Close() error {
	if g.store == nil {
		return nil
	}
	err := g.store.Close()
	g.store = nil
	g.logger.Debug().Msg("GitHub client closed")
	return err
}

func closeStore(store *cache.Store) {
	if store != nil {
		store.Close()
	}
}

// FetchPublicRepos lists the user's public, non-archived repositories, most recently pushed first.
// On a paging error it returns the repositories gathered so far together with the error.
func (g *GitHubGateway) FetchPublicRepos(ctx context.Context, user string) ([]*domain.RepoRecord, error) {
	g.logger.Info().Str("user", user).Msg("Fetching public repositories...")
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var repos []*domain.RepoRecord
	var fetchErr error
	for {
		page, resp, err := g.restClient.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			fetchErr = fmt.Errorf("failed to list repositories for %s: %w", user, err)
			break
		}
		for _, r := range page {
			if r.GetArchived() || r.GetPrivate() {
				continue
			}
			repos = append(repos, toRepoRecord(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug().Int("page", resp.NextPage).Msg("  Fetching next page of repositories...")
	}

	sort.SliceStable(repos, func(i, j int) bool {
		return repos[i].PushedUTC.After(repos[j].PushedUTC)
	})
	g.logger.Info().Int("count", len(repos)).Msg("Found public repositories.")
	return repos, fetchErr
}

func toRepoRecord(r *github.Repository) *domain.RepoRecord {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}
	return &domain.RepoRecord{
		Full:          r.GetFullName(),
		Desc:          r.Description,
		Topics:        topics,
		Lang:          r.Language,
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		PushedUTC:     r.GetPushedAt().Time.UTC(),
		Homepage:      r.Homepage,
		DefaultBranch: r.GetDefaultBranch(),
	}
}

// FetchPublicEvents lists the user's public events in the API's reverse-chronological order.
// On a paging error it returns the events gathered so far together with the error.
func (g *GitHubGateway) FetchPublicEvents(ctx context.Context, user string) ([]*domain.Event, error) {
	g.logger.Info().Str("user", user).Msg("Fetching public events...")
	opts := &github.ListOptions{PerPage: perPage}

	var events []*domain.Event
	for {
		page, resp, err := g.restClient.Activity.ListEventsPerformedByUser(ctx, user, true, opts)
		if err != nil {
			return events, fmt.Errorf("failed to list events for %s: %w", user, err)
		}
		for _, e := range page {
			events = append(events, g.toEvent(e))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug().Int("page", resp.NextPage).Msg("  Fetching next page of events...")
	}
	return events, nil
}

func (g *GitHubGateway) toEvent(e *github.Event) *domain.Event {
	event := &domain.Event{
		ID:        e.GetID(),
		Type:      e.GetType(),
		Repo:      e.GetRepo().GetName(),
		CreatedAt: e.GetCreatedAt().Time.UTC(),
		Payload:   domain.GenericPayload{},
	}
	if e.RawPayload == nil {
		return event
	}

	payload, err := e.ParsePayload()
	if err != nil {
		g.logger.Debug().Err(err).Str("event_id", event.ID).Msg("Could not parse event payload")
		return event
	}
	switch p := payload.(type) {
	case *github.PushEvent:
		push := domain.PushPayload{Size: p.GetSize(), Ref: p.GetRef()}
		for _, c := range p.Commits {
			push.Commits = append(push.Commits, domain.CommitRef{SHA: c.GetSHA(), Message: c.GetMessage()})
		}
		event.Payload = push
	case *github.PullRequestEvent:
		event.Payload = domain.PullRequestPayload{
			Action:  p.GetAction(),
			Title:   p.GetPullRequest().GetTitle(),
			HTMLURL: p.GetPullRequest().GetHTMLURL(),
		}
	}
	return event
}

// FetchFile fetches the raw content of a file from the default branch.
func (g *GitHubGateway) FetchFile(ctx context.Context, fullName, path string) (string, bool) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Could not fetch file")
		return "", false
	}

	req, err := g.restClient.NewRequest(http.MethodGet, fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, path), nil)
	if err != nil {
		g.logger.Warn().Err(err).Str("repo", fullName).Str("path", path).Msg("Could not build file request")
		return "", false
	}
	req.Header.Set("Accept", rawContentType)

	var buf bytes.Buffer
	resp, err := g.restClient.Do(ctx, req, &buf)
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		g.logger.Debug().Str("repo", fullName).Str("path", path).Msg("File not found")
		return "", false
	}
	if err != nil {
		g.logger.Warn().Err(err).Str("repo", fullName).Str("path", path).Msg("Could not fetch file")
		return "", false
	}
	return buf.String(), true
}

// FetchLatestCommitTree returns the blob paths of the latest commit on the default branch.
func (g *GitHubGateway) FetchLatestCommitTree(ctx context.Context, fullName string) ([]string, bool) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		g.logger.Error().Err(err).Msg("Could not fetch recent file changes")
		return nil, false
	}

	var q headRefQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		g.logger.Error().Err(err).Str("repo", fullName).Msg("Could not resolve latest commit")
		return nil, false
	}
	sha := string(q.Repository.DefaultBranchRef.Target.Oid)
	if sha == "" {
		g.logger.Error().Str("repo", fullName).Msg("Could not fetch recent file changes: no commits on default branch")
		return nil, false
	}

	tree, _, err := g.restClient.Git.GetTree(ctx, owner, repo, sha, true)
	if err != nil {
		g.logger.Error().Err(err).Str("repo", fullName).Msg("Could not fetch commit tree")
		return nil, false
	}
	if tree.GetTruncated() {
		g.logger.Warn().Str("repo", fullName).Msg("Commit tree was truncated")
	}

	paths := []string{}
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			paths = append(paths, entry.GetPath())
		}
	}
	return paths, true
}

func splitFullName(fullName string) (string, string, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("malformed repository name %q", fullName)
	}
	return owner, repo, nil
}
