package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/gh-status/internal/domain"
)

const (
	topN         = 5
	localDayForm = "2006-01-02"
	webBaseURL   = "https://github.com/"
)

// BuildActivity builds the activity feed for the trailing window of windowDays days.
// Local days, the busiest day and the streak are computed in loc.
func (a *Aggregator) BuildActivity(ctx context.Context, user string, loc *time.Location, windowDays int) (*domain.Activity, error) {
	now := a.nowUTC()
	windowStart := now.AddDate(0, 0, -windowDays)

	all, err := a.fetcher.FetchPublicEvents(ctx, user)
	if err != nil {
		if len(all) == 0 {
			return nil, fmt.Errorf("failed to fetch events: %w", err)
		}
		a.logger.Warn().Err(err).Int("count", len(all)).Msg("Continuing with a partial event list")
	}

	var inWindow []*domain.Event
	for _, e := range all {
		if e.CreatedAt.Before(windowStart) || e.CreatedAt.After(now) {
			continue
		}
		inWindow = append(inWindow, e)
	}

	repos, types, days := newCounter(), newCounter(), newCounter()
	for _, e := range inWindow {
		repos.add(e.Repo)
		types.add(e.Type)
		days.add(e.CreatedAt.In(loc).Format(localDayForm))
	}

	events := make([]*domain.ActivityEvent, 0, len(inWindow))
	for _, e := range inWindow {
		events = append(events, toActivityEvent(e))
	}

	a.logger.Debug().Int("window_days", windowDays).Int("events", len(inWindow)).Msg("Aggregated activity window")
	return &domain.Activity{
		SchemaVersion:  domain.SchemaVersion,
		Username:       user,
		GeneratedUTC:   now,
		WindowStartUTC: windowStart,
		WindowDays:     windowDays,
		Summary:        summarize(len(inWindow), repos, types),
		Insights:       a.insights(repos, types, days),
		Events:         events,
	}, nil
}

func summarize(total int, repos, types *counter) domain.ActivitySummary {
	return domain.ActivitySummary{
		Events:       total,
		Repos:        repos.len(),
		Pushes:       types.get(domain.EventPush),
		PullRequests: types.get(domain.EventPullRequest),
		Issues:       types.get(domain.EventIssues),
		Comments:     types.get(domain.EventIssueComment) + types.get(domain.EventCommitComment),
		Releases:     types.get(domain.EventRelease),
		Stars:        types.get(domain.EventWatch),
		Creates:      types.get(domain.EventCreate),
		Deletes:      types.get(domain.EventDelete),
	}
}

func (a *Aggregator) insights(repos, types, days *counter) domain.ActivityInsights {
	insights := domain.ActivityInsights{
		StreakDays:     Streak(days.keys),
		AvgDailyEvents: a.avgDailyEvents(days),
		TopRepos:       repos.top(topN),
		TopEventTypes:  types.top(topN),
	}
	if busiest := days.mostCommon(1); len(busiest) == 1 {
		insights.BusiestLocalDay = &busiest[0].key
	}
	return insights
}

func (a *Aggregator) avgDailyEvents(days *counter) float64 {
	if days.len() == 0 {
		return 0
	}
	data := make(stats.Float64Data, 0, days.len())
	for _, k := range days.keys {
		data = append(data, float64(days.get(k)))
	}
	mean, err := stats.Mean(data)
	if err != nil {
		a.logger.Debug().Err(err).Msg("Could not compute daily mean")
		return 0
	}
	rounded, err := stats.Round(mean, 2)
	if err != nil {
		return mean
	}
	return rounded
}

// Streak counts consecutive calendar days ending at the latest of activeDays,
// walking backward until the first gap. activeDays are "YYYY-MM-DD" dates in any order.
func Streak(activeDays []string) int {
	if len(activeDays) == 0 {
		return 0
	}
	sorted := append([]string(nil), activeDays...)
	sort.Strings(sorted)

	streak := 1
	current, err := time.Parse(localDayForm, sorted[len(sorted)-1])
	if err != nil {
		return 0
	}
	for i := len(sorted) - 2; i >= 0; i-- {
		prev, err := time.Parse(localDayForm, sorted[i])
		if err != nil || current.Sub(prev) != 24*time.Hour {
			break
		}
		streak++
		current = prev
	}
	return streak
}

// toActivityEvent reshapes an event into an action-oriented display record.
func toActivityEvent(e *domain.Event) *domain.ActivityEvent {
	owner, name, _ := strings.Cut(e.Repo, "/")
	out := &domain.ActivityEvent{
		Type:      e.Type,
		RepoOwner: owner,
		RepoName:  name,
		AtUTC:     e.CreatedAt,
		URL:       webBaseURL + e.Repo,
		Title:     fmt.Sprintf("%s on %s", e.Type, e.Repo),
		EventID:   e.ID,
	}

	switch p := e.Payload.(type) {
	case domain.PushPayload:
		out.Title = PushTitle(p.Size, e.Repo)
		out.Commits = make([]string, 0, len(p.Commits))
		for _, c := range p.Commits {
			out.Commits = append(out.Commits, commitSummary(c))
		}
		if p.Ref != "" {
			out.URL = fmt.Sprintf("%s%s/tree/%s", webBaseURL, e.Repo, p.Ref)
		}
	case domain.PullRequestPayload:
		out.Title = fmt.Sprintf("PR %s: \"%s\" on %s", p.Action, p.Title, e.Repo)
		if p.HTMLURL != "" {
			out.URL = p.HTMLURL
		}
	}
	return out
}

// PushTitle renders "Pushed N commit(s) to repo".
func PushTitle(n int, repo string) string {
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("Pushed %d commit%s to %s", n, plural, repo)
}

func commitSummary(c domain.CommitRef) string {
	sha := c.SHA
	if len(sha) > 7 {
		sha = sha[:7]
	}
	firstLine, _, _ := strings.Cut(c.Message, "\n")
	return fmt.Sprintf("%s: %s", sha, strings.TrimSuffix(firstLine, "\r"))
}
