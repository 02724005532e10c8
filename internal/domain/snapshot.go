// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// SchemaVersion is stamped on every snapshot root.
const SchemaVersion = "1"

// RepoRecord describes a single public repository.
// Readme, Changelog and RecentFiles are only populated for hot repositories.
type RepoRecord struct {
	Full          string    `toml:"full"`
	Desc          *string   `toml:"desc"`
	Topics        []string  `toml:"topics"`
	Lang          *string   `toml:"lang"`
	Stars         int       `toml:"stars"`
	Forks         int       `toml:"forks"`
	OpenIssues    int       `toml:"open_issues"`
	PushedUTC     time.Time `toml:"pushed_utc"`
	Homepage      *string   `toml:"homepage"`
	DefaultBranch string    `toml:"default_branch"`

	Readme      *string  `toml:"readme"`
	Changelog   *string  `toml:"changelog"`
	RecentFiles []string `toml:"recent_files,omitempty"`
}

// Inventory is the snapshot of all public repositories of a user.
type Inventory struct {
	SchemaVersion string        `toml:"schema_version"`
	Username      string        `toml:"username"`
	GeneratedUTC  time.Time     `toml:"generated_utc"`
	Repos         []*RepoRecord `toml:"repo"`
}

// TodoRecord holds the TODO lines and README synopsis of one repository.
type TodoRecord struct {
	Full     string   `toml:"full"`
	// Todos is omitted both when no TODO file exists and when the file has no usable lines.
	Todos    []string `toml:"todos,omitempty"`
	Synopsis []string `toml:"synopsis,omitempty"`
}

// Todos is the aggregated TODO snapshot.
type Todos struct {
	SchemaVersion string        `toml:"schema_version"`
	Username      string        `toml:"username"`
	GeneratedUTC  time.Time     `toml:"generated_utc"`
	Repos         []*TodoRecord `toml:"repo"`
}

// ActivitySummary counts window events by type.
type ActivitySummary struct {
	Events       int `toml:"events"`
	Repos        int `toml:"repos"`
	Pushes       int `toml:"pushes"`
	PullRequests int `toml:"pull_requests"`
	Issues       int `toml:"issues"`
	Comments     int `toml:"comments"`
	Releases     int `toml:"releases"`
	Stars        int `toml:"stars"`
	Creates      int `toml:"creates"`
	Deletes      int `toml:"deletes"`
}

// ActivityInsights holds metrics derived from the window events.
// TopRepos and TopEventTypes entries are formatted as "name:count".
type ActivityInsights struct {
	StreakDays      int      `toml:"streak_days"`
	BusiestLocalDay *string  `toml:"busiest_local_day"`
	AvgDailyEvents  float64  `toml:"avg_daily_events"`
	TopRepos        []string `toml:"top_repos"`
	TopEventTypes   []string `toml:"top_event_types"`
}

// ActivityEvent is a display-oriented rendition of a single public event.
type ActivityEvent struct {
	Type      string    `toml:"type"`
	RepoOwner string    `toml:"repo_owner"`
	RepoName  string    `toml:"repo_name"`
	AtUTC     time.Time `toml:"at_utc"`
	URL       string    `toml:"url"`
	Title     string    `toml:"title"`
	Commits   []string  `toml:"commits,omitempty"`
	EventID   string    `toml:"event_id"`
}

// Activity is the activity feed snapshot for one trailing window.
type Activity struct {
	SchemaVersion  string           `toml:"schema_version"`
	Username       string           `toml:"username"`
	GeneratedUTC   time.Time        `toml:"generated_utc"`
	WindowStartUTC time.Time        `toml:"window_start_utc"`
	WindowDays     int              `toml:"window_days"`
	Summary        ActivitySummary  `toml:"summary"`
	Insights       ActivityInsights `toml:"insights"`
	Events         []*ActivityEvent `toml:"event"`
}
