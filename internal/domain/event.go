package domain

import "time"

// Event types the activity builder knows about.
const (
	EventPush          = "PushEvent"
	EventPullRequest   = "PullRequestEvent"
	EventIssues        = "IssuesEvent"
	EventIssueComment  = "IssueCommentEvent"
	EventCommitComment = "CommitCommentEvent"
	EventRelease       = "ReleaseEvent"
	EventWatch         = "WatchEvent"
	EventCreate        = "CreateEvent"
	EventDelete        = "DeleteEvent"
)

// Event is a public GitHub event as returned by the events endpoint.
// Repo is the "owner/name" of the repository the event happened on.
type Event struct {
	ID        string
	Type      string
	Repo      string
	CreatedAt time.Time
	Payload   EventPayload
}

// EventPayload is one of PushPayload, PullRequestPayload or GenericPayload.
type EventPayload interface {
	isEventPayload()
}

// CommitRef is a commit listed in a push payload.
type CommitRef struct {
	SHA     string
	Message string
}

// PushPayload is the payload of a PushEvent.
type PushPayload struct {
	Size    int
	Ref     string
	Commits []CommitRef
}

// PullRequestPayload is the payload of a PullRequestEvent.
type PullRequestPayload struct {
	Action  string
	Title   string
	HTMLURL string
}

// GenericPayload stands in for every event type without a dedicated variant.
type GenericPayload struct{}

func (PushPayload) isEventPayload()        {}
func (PullRequestPayload) isEventPayload() {}
func (GenericPayload) isEventPayload()     {}
