// Package trigger decides whether a scheduled invocation should do any work.
package trigger

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule fires once a day at 17:00 local time.
const DefaultSchedule = "0 17 * * *"

// Policy gates a run on a cron expression evaluated in a fixed timezone.
// A run is due when the schedule fires within the current local clock hour,
// so an external scheduler invoking the tool hourly runs it exactly once per slot.
type Policy struct {
	expr     string
	schedule cron.Schedule
	loc      *time.Location
}

// New parses a standard 5-field cron expression.
func New(expr string, loc *time.Location) (*Policy, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return &Policy{expr: expr, schedule: schedule, loc: loc}, nil
}

// Due reports whether the schedule fires during the local hour containing now.
func (p *Policy) Due(now time.Time) bool {
	local := now.In(p.loc)
	hourStart := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, p.loc)
	next := p.schedule.Next(hourStart.Add(-time.Second))
	return !next.IsZero() && next.Before(hourStart.Add(time.Hour))
}

// String returns the cron expression.
func (p *Policy) String() string {
	return p.expr
}
