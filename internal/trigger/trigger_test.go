package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Due(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	testCases := []struct {
		name string
		expr string
		loc  *time.Location
		now  time.Time
		want bool
	}{
		{
			name: "default schedule at the top of hour 17",
			expr: DefaultSchedule,
			loc:  newYork,
			now:  time.Date(2024, 1, 10, 17, 0, 0, 0, newYork),
			want: true,
		},
		{
			name: "default schedule late in hour 17",
			expr: DefaultSchedule,
			loc:  newYork,
			now:  time.Date(2024, 1, 10, 17, 59, 59, 0, newYork),
			want: true,
		},
		{
			name: "default schedule one second before",
			expr: DefaultSchedule,
			loc:  newYork,
			now:  time.Date(2024, 1, 10, 16, 59, 59, 0, newYork),
			want: false,
		},
		{
			name: "default schedule evaluated from a UTC clock",
			expr: DefaultSchedule,
			loc:  newYork,
			now:  time.Date(2024, 1, 10, 22, 30, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "hour 17 in UTC is not hour 17 in New York",
			expr: DefaultSchedule,
			loc:  newYork,
			now:  time.Date(2024, 1, 10, 17, 30, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "half-hour offset zone",
			expr: DefaultSchedule,
			loc:  kolkata,
			now:  time.Date(2024, 1, 10, 11, 45, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "minute inside the hour",
			expr: "30 9 * * *",
			loc:  time.UTC,
			now:  time.Date(2024, 1, 10, 9, 5, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "every six hours",
			expr: "0 */6 * * *",
			loc:  time.UTC,
			now:  time.Date(2024, 1, 10, 12, 10, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "weekdays only on a saturday",
			expr: "0 17 * * 1-5",
			loc:  time.UTC,
			now:  time.Date(2024, 1, 13, 17, 0, 0, 0, time.UTC),
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy, err := New(tc.expr, tc.loc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, policy.Due(tc.now))
		})
	}
}

func TestNew_InvalidExpression(t *testing.T) {
	_, err := New("every day at five", time.UTC)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}
