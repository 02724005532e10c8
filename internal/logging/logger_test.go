package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("info by default", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, false)

		logger.Debug().Msg("hidden")
		logger.Info().Str("user", "octocat").Msg("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "shown")
		assert.Contains(t, out, "user=octocat")
		assert.Contains(t, out, "run_id=")
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, true)
		logger.Debug().Msg("details")
		assert.Contains(t, buf.String(), "details")
	})

	t.Run("each logger gets its own run id", func(t *testing.T) {
		var a, b bytes.Buffer
		first, second := New(&a, false), New(&b, false)
		first.Info().Msg("x")
		second.Info().Msg("x")
		assert.NotEqual(t, a.String(), b.String())
	})
}
