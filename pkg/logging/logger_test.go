package logging

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput collects entries for inspection.
type captureOutput struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (c *captureOutput) Write(e LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureOutput) Sync() error  { return nil }
func (c *captureOutput) Close() error { return nil }

func TestLogger(t *testing.T) {
	t.Run("respects severity threshold", func(t *testing.T) {
		out := &captureOutput{}
		logger := NewLogger(Config{Severity: WARN, Outputs: []Output{out}})

		logger.Debug(context.Background(), "ignored")
		logger.Info(context.Background(), "ignored")
		logger.Warn(context.Background(), "kept")
		logger.Error(context.Background(), "kept too")

		require.Len(t, out.entries, 2)
		assert.Equal(t, WARN, out.entries[0].Severity)
		assert.Equal(t, "kept", out.entries[0].Message)
	})

	t.Run("formats message arguments", func(t *testing.T) {
		out := &captureOutput{}
		logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

		logger.Info(context.Background(), "iteration %d fitness %.2f", 7, 3.5)

		require.Len(t, out.entries, 1)
		assert.Equal(t, "iteration 7 fitness 3.50", out.entries[0].Message)
	})

	t.Run("attaches run ID and iteration from context", func(t *testing.T) {
		out := &captureOutput{}
		logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

		ctx := WithRunID(context.Background())
		ctx = WithIteration(ctx, 12)
		logger.Info(ctx, "committed move")

		require.Len(t, out.entries, 1)
		assert.NotEmpty(t, out.entries[0].RunID)
		assert.Equal(t, 12, out.entries[0].Iteration)
	})

	t.Run("merges default fields", func(t *testing.T) {
		out := &captureOutput{}
		logger := NewLogger(Config{
			Severity:      DEBUG,
			Outputs:       []Output{out},
			DefaultFields: map[string]interface{}{"taxon": "Achillea"},
		})

		logger.Info(context.Background(), "starting run")

		require.Len(t, out.entries, 1)
		assert.Equal(t, "Achillea", out.entries[0].Fields["taxon"])
	})

	t.Run("distinct contexts get distinct run IDs", func(t *testing.T) {
		a, ok := GetRunID(WithRunID(context.Background()))
		require.True(t, ok)
		b, ok := GetRunID(WithRunID(context.Background()))
		require.True(t, ok)
		assert.NotEqual(t, a, b)
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("returns global instance", func(t *testing.T) {
		l1 := GetLogger()
		l2 := GetLogger()
		assert.Same(t, l1, l2)
	})

	t.Run("SetLogger replaces global instance", func(t *testing.T) {
		prev := GetLogger()
		defer SetLogger(prev)

		custom := NewLogger(Config{Severity: ERROR})
		SetLogger(custom)
		assert.Same(t, custom, GetLogger())
	})
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	assert.Equal(t, INFO, ParseSeverity("unrecognized"))
}

func TestSeverityString(t *testing.T) {
	for s, want := range map[Severity]string{DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", ERROR: "ERROR", FATAL: "FATAL"} {
		assert.Equal(t, want, s.String())
	}
}

func TestFormatFields(t *testing.T) {
	t.Run("empty fields produce empty string", func(t *testing.T) {
		assert.Empty(t, formatFields(nil))
	})

	t.Run("long values are truncated", func(t *testing.T) {
		long := strings.Repeat("a1_m0,", 40)
		got := formatFields(map[string]interface{}{"mapping": long})
		assert.Contains(t, got, "...")
		assert.Less(t, len(got), len(long))
	})
}
