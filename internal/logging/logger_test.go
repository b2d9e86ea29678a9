package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)
	logger.Info("boom", "error", errors.New("bad"))

	assert.Contains(t, buf.String(), "err=bad")
	assert.NotContains(t, buf.String(), "error=")
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestErrorLog_RecordsNodeContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewErrorLog(NewWithWriter(&buf, slog.LevelDebug))

	log.Record(context.Background(), "run-1", &domain.EvaluationError{
		Chain:   "Markov",
		Node:    "Sick",
		Formula: "t >= x",
		Err:     errors.New("unknown name x"),
	})

	out := buf.String()
	assert.Contains(t, out, "run_id=run-1")
	assert.Contains(t, out, "chain=Markov")
	assert.Contains(t, out, "node=Sick")
}
