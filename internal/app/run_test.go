package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRun_TagsContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	a := &App{Logger: &logger}

	ctx, run := a.StartRun(context.Background(), "users list")
	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)

	zerolog.Ctx(ctx).Info().Msg("hello")
	run.End(nil)

	out := buf.String()
	assert.Contains(t, out, `"run_id":"`+run.ID+`"`)
	assert.Contains(t, out, `"command":"users list"`)
}

func TestStartRun_DistinctIDs(t *testing.T) {
	logger := zerolog.Nop()
	a := &App{Logger: &logger}

	_, first := a.StartRun(context.Background(), "seed")
	_, second := a.StartRun(context.Background(), "seed")
	assert.NotEqual(t, first.ID, second.ID)

	first.End(errors.New("boom"))
	second.End(nil)
}
