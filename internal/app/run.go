package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/go-shopdb/internal/logger"
)

// Run is one command invocation. Its context carries a logger tagged with
// the run id and, when New Relic is on, a background transaction that the
// pgx tracer attaches database segments to.
type Run struct {
	ID     string
	Logger zerolog.Logger

	txn *newrelic.Transaction
}

// StartRun begins a run named after the command being executed.
func (a *App) StartRun(ctx context.Context, name string) (context.Context, *Run) {
	run := &Run{ID: uuid.New().String()}

	if nrApp := a.LoggerService.GetApplication(); nrApp != nil {
		run.txn = nrApp.StartTransaction(name)
		run.txn.AddAttribute("run.id", run.ID)
		ctx = newrelic.NewContext(ctx, run.txn)
	}

	run.Logger = a.Logger.With().
		Str("run_id", run.ID).
		Str("command", name).
		Logger()
	run.Logger = loggerPkg.WithTraceContext(run.Logger, run.txn)

	return run.Logger.WithContext(ctx), run
}

// End closes the run, reporting err to New Relic when it is not nil.
func (r *Run) End(err error) {
	if err != nil {
		r.Logger.Debug().Err(err).Msg("command failed")
	}

	if r.txn == nil {
		return
	}
	if err != nil {
		r.txn.NoticeError(nrpkgerrors.Wrap(err))
	}
	r.txn.End()
}
