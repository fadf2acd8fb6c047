package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/errs"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shopdb",
	Short: "shopdb - users, orders, products and referrals on PostgreSQL",
	Long: `shopdb manages a small shop schema on PostgreSQL: telegram users with
referrers, their orders, products, and the products on each order.

Connection settings are read from SHOPDB_* environment variables
(or a .env file), for example:

  SHOPDB_PRIMARY__ENV=local
  SHOPDB_DATABASE__HOST=localhost
  SHOPDB_DATABASE__PORT=5432`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		output.New(os.Stderr, false).Error("%s", describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func printer(cmd *cobra.Command) *output.Printer {
	return output.New(cmd.OutOrStdout(), jsonOutput)
}

// withApp bootstraps the application for one command and tears it down after.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, p *output.Printer) error) (err error) {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, run := a.StartRun(cmd.Context(), cmd.CommandPath())
	defer func() { run.End(err) }()

	return fn(ctx, a, printer(cmd))
}

// describeError prefixes store errors with their code when they carry one.
func describeError(err error) string {
	var (
		refErr        *errs.ReferentialError
		constraintErr *errs.ConstraintError
		restrictedErr *errs.RestrictedDeleteError
		storeErr      *errs.StoreError
		transientErr  *errs.TransientStoreError
	)

	switch {
	case errors.As(err, &refErr) && refErr.Code != "":
		return refErr.Code + ": " + err.Error()
	case errors.As(err, &constraintErr) && constraintErr.Code != "":
		return constraintErr.Code + ": " + err.Error()
	case errors.As(err, &restrictedErr) && restrictedErr.Code != "":
		return restrictedErr.Code + ": " + err.Error()
	case errors.As(err, &storeErr) && storeErr.Code != "":
		return storeErr.Code + ": " + err.Error()
	case errors.As(err, &transientErr):
		return err.Error() + " (temporary, safe to retry)"
	default:
		return err.Error()
	}
}
