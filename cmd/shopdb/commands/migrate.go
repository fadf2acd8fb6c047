package commands

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/database"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/deppfellow/go-shopdb/internal/schema"
	"github.com/spf13/cobra"
)

var (
	// Migrate flags
	dryRun bool
)

// migrateCmd creates the shop tables
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the shop tables if they do not exist",
	Long: `Create the users, orders, products and orderproducts tables.

Running it again is a no-op.

Examples:
  shopdb migrate              # Bootstrap the schema
  shopdb migrate --dry-run    # Print the DDL without connecting`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dryRun {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), schema.CreateSQL())
			return err
		}
		return withApp(cmd, runMigrate)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the DDL instead of running it")
}

func runMigrate(ctx context.Context, a *app.App, p *output.Printer) error {
	if err := a.Migrate(ctx); err != nil {
		return err
	}

	version, err := a.DB.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	return p.Result(map[string]int32{"version": version}, func() {
		p.Success("Schema at version %d of %d", version, database.LatestSchemaVersion())
	})
}
