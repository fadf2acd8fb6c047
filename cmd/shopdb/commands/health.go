package commands

import (
	"context"
	"errors"
	"sort"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/spf13/cobra"
)

// healthCmd checks the database
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity and schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, runHealth)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(ctx context.Context, a *app.App, p *output.Printer) error {
	report := a.CheckHealth(ctx)

	err := p.Result(report, func() {
		p.Section("Health (" + report.Environment + ")")

		names := make([]string, 0, len(report.Checks))
		for name := range report.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			c := report.Checks[name]
			rows = append(rows, []string{output.StatusIcon(c.Status), name, c.ResponseTime, c.Error})
		}
		p.Table([]string{"", "CHECK", "TIME", "ERROR"}, rows)
	})
	if err != nil {
		return err
	}

	if !report.Healthy() {
		return errors.New("health check failed")
	}
	return nil
}
