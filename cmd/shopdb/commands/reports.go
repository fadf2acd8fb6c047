package commands

import (
	"context"
	"strconv"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/lib/utils"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/deppfellow/go-shopdb/internal/repository"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// Reports flags
	maxQuantity int64
)

// report is the combined output of the reports command.
type report struct {
	Referrals   []model.ReferralPair      `json:"referrals"`
	OrderCounts []model.UserOrderCount    `json:"order_counts"`
	Quantities  []model.UserQuantityTotal `json:"quantities"`
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Run every report concurrently",
	Long: `Run the referral, order count and quantity reports. Without a
subcommand all three run at the same time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			r, err := runAllReports(ctx, a.Repositories.Async, maxQuantity)
			if err != nil {
				return err
			}
			return p.Result(r, func() {
				p.Section("Referrals")
				printReferrals(p, r.Referrals)
				p.Section("Orders per user")
				printOrderCounts(p, r.OrderCounts)
				p.Section("Quantity per user below " + strconv.FormatInt(maxQuantity, 10))
				printQuantities(p, r.Quantities)
			})
		})
	},
}

var reportsReferralsCmd = &cobra.Command{
	Use:   "referrals",
	Short: "List users that have a referrer with the users they referred",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			pairs, err := a.Repositories.Shop.ListReferralPairs(ctx)
			if err != nil {
				return err
			}
			return p.Result(pairs, func() { printReferrals(p, pairs) })
		})
	},
}

var reportsOrderCountsCmd = &cobra.Command{
	Use:   "order-counts",
	Short: "Count orders per user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			counts, err := a.Repositories.Shop.CountOrdersPerUser(ctx)
			if err != nil {
				return err
			}
			return p.Result(counts, func() { printOrderCounts(p, counts) })
		})
	},
}

var reportsQuantitiesCmd = &cobra.Command{
	Use:   "quantities",
	Short: "Sum ordered quantities per user, below --max",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			totals, err := a.Repositories.Shop.SumQuantityPerUser(ctx, maxQuantity)
			if err != nil {
				return err
			}
			return p.Result(totals, func() { printQuantities(p, totals) })
		})
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsReferralsCmd, reportsOrderCountsCmd, reportsQuantitiesCmd)

	reportsCmd.PersistentFlags().Int64Var(&maxQuantity, "max", 6000, "Only users whose total quantity is below this")
}

// runAllReports starts the three reports together and waits for all of
// them. The first failure cancels the rest.
func runAllReports(ctx context.Context, async *repository.Async, maxQty int64) (report, error) {
	var r report
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		r.Referrals, err = async.ListReferralPairs(ctx).Await(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.OrderCounts, err = async.CountOrdersPerUser(ctx).Await(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.Quantities, err = async.SumQuantityPerUser(ctx, maxQty).Await(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return report{}, err
	}
	return r, nil
}

func printReferrals(p *output.Printer, pairs []model.ReferralPair) {
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{pair.ParentName, utils.Deref(pair.ReferralName, "-")})
	}
	p.Table([]string{"PARENT", "REFERRAL"}, rows)
}

func printOrderCounts(p *output.Printer, counts []model.UserOrderCount) {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.FullName, strconv.FormatInt(c.OrderCount, 10)})
	}
	p.Table([]string{"USER", "ORDERS"}, rows)
}

func printQuantities(p *output.Printer, totals []model.UserQuantityTotal) {
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{t.FullName, strconv.FormatInt(t.TotalQuantity, 10)})
	}
	p.Table([]string{"USER", "QUANTITY"}, rows)
}
