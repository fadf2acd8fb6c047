package commands

import (
	"context"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/deppfellow/go-shopdb/internal/seed"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var seedCfg = seed.DefaultConfig()

// seedCmd fills the schema with fake data
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert fake users, orders and products",
	Long: `Insert fake data: users referred by the previously created user,
orders for random users, products, and distinct products on every order.

Examples:
  shopdb seed                           # Ten of everything, three lines per order
  shopdb seed --users 50 --seed 42      # Reproducible run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, runSeed)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedCfg.Users, "users", seedCfg.Users, "Number of users")
	seedCmd.Flags().IntVar(&seedCfg.Orders, "orders", seedCfg.Orders, "Number of orders")
	seedCmd.Flags().IntVar(&seedCfg.Products, "products", seedCfg.Products, "Number of products")
	seedCmd.Flags().IntVar(&seedCfg.LinesPerOrder, "lines", seedCfg.LinesPerOrder, "Distinct products per order")
	seedCmd.Flags().Uint64Var(&seedCfg.Seed, "seed", 0, "Random seed, 0 for a random one")
}

func runSeed(ctx context.Context, a *app.App, p *output.Printer) error {
	res, err := seed.New(a.Repositories.Shop, zerolog.Ctx(ctx), seedCfg).Run(ctx)
	if err != nil {
		return err
	}

	return p.Result(res, func() {
		p.Success("Seeded %d users, %d orders, %d products, %d order lines",
			len(res.UserIDs), len(res.OrderIDs), len(res.ProductIDs), res.Lines)
	})
}
