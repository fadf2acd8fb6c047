package commands

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/deppfellow/go-shopdb/internal/repository"
	"github.com/spf13/cobra"
)

var (
	// Demo flags
	demoUserID int64
	demoLines  []string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Create an order with products through the async repository",
	Long: `Create an order for a user, add products to it in one batch, and
print the user's order lines. Every call goes through the async binding.

The user and products must exist (see "shopdb seed").

Examples:
  shopdb demo                                   # User 18, products 1:1 2:2 3:3
  shopdb demo --user 7 --line 4:10 --line 5:1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := parseLines(demoLines)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			orderLines, err := runDemo(ctx, a.Repositories.Async, demoUserID, lines)
			if err != nil {
				return err
			}
			return p.Result(orderLines, func() {
				p.Section(fmt.Sprintf("Orders of user %d", demoUserID))
				printOrderLines(p, orderLines)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Int64Var(&demoUserID, "user", 18, "Telegram id of the ordering user")
	demoCmd.Flags().StringArrayVar(&demoLines, "line", []string{"1:1", "2:2", "3:3"}, "Product line as product:quantity (repeatable)")
}

func runDemo(ctx context.Context, async *repository.Async, userID int64, lines []model.OrderLine) ([]model.UserOrderLine, error) {
	order, err := async.CreateOrder(ctx, userID).Await(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := async.AddProductsToOrder(ctx, order.OrderID, lines).Await(ctx); err != nil {
		return nil, err
	}

	return async.GetOrdersForUser(ctx, userID).Await(ctx)
}
