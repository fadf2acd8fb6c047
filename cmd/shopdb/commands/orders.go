package commands

import (
	"context"
	"strconv"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/spf13/cobra"
)

var (
	// Orders flags
	orderLines []string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Manage orders and their products",
}

var ordersCreateCmd = &cobra.Command{
	Use:   "create <user-id>",
	Short: "Create an order, optionally with its products",
	Long: `Create an order for a user. With --line flags the order and its
products are written together; if any line fails no order is created.

Examples:
  shopdb orders create 18
  shopdb orders create 18 --line 1:1 --line 2:2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user id", args[0])
		if err != nil {
			return err
		}
		lines, err := parseLines(orderLines)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			var order model.Order
			if len(lines) == 0 {
				order, err = a.Repositories.Shop.CreateOrder(ctx, userID)
			} else {
				order, err = a.Repositories.Shop.CreateOrderWithProducts(ctx, userID, lines)
			}
			if err != nil {
				return err
			}
			return p.Result(order, func() {
				p.Success("Created order %d for user %d with %d products", order.OrderID, userID, len(lines))
			})
		})
	},
}

var ordersAddCmd = &cobra.Command{
	Use:   "add <order-id> <product-id> <quantity>",
	Short: "Add one product to an order",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := parseID("order id", args[0])
		if err != nil {
			return err
		}
		line, err := parseLine(args[1] + ":" + args[2])
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			op, err := a.Repositories.Shop.AddProductToOrder(ctx, orderID, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			return p.Result(op, func() {
				p.Success("Added product %d x%d to order %d", op.ProductID, op.Quantity, op.OrderID)
			})
		})
	},
}

var ordersAddManyCmd = &cobra.Command{
	Use:   "add-many <order-id> <product:quantity>...",
	Short: "Add several products to an order at once",
	Long: `Add several products to an order in one statement. Either every
line is stored or none is.

Examples:
  shopdb orders add-many 7 1:1 2:2 3:3`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := parseID("order id", args[0])
		if err != nil {
			return err
		}
		lines, err := parseLines(args[1:])
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			if err := a.Repositories.Shop.AddProductsToOrder(ctx, orderID, lines); err != nil {
				return err
			}
			return p.Result(lines, func() { p.Success("Added %d products to order %d", len(lines), orderID) })
		})
	},
}

var ordersForUserCmd = &cobra.Command{
	Use:   "for-user <user-id>",
	Short: "List every product on every order of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user id", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			lines, err := a.Repositories.Shop.GetOrdersForUser(ctx, userID)
			if err != nil {
				return err
			}
			return p.Result(lines, func() { printOrderLines(p, lines) })
		})
	},
}

var ordersDeleteCmd = &cobra.Command{
	Use:   "delete <order-id>",
	Short: "Delete an order and its product lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := parseID("order id", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			if err := a.Repositories.Shop.DeleteOrder(ctx, orderID); err != nil {
				return err
			}
			return p.Result(map[string]int64{"deleted": orderID}, func() { p.Success("Deleted order %d", orderID) })
		})
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersCreateCmd, ordersAddCmd, ordersAddManyCmd, ordersForUserCmd, ordersDeleteCmd)

	ordersCreateCmd.Flags().StringArrayVar(&orderLines, "line", nil, "Product line as product:quantity (repeatable)")
}

func printOrderLines(p *output.Printer, lines []model.UserOrderLine) {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			strconv.FormatInt(l.Order.OrderID, 10),
			strconv.FormatInt(l.Product.ProductID, 10),
			l.Product.Title,
			formatPrice(l.Product.Price),
			strconv.Itoa(l.Quantity),
			l.User.FullName,
		})
	}
	p.Table([]string{"ORDER", "PRODUCT", "TITLE", "PRICE", "QTY", "USER"}, rows)
}
