package commands

import (
	"context"

	"github.com/deppfellow/go-shopdb/internal/app"
	"github.com/deppfellow/go-shopdb/internal/output"
	"github.com/deppfellow/go-shopdb/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	// Products flags
	productTitle       string
	productDescription string
	productPrice       string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage products",
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	Long: `Create a product. The price is stored exactly, with up to 4 decimal places.

Examples:
  shopdb products create --title "Book" --price 19.99
  shopdb products create --title "Pen" --description "Blue ink" --price 1.2500`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := decimal.NewFromString(productPrice)
		if err != nil {
			return err
		}
		params := repository.CreateProductParams{
			Title:       productTitle,
			Description: optionalString(productDescription),
			Price:       price,
		}

		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			product, err := a.Repositories.Shop.CreateProduct(ctx, params)
			if err != nil {
				return err
			}
			return p.Result(product, func() {
				p.Success("Created product %d (%s) at %s", product.ProductID, product.Title, formatPrice(product.Price))
			})
		})
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete a product that is on no order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("product id", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, p *output.Printer) error {
			if err := a.Repositories.Shop.DeleteProduct(ctx, id); err != nil {
				return err
			}
			return p.Result(map[string]int64{"deleted": id}, func() { p.Success("Deleted product %d", id) })
		})
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsCreateCmd, productsDeleteCmd)

	productsCreateCmd.Flags().StringVar(&productTitle, "title", "", "Product title")
	productsCreateCmd.Flags().StringVar(&productDescription, "description", "", "Product description")
	productsCreateCmd.Flags().StringVar(&productPrice, "price", "", "Price, e.g. 19.99")
	_ = productsCreateCmd.MarkFlagRequired("title")
	_ = productsCreateCmd.MarkFlagRequired("price")
}
