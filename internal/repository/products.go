package repository

import (
	"context"

	"github.com/deppfellow/go-shopdb/internal/errs"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/schema"
	"github.com/deppfellow/go-shopdb/internal/validation"
	"github.com/jackc/pgx/v5"
)

func (r *Postgres) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := validation.Check(params); err != nil {
		return model.Product{}, err
	}

	query := `
		INSERT INTO ` + schema.Products + ` (title, description, price)
		VALUES ($1, $2, $3)
		RETURNING ` + productColumns

	var product model.Product
	err := r.write(ctx, "create_product", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, params.Title, params.Description, params.Price).Scan(productDest(&product)...)
	})
	if err != nil {
		return model.Product{}, err
	}
	return product, nil
}

// DeleteProduct fails with errs.RestrictedDeleteError while any order line
// references the product.
func (r *Postgres) DeleteProduct(ctx context.Context, productID int64) error {
	query := `DELETE FROM ` + schema.Products + ` WHERE product_id = $1`

	return r.remove(ctx, "delete_product", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, productID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.NewNotFoundError("product", productID)
		}
		return nil
	})
}
