package repository

import (
	"context"

	"github.com/deppfellow/go-shopdb/internal/errs"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/schema"
	"github.com/deppfellow/go-shopdb/internal/validation"
	"github.com/jackc/pgx/v5"
)

var (
	insertOrderQuery = `
		INSERT INTO ` + schema.Orders + ` (user_id)
		VALUES ($1)
		RETURNING ` + orderColumns

	// insertOrderLinesQuery sends every line as two parallel arrays, so the
	// batch is a single statement and a single round trip.
	insertOrderLinesQuery = `
		INSERT INTO ` + schema.OrderProducts + ` (order_id, product_id, quantity)
		SELECT $1, line.product_id, line.quantity
		FROM unnest($2::integer[], $3::integer[]) AS line(product_id, quantity)`
)

func (r *Postgres) CreateOrder(ctx context.Context, userID int64) (model.Order, error) {
	var order model.Order
	err := r.write(ctx, "create_order", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, insertOrderQuery, userID).Scan(orderDest(&order)...)
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *Postgres) AddProductToOrder(ctx context.Context, orderID, productID int64, quantity int) (model.OrderProduct, error) {
	params := orderLineParams{OrderID: orderID, ProductID: productID, Quantity: quantity}
	if err := validation.Check(params); err != nil {
		return model.OrderProduct{}, err
	}

	query := `
		INSERT INTO ` + schema.OrderProducts + ` (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING ` + orderProductColumns

	var line model.OrderProduct
	err := r.write(ctx, "add_product_to_order", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, orderID, productID, quantity).Scan(orderProductDest(&line)...)
	})
	if err != nil {
		return model.OrderProduct{}, err
	}
	return line, nil
}

func (r *Postgres) AddProductsToOrder(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	if err := validation.Check(orderLinesParams{OrderID: orderID, Lines: lines}); err != nil {
		return err
	}

	return r.write(ctx, "add_products_to_order", func(tx pgx.Tx) error {
		return insertOrderLines(ctx, tx, orderID, lines)
	})
}

func (r *Postgres) CreateOrderWithProducts(ctx context.Context, userID int64, lines []model.OrderLine) (model.Order, error) {
	if err := validation.Check(orderLinesParams{Lines: lines}); err != nil {
		return model.Order{}, err
	}

	var order model.Order
	err := r.write(ctx, "create_order_with_products", func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertOrderQuery, userID).Scan(orderDest(&order)...); err != nil {
			return err
		}
		return insertOrderLines(ctx, tx, order.OrderID, lines)
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func insertOrderLines(ctx context.Context, tx pgx.Tx, orderID int64, lines []model.OrderLine) error {
	productIDs := make([]int64, len(lines))
	quantities := make([]int64, len(lines))
	for i, line := range lines {
		productIDs[i] = line.ProductID
		quantities[i] = int64(line.Quantity)
	}

	tag, err := tx.Exec(ctx, insertOrderLinesQuery, orderID, productIDs, quantities)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != int64(len(lines)) {
		return &errs.StoreError{Code: "ORDERPRODUCT_PARTIAL_INSERT", Message: "not every order line was inserted"}
	}
	return nil
}

// DeleteOrder removes an order together with its lines.
func (r *Postgres) DeleteOrder(ctx context.Context, orderID int64) error {
	query := `DELETE FROM ` + schema.Orders + ` WHERE order_id = $1`

	return r.remove(ctx, "delete_order", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.NewNotFoundError("order", orderID)
		}
		return nil
	})
}
