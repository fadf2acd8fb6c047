package repository

import (
	"context"

	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/schema"
	"github.com/jackc/pgx/v5"
)

// ListReferralPairs joins every user that has a referrer (the parent side)
// with the users whose referrer it is. The join is LEFT OUTER, so a parent
// that referred nobody yields one row with a nil ReferralName; users without
// a referrer never appear as parents.
func (r *Postgres) ListReferralPairs(ctx context.Context) ([]model.ReferralPair, error) {
	query := `
		SELECT parent.full_name, referral.full_name
		FROM ` + schema.Users + ` AS parent
		LEFT OUTER JOIN ` + schema.Users + ` AS referral
			ON referral.referrer_id = parent.telegram_id
		WHERE parent.referrer_id IS NOT NULL
		ORDER BY parent.telegram_id, referral.telegram_id`

	var pairs []model.ReferralPair
	err := r.read(ctx, "list_referral_pairs", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return err
		}
		pairs, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ReferralPair, error) {
			var pair model.ReferralPair
			err := row.Scan(&pair.ParentName, &pair.ReferralName)
			return pair, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *Postgres) GetOrdersForUser(ctx context.Context, telegramID int64) ([]model.UserOrderLine, error) {
	query := `
		SELECT ` + selectList("p", schema.ProductsTable()) + `,
		       ` + selectList("o", schema.OrdersTable()) + `,
		       ` + selectList("u", schema.UsersTable()) + `,
		       op.quantity
		FROM ` + schema.Users + ` AS u
		JOIN ` + schema.Orders + ` AS o ON o.user_id = u.telegram_id
		JOIN ` + schema.OrderProducts + ` AS op ON op.order_id = o.order_id
		JOIN ` + schema.Products + ` AS p ON p.product_id = op.product_id
		WHERE u.telegram_id = $1
		ORDER BY o.order_id, p.product_id`

	var lines []model.UserOrderLine
	err := r.read(ctx, "get_orders_for_user", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, telegramID)
		if err != nil {
			return err
		}
		lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.UserOrderLine, error) {
			var line model.UserOrderLine
			dest := productDest(&line.Product)
			dest = append(dest, orderDest(&line.Order)...)
			dest = append(dest, userDest(&line.User)...)
			dest = append(dest, &line.Quantity)
			err := row.Scan(dest...)
			return line, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *Postgres) CountOrdersPerUser(ctx context.Context) ([]model.UserOrderCount, error) {
	query := `
		SELECT COUNT(o.order_id), u.full_name
		FROM ` + schema.Orders + ` AS o
		JOIN ` + schema.Users + ` AS u ON u.telegram_id = o.user_id
		GROUP BY u.telegram_id
		ORDER BY u.telegram_id`

	var counts []model.UserOrderCount
	err := r.read(ctx, "count_orders_per_user", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return err
		}
		counts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.UserOrderCount, error) {
			var c model.UserOrderCount
			err := row.Scan(&c.OrderCount, &c.FullName)
			return c, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *Postgres) SumQuantityPerUser(ctx context.Context, maxQuantity int64) ([]model.UserQuantityTotal, error) {
	query := `
		SELECT SUM(op.quantity) AS quantity, u.full_name
		FROM ` + schema.OrderProducts + ` AS op
		JOIN ` + schema.Orders + ` AS o ON o.order_id = op.order_id
		JOIN ` + schema.Users + ` AS u ON u.telegram_id = o.user_id
		GROUP BY u.telegram_id
		HAVING SUM(op.quantity) < $1
		ORDER BY u.telegram_id`

	var totals []model.UserQuantityTotal
	err := r.read(ctx, "sum_quantity_per_user", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, maxQuantity)
		if err != nil {
			return err
		}
		totals, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.UserQuantityTotal, error) {
			var t model.UserQuantityTotal
			err := row.Scan(&t.TotalQuantity, &t.FullName)
			return t, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}
