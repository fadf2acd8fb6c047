package repository

import (
	"context"
	"strings"
	"time"

	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/schema"
	"github.com/deppfellow/go-shopdb/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TxStarter is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Postgres is the blocking Repository binding.
type Postgres struct {
	db            TxStarter
	log           *zerolog.Logger
	slowThreshold time.Duration
}

var _ Repository = (*Postgres)(nil)

// Option configures a Postgres repository.
type Option func(*Postgres)

// WithSlowThreshold logs calls slower than d at warn level. Zero disables it.
func WithSlowThreshold(d time.Duration) Option {
	return func(p *Postgres) {
		p.slowThreshold = d
	}
}

// NewPostgres creates the blocking binding over db.
func NewPostgres(db TxStarter, logger *zerolog.Logger, opts ...Option) *Postgres {
	p := &Postgres{db: db, log: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var readOnly = pgx.TxOptions{AccessMode: pgx.ReadOnly}

// write runs fn in a read-write transaction.
func (r *Postgres) write(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	return r.run(ctx, op, pgx.TxOptions{}, sqlerr.HandleError, fn)
}

// read runs fn in a read-only transaction.
func (r *Postgres) read(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	return r.run(ctx, op, readOnly, sqlerr.HandleError, fn)
}

// remove runs a delete, reporting restrict violations as such.
func (r *Postgres) remove(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	return r.run(ctx, op, pgx.TxOptions{}, sqlerr.HandleDeleteError, fn)
}

// run is the scoped transaction: begin, run fn, commit on success,
// roll back and classify the error on failure.
func (r *Postgres) run(ctx context.Context, op string, opts pgx.TxOptions, classify func(error) error, fn func(pgx.Tx) error) error {
	start := time.Now()
	err := pgx.BeginTxFunc(ctx, r.db, opts, fn)
	elapsed := time.Since(start)

	log := r.logger(ctx)

	if err != nil {
		err = classify(err)
		log.Warn().
			Err(err).
			Str("operation", op).
			Dur("duration", elapsed).
			Msg("repository call failed")
		return err
	}

	event := log.Debug()
	if r.slowThreshold > 0 && elapsed > r.slowThreshold {
		event = log.Warn().Bool("slow", true)
	}
	event.Str("operation", op).Dur("duration", elapsed).Msg("repository call")

	return nil
}

// logger prefers the logger carried by ctx, which is tagged per run.
func (r *Postgres) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return r.log
}

// selectList renders the qualified column list of t in declaration order.
func selectList(alias string, t schema.Table) string {
	names := t.ColumnNames()
	for i, name := range names {
		names[i] = alias + "." + name
	}
	return strings.Join(names, ", ")
}

// The *Dest helpers return scan targets in schema declaration order.

func userDest(u *model.User) []any {
	return []any{&u.TelegramID, &u.FullName, &u.UserName, &u.LanguageCode, &u.ReferrerID, &u.CreatedAt, &u.UpdatedAt}
}

func orderDest(o *model.Order) []any {
	return []any{&o.OrderID, &o.UserID, &o.CreatedAt, &o.UpdatedAt}
}

func productDest(p *model.Product) []any {
	return []any{&p.ProductID, &p.Title, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt}
}

func orderProductDest(op *model.OrderProduct) []any {
	return []any{&op.OrderID, &op.ProductID, &op.Quantity, &op.CreatedAt, &op.UpdatedAt}
}

func scanUser(row pgx.CollectableRow) (model.User, error) {
	var u model.User
	err := row.Scan(userDest(&u)...)
	return u, err
}

var (
	userColumns         = strings.Join(schema.UsersTable().ColumnNames(), ", ")
	orderColumns        = strings.Join(schema.OrdersTable().ColumnNames(), ", ")
	productColumns      = strings.Join(schema.ProductsTable().ColumnNames(), ", ")
	orderProductColumns = strings.Join(schema.OrderProductsTable().ColumnNames(), ", ")
)
