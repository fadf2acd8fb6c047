// Package repository handles all interactions with the database.
//
// It contains the SQL for the shop schema and exposes it through the
// Repository contract. Two bindings exist: Postgres, which blocks the
// calling goroutine, and Async, which runs each call on its own
// goroutine and hands back a Future.
//
// Every call is one transaction: committed before returning, rolled back
// on failure or cancellation. Failures are always errs types.
package repository

import (
	"context"

	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/validation"
	"github.com/shopspring/decimal"
)

// Repository is the data-access contract over the shop schema.
type Repository interface {
	// UpsertUser inserts a user or, when the telegram id exists, updates its
	// full name and user name in the same statement.
	UpsertUser(ctx context.Context, params UpsertUserParams) (model.User, error)
	CreateOrder(ctx context.Context, userID int64) (model.Order, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	AddProductToOrder(ctx context.Context, orderID, productID int64, quantity int) (model.OrderProduct, error)
	// AddProductsToOrder inserts every line in one statement; either all lines
	// are stored or none.
	AddProductsToOrder(ctx context.Context, orderID int64, lines []model.OrderLine) error
	// CreateOrderWithProducts creates an order and its lines in one transaction.
	CreateOrderWithProducts(ctx context.Context, userID int64, lines []model.OrderLine) (model.Order, error)

	GetUserByID(ctx context.Context, telegramID int64) (model.User, bool, error)
	// ListUsers returns at most limit users, oldest first.
	ListUsers(ctx context.Context, limit int) ([]model.User, error)
	GetUserLanguage(ctx context.Context, telegramID int64) (string, bool, error)

	ListReferralPairs(ctx context.Context) ([]model.ReferralPair, error)
	GetOrdersForUser(ctx context.Context, telegramID int64) ([]model.UserOrderLine, error)
	CountOrdersPerUser(ctx context.Context) ([]model.UserOrderCount, error)
	// SumQuantityPerUser returns per-user totals strictly below maxQuantity.
	SumQuantityPerUser(ctx context.Context, maxQuantity int64) ([]model.UserQuantityTotal, error)

	// SetReferrer sets or, with a nil referrerID, clears a user's referrer.
	SetReferrer(ctx context.Context, userID int64, referrerID *int64) error
	DeleteUser(ctx context.Context, userID int64) error
	DeleteOrder(ctx context.Context, orderID int64) error
	DeleteProduct(ctx context.Context, productID int64) error
}

// UpsertUserParams are the inputs of UpsertUser.
type UpsertUserParams struct {
	TelegramID   int64   `json:"telegram_id"`
	FullName     string  `json:"full_name" validate:"required,max=255"`
	UserName     *string `json:"user_name" validate:"omitempty,max=255"`
	LanguageCode string  `json:"language_code" validate:"required,max=10"`
	ReferrerID   *int64  `json:"referrer_id"`
}

func (p UpsertUserParams) Validate() error {
	return validation.Validator().Struct(p)
}

// maxPrice is the first value NUMERIC(16, 4) cannot hold.
var maxPrice = decimal.New(1, 12)

// CreateProductParams are the inputs of CreateProduct.
type CreateProductParams struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description *string         `json:"description" validate:"omitempty,max=3000"`
	Price       decimal.Decimal `json:"price"`
}

// Validate rejects prices NUMERIC(16, 4) would round or overflow.
func (p CreateProductParams) Validate() error {
	if err := validation.Validator().Struct(p); err != nil {
		return err
	}

	if !p.Price.Equal(p.Price.Truncate(4)) {
		return validation.CustomValidationErrors{{Field: "price", Message: "must have at most 4 decimal places"}}
	}
	if p.Price.Abs().GreaterThanOrEqual(maxPrice) {
		return validation.CustomValidationErrors{{Field: "price", Message: "must have at most 12 integer digits"}}
	}
	return nil
}

// Ids and quantities live in INTEGER columns.
type orderLineParams struct {
	OrderID   int64 `json:"order_id" validate:"max=2147483647"`
	ProductID int64 `json:"product_id" validate:"max=2147483647"`
	Quantity  int   `json:"quantity" validate:"gte=0,max=2147483647"`
}

func (p orderLineParams) Validate() error {
	return validation.Validator().Struct(p)
}

type orderLinesParams struct {
	OrderID int64             `json:"order_id" validate:"max=2147483647"`
	Lines   []model.OrderLine `json:"lines" validate:"min=1,dive"`
}

func (p orderLinesParams) Validate() error {
	return validation.Validator().Struct(p)
}

type listUsersParams struct {
	Limit int `json:"limit" validate:"gt=0"`
}

func (p listUsersParams) Validate() error {
	return validation.Validator().Struct(p)
}
