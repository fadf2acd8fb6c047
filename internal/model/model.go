// Package model holds the shop entities and the row shapes returned by
// analytical queries.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timestamps is embedded by every entity. Both values are assigned by the store.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a telegram user; TelegramID is supplied by the caller.
type User struct {
	TelegramID   int64   `json:"telegram_id"`
	FullName     string  `json:"full_name"`
	UserName     *string `json:"user_name"`
	LanguageCode string  `json:"language_code"`
	ReferrerID   *int64  `json:"referrer_id"`
	Timestamps
}

// Order belongs to a user. UserID becomes nil once the user is deleted.
type Order struct {
	OrderID int64  `json:"order_id"`
	UserID  *int64 `json:"user_id"`
	Timestamps
}

type Product struct {
	ProductID   int64           `json:"product_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Timestamps
}

// OrderProduct is one line of an order, unique per (order, product).
type OrderProduct struct {
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Timestamps
}

// OrderLine is the input for adding a product to an order.
type OrderLine struct {
	ProductID int64 `json:"product_id" validate:"required,max=2147483647"`
	Quantity  int   `json:"quantity" validate:"gte=0,max=2147483647"`
}

// ReferralPair links a parent user with a user they referred.
// ReferralName is nil when the parent referred nobody.
type ReferralPair struct {
	ParentName   string  `json:"parent_name"`
	ReferralName *string `json:"referral_name"`
}

// UserOrderLine is one order line of a user, flattened with its product and order.
type UserOrderLine struct {
	Product  Product `json:"product"`
	Order    Order   `json:"order"`
	User     User    `json:"user"`
	Quantity int     `json:"quantity"`
}

type UserOrderCount struct {
	OrderCount int64  `json:"order_count"`
	FullName   string `json:"full_name"`
}

type UserQuantityTotal struct {
	TotalQuantity int64  `json:"total_quantity"`
	FullName      string `json:"full_name"`
}
