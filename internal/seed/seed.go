// Package seed fills the shop schema with synthetic data.
//
// It is a consumer of repository.Repository and knows nothing about SQL.
// Users form a referral chain (each user is referred by the previously
// created one), orders go to random users, and every order receives a
// number of distinct products with random quantities.
package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/repository"
	"github.com/deppfellow/go-shopdb/internal/validation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config sizes a seeding run.
type Config struct {
	Users         int    `json:"users" validate:"gt=0"`
	Orders        int    `json:"orders" validate:"gte=0"`
	Products      int    `json:"products" validate:"gte=0"`
	LinesPerOrder int    `json:"lines_per_order" validate:"gte=0"`
	Seed          uint64 `json:"seed"`
}

// DefaultConfig mirrors the classic ten of everything, three lines per order.
func DefaultConfig() Config {
	return Config{
		Users:         10,
		Orders:        10,
		Products:      10,
		LinesPerOrder: 3,
	}
}

// Validate also rejects order lines without products to put in them.
func (c Config) Validate() error {
	if err := validation.Validator().Struct(c); err != nil {
		return err
	}
	if c.Orders > 0 && c.LinesPerOrder > 0 && c.Products == 0 {
		return validation.CustomValidationErrors{{Field: "products", Message: "must be greater than 0 when orders get lines"}}
	}
	return nil
}

// Result lists the identifiers created by a run.
type Result struct {
	UserIDs    []int64 `json:"user_ids"`
	OrderIDs   []int64 `json:"order_ids"`
	ProductIDs []int64 `json:"product_ids"`
	Lines      int     `json:"lines"`
}

// Seeder writes fake data through a Repository.
type Seeder struct {
	repo  repository.Repository
	log   *zerolog.Logger
	faker *gofakeit.Faker
	cfg   Config
}

// New creates a Seeder. A non-zero cfg.Seed always produces the same data;
// zero picks a random seed.
func New(repo repository.Repository, logger *zerolog.Logger, cfg Config) *Seeder {
	return &Seeder{
		repo:  repo,
		log:   logger,
		faker: gofakeit.New(cfg.Seed),
		cfg:   cfg,
	}
}

// Run creates users, then orders, then products, then order lines.
// It stops at the first failing call; rows created before it stay.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	if err := validation.Check(s.cfg); err != nil {
		return Result{}, err
	}

	var res Result
	var err error

	if res.UserIDs, err = s.seedUsers(ctx); err != nil {
		return res, err
	}
	if res.OrderIDs, err = s.seedOrders(ctx, res.UserIDs); err != nil {
		return res, err
	}
	if res.ProductIDs, err = s.seedProducts(ctx); err != nil {
		return res, err
	}
	if res.Lines, err = s.seedLines(ctx, res.OrderIDs, res.ProductIDs); err != nil {
		return res, err
	}

	s.log.Info().
		Int("users", len(res.UserIDs)).
		Int("orders", len(res.OrderIDs)).
		Int("products", len(res.ProductIDs)).
		Int("lines", res.Lines).
		Msg("seeded shop data")

	return res, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, s.cfg.Users)
	used := make(map[int64]struct{}, s.cfg.Users)

	var referrer *int64
	for len(ids) < s.cfg.Users {
		id := int64(s.faker.Number(1, 9_999_999))
		if _, ok := used[id]; ok {
			continue
		}
		used[id] = struct{}{}

		userName := s.faker.Username()
		user, err := s.repo.UpsertUser(ctx, repository.UpsertUserParams{
			TelegramID:   id,
			FullName:     s.faker.Name(),
			UserName:     &userName,
			LanguageCode: s.faker.LanguageAbbreviation(),
			ReferrerID:   referrer,
		})
		if err != nil {
			return ids, fmt.Errorf("seeding user %d: %w", id, err)
		}

		ids = append(ids, user.TelegramID)
		referrer = &user.TelegramID
	}
	return ids, nil
}

func (s *Seeder) seedOrders(ctx context.Context, userIDs []int64) ([]int64, error) {
	ids := make([]int64, 0, s.cfg.Orders)
	for range s.cfg.Orders {
		userID := userIDs[s.faker.Number(0, len(userIDs)-1)]
		order, err := s.repo.CreateOrder(ctx, userID)
		if err != nil {
			return ids, fmt.Errorf("seeding order for user %d: %w", userID, err)
		}
		ids = append(ids, order.OrderID)
	}
	return ids, nil
}

func (s *Seeder) seedProducts(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, s.cfg.Products)
	for range s.cfg.Products {
		description := s.faker.ProductDescription()
		product, err := s.repo.CreateProduct(ctx, repository.CreateProductParams{
			Title:       s.faker.ProductName(),
			Description: &description,
			Price:       decimal.NewFromFloat(s.faker.Price(1, 1000)).Round(2),
		})
		if err != nil {
			return ids, fmt.Errorf("seeding product: %w", err)
		}
		ids = append(ids, product.ProductID)
	}
	return ids, nil
}

// seedLines adds up to LinesPerOrder distinct products to each order in a
// single batch per order.
func (s *Seeder) seedLines(ctx context.Context, orderIDs, productIDs []int64) (int, error) {
	if s.cfg.LinesPerOrder == 0 || len(productIDs) == 0 {
		return 0, nil
	}

	total := 0
	for _, orderID := range orderIDs {
		lines := s.pickLines(productIDs)
		if err := s.repo.AddProductsToOrder(ctx, orderID, lines); err != nil {
			return total, fmt.Errorf("seeding lines for order %d: %w", orderID, err)
		}
		total += len(lines)
	}
	return total, nil
}

func (s *Seeder) pickLines(productIDs []int64) []model.OrderLine {
	n := min(s.cfg.LinesPerOrder, len(productIDs))

	picked := make([]int64, len(productIDs))
	copy(picked, productIDs)
	s.faker.ShuffleAnySlice(picked)

	lines := make([]model.OrderLine, n)
	for i := range lines {
		lines[i] = model.OrderLine{
			ProductID: picked[i],
			Quantity:  s.faker.Number(1, 100),
		}
	}
	return lines
}
