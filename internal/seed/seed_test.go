package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/go-shopdb/internal/errs"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository keeps the rows the seeder writes in memory.
type memoryRepository struct {
	repository.Repository

	users       []repository.UpsertUserParams
	orders      map[int64]int64
	products    []repository.CreateProductParams
	lines       map[int64][]model.OrderLine
	failProduct bool
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		orders: make(map[int64]int64),
		lines:  make(map[int64][]model.OrderLine),
	}
}

func (m *memoryRepository) UpsertUser(_ context.Context, p repository.UpsertUserParams) (model.User, error) {
	m.users = append(m.users, p)
	return model.User{TelegramID: p.TelegramID, FullName: p.FullName, ReferrerID: p.ReferrerID}, nil
}

func (m *memoryRepository) CreateOrder(_ context.Context, userID int64) (model.Order, error) {
	id := int64(len(m.orders) + 1)
	m.orders[id] = userID
	return model.Order{OrderID: id, UserID: &userID}, nil
}

func (m *memoryRepository) CreateProduct(_ context.Context, p repository.CreateProductParams) (model.Product, error) {
	if m.failProduct {
		return model.Product{}, &errs.TransientStoreError{Message: "connection lost"}
	}
	if err := p.Validate(); err != nil {
		return model.Product{}, err
	}
	m.products = append(m.products, p)
	return model.Product{ProductID: int64(len(m.products)), Title: p.Title, Price: p.Price}, nil
}

func (m *memoryRepository) AddProductsToOrder(_ context.Context, orderID int64, lines []model.OrderLine) error {
	m.lines[orderID] = append(m.lines[orderID], lines...)
	return nil
}

func run(t *testing.T, repo repository.Repository, cfg Config) (Result, error) {
	t.Helper()
	log := zerolog.Nop()
	return New(repo, &log, cfg).Run(context.Background())
}

func TestRun_Default(t *testing.T) {
	repo := newMemoryRepository()
	cfg := DefaultConfig()
	cfg.Seed = 7

	res, err := run(t, repo, cfg)
	require.NoError(t, err)

	assert.Len(t, res.UserIDs, 10)
	assert.Len(t, res.OrderIDs, 10)
	assert.Len(t, res.ProductIDs, 10)
	assert.Equal(t, 30, res.Lines)

	t.Run("users form a referral chain", func(t *testing.T) {
		assert.Nil(t, repo.users[0].ReferrerID)
		for i := 1; i < len(repo.users); i++ {
			require.NotNil(t, repo.users[i].ReferrerID)
			assert.Equal(t, repo.users[i-1].TelegramID, *repo.users[i].ReferrerID)
		}
	})

	t.Run("orders belong to seeded users", func(t *testing.T) {
		for _, userID := range repo.orders {
			assert.Contains(t, res.UserIDs, userID)
		}
	})

	t.Run("order lines are distinct products", func(t *testing.T) {
		for orderID, lines := range repo.lines {
			seen := make(map[int64]bool)
			for _, line := range lines {
				assert.False(t, seen[line.ProductID], "order %d repeats product %d", orderID, line.ProductID)
				seen[line.ProductID] = true
				assert.GreaterOrEqual(t, line.Quantity, 1)
			}
		}
	})

	t.Run("prices are valid", func(t *testing.T) {
		for _, p := range repo.products {
			assert.NoError(t, p.Validate())
			assert.True(t, p.Price.IsPositive())
		}
	})
}

func TestRun_SameSeedSameData(t *testing.T) {
	cfg := Config{Users: 5, Orders: 3, Products: 4, LinesPerOrder: 2, Seed: 42}

	first, second := newMemoryRepository(), newMemoryRepository()
	_, err := run(t, first, cfg)
	require.NoError(t, err)
	_, err = run(t, second, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.users, second.users)
	assert.Equal(t, first.lines, second.lines)
}

func TestRun_MoreLinesThanProducts(t *testing.T) {
	repo := newMemoryRepository()

	res, err := run(t, repo, Config{Users: 1, Orders: 2, Products: 2, LinesPerOrder: 5, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Lines)
}

func TestRun_InvalidConfig(t *testing.T) {
	_, err := run(t, newMemoryRepository(), Config{Users: 0})
	assert.ErrorIs(t, err, &errs.ConstraintError{})

	_, err = run(t, newMemoryRepository(), Config{Users: 1, Orders: 1, LinesPerOrder: 1})
	assert.ErrorIs(t, err, &errs.ConstraintError{})
}

func TestRun_StopsOnFailure(t *testing.T) {
	repo := newMemoryRepository()
	repo.failProduct = true

	res, err := run(t, repo, DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, &errs.TransientStoreError{}))
	assert.Len(t, res.UserIDs, 10)
	assert.Empty(t, res.ProductIDs)
	assert.Empty(t, repo.lines)
}
