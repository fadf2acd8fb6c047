//go:build integration
// +build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/deppfellow/go-shopdb/internal/database"
	"github.com/deppfellow/go-shopdb/internal/errs"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/repository"
	"github.com/deppfellow/go-shopdb/internal/schema"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testDSN string
	testDB  *database.Database
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("shopdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start PostgreSQL container: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		defer func() {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
			}
		}()

		testDSN, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
			return 1
		}

		log := zerolog.Nop()
		if err := database.Migrate(ctx, &log, testDSN); err != nil {
			fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
			return 1
		}

		testDB, err = database.NewFromURL(testDSN, &log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
			return 1
		}
		defer testDB.Close()

		return m.Run()
	}()

	os.Exit(code)
}

// setupRepo empties every table and returns a fresh repository.
func setupRepo(t *testing.T) *repository.Postgres {
	t.Helper()

	_, err := testDB.Pool.Exec(context.Background(),
		"TRUNCATE "+schema.OrderProducts+", "+schema.Orders+", "+schema.Products+", "+schema.Users+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	log := zerolog.Nop()
	return repository.NewPostgres(testDB.Pool, &log)
}

func countRows(t *testing.T, table string) int {
	t.Helper()

	var n int
	err := testDB.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n)
	require.NoError(t, err)
	return n
}

func ptr[T any](v T) *T {
	return &v
}

func mustUser(t *testing.T, repo *repository.Postgres, id int64, name string, referrer *int64) model.User {
	t.Helper()

	user, err := repo.UpsertUser(context.Background(), repository.UpsertUserParams{
		TelegramID:   id,
		FullName:     name,
		LanguageCode: "en",
		ReferrerID:   referrer,
	})
	require.NoError(t, err)
	return user
}

func mustProduct(t *testing.T, repo *repository.Postgres, title, price string) model.Product {
	t.Helper()

	product, err := repo.CreateProduct(context.Background(), repository.CreateProductParams{
		Title: title,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return product
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	require.NoError(t, database.Migrate(ctx, &log, testDSN))
	require.NoError(t, database.Migrate(ctx, &log, testDSN))

	version, err := testDB.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, database.LatestSchemaVersion(), version)
}

func TestUpsertUser_SameIDTwice(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	first, err := repo.UpsertUser(ctx, repository.UpsertUserParams{
		TelegramID: 1, FullName: "John Doe", UserName: ptr("johnny"), LanguageCode: "en",
	})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	second, err := repo.UpsertUser(ctx, repository.UpsertUserParams{
		TelegramID: 1, FullName: "John Smith", UserName: ptr("jsmith"), LanguageCode: "en",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, schema.Users))
	assert.Equal(t, "John Smith", second.FullName)
	assert.Equal(t, "jsmith", *second.UserName)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updated_at must move on upsert")

	got, found, err := repo.GetUserByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "John Smith", got.FullName)
}

func TestGetUser_Missing(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	_, found, err := repo.GetUserByID(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repo.GetUserLanguage(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)

	mustUser(t, repo, 42, "John Doe", nil)
	code, found, err := repo.GetUserLanguage(ctx, 42)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "en", code)
}

func TestCreateOrder_UnknownUser(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.CreateOrder(context.Background(), 999)

	var refErr *errs.ReferentialError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "USER_NOT_FOUND", refErr.Code)
	assert.Equal(t, 0, countRows(t, schema.Orders))
}

func TestAddProductToOrder_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 1, "John Doe", nil)
	order, err := repo.CreateOrder(ctx, 1)
	require.NoError(t, err)
	product := mustProduct(t, repo, "book", "19.99")

	_, err = repo.AddProductToOrder(ctx, order.OrderID, product.ProductID, 3)
	require.NoError(t, err)

	_, err = repo.AddProductToOrder(ctx, order.OrderID, product.ProductID, 7)
	assert.ErrorIs(t, err, &errs.ConstraintError{})

	lines, err := repo.GetOrdersForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddProductToOrder_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 1, "John Doe", nil)
	order, err := repo.CreateOrder(ctx, 1)
	require.NoError(t, err)

	_, err = repo.AddProductToOrder(ctx, order.OrderID, 12345, 1)
	assert.ErrorIs(t, err, &errs.ReferentialError{})
}

func TestDeleteProduct_Restricted(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 1, "John Doe", nil)
	order, err := repo.CreateOrder(ctx, 1)
	require.NoError(t, err)
	product := mustProduct(t, repo, "book", "19.99")
	_, err = repo.AddProductToOrder(ctx, order.OrderID, product.ProductID, 1)
	require.NoError(t, err)

	err = repo.DeleteProduct(ctx, product.ProductID)
	var restricted *errs.RestrictedDeleteError
	require.ErrorAs(t, err, &restricted)
	assert.Equal(t, "PRODUCT_IN_USE", restricted.Code)

	require.NoError(t, repo.DeleteOrder(ctx, order.OrderID))
	assert.Equal(t, 0, countRows(t, schema.OrderProducts))

	require.NoError(t, repo.DeleteProduct(ctx, product.ProductID))
	assert.ErrorIs(t, repo.DeleteProduct(ctx, product.ProductID), &errs.NotFoundError{})
}

func TestDeleteUser_SetsReferencesNull(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 1, "John Doe", nil)
	mustUser(t, repo, 2, "Jane Doe", ptr(int64(1)))
	order, err := repo.CreateOrder(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(ctx, 1))

	referred, found, err := repo.GetUserByID(ctx, 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, referred.ReferrerID)

	var userID *int64
	err = testDB.Pool.QueryRow(ctx, "SELECT user_id FROM "+schema.Orders+" WHERE order_id = $1", order.OrderID).Scan(&userID)
	require.NoError(t, err)
	assert.Nil(t, userID)

	assert.ErrorIs(t, repo.DeleteUser(ctx, 1), &errs.NotFoundError{})
}

func TestSetReferrer(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 1, "John Doe", nil)
	before := mustUser(t, repo, 2, "Jane Doe", nil)
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, repo.SetReferrer(ctx, 2, ptr(int64(1))))
	user, _, err := repo.GetUserByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, user.ReferrerID)
	assert.EqualValues(t, 1, *user.ReferrerID)
	assert.True(t, user.CreatedAt.Equal(before.CreatedAt))
	assert.True(t, user.UpdatedAt.After(before.UpdatedAt), "updated_at must move on update")

	require.NoError(t, repo.SetReferrer(ctx, 2, nil))
	user, _, err = repo.GetUserByID(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, user.ReferrerID)

	assert.ErrorIs(t, repo.SetReferrer(ctx, 2, ptr(int64(77))), &errs.ReferentialError{})
	assert.ErrorIs(t, repo.SetReferrer(ctx, 77, ptr(int64(1))), &errs.NotFoundError{})
}

func TestSumQuantityPerUser_Bound(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	product := mustProduct(t, repo, "book", "1")
	quantities := map[int64]int{1: 100, 2: 5999, 3: 6000, 4: 9000}
	for id, qty := range quantities {
		mustUser(t, repo, id, fmt.Sprintf("User %d", id), nil)
		_, err := repo.CreateOrderWithProducts(ctx, id, []model.OrderLine{{ProductID: product.ProductID, Quantity: qty}})
		require.NoError(t, err)
	}

	totals, err := repo.SumQuantityPerUser(ctx, 6000)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	for _, total := range totals {
		assert.Less(t, total.TotalQuantity, int64(6000))
	}
	assert.Equal(t, "User 1", totals[0].FullName)
	assert.Equal(t, "User 2", totals[1].FullName)
}

func TestCountOrdersPerUser(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 1, "John Doe", nil)
	mustUser(t, repo, 2, "Jane Doe", nil)
	for _, id := range []int64{1, 1, 2} {
		_, err := repo.CreateOrder(ctx, id)
		require.NoError(t, err)
	}

	counts, err := repo.CountOrdersPerUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.UserOrderCount{
		{OrderCount: 2, FullName: "John Doe"},
		{OrderCount: 1, FullName: "Jane Doe"},
	}, counts)
}

func TestListReferralPairs(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	_, err := repo.UpsertUser(ctx, repository.UpsertUserParams{
		TelegramID: 1, FullName: "John Doe", UserName: ptr("johnny"), LanguageCode: "en",
	})
	require.NoError(t, err)
	mustUser(t, repo, 2, "Jane Doe", ptr(int64(1)))

	t.Run("parent without referrer", func(t *testing.T) {
		pairs, err := repo.ListReferralPairs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.ReferralPair{
			{ParentName: "Jane Doe", ReferralName: nil},
		}, pairs)
	})

	t.Run("parent with referrer", func(t *testing.T) {
		mustUser(t, repo, 3, "Max Mustermann", nil)
		require.NoError(t, repo.SetReferrer(ctx, 1, ptr(int64(3))))

		pairs, err := repo.ListReferralPairs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.ReferralPair{
			{ParentName: "John Doe", ReferralName: ptr("Jane Doe")},
			{ParentName: "Jane Doe", ReferralName: nil},
		}, pairs)
	})
}

func TestGetOrdersForUser_BatchLines(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 18, "John Doe", nil)
	for i := 1; i <= 3; i++ {
		mustProduct(t, repo, fmt.Sprintf("product %d", i), "9.5")
	}
	order, err := repo.CreateOrder(ctx, 18)
	require.NoError(t, err)

	err = repo.AddProductsToOrder(ctx, order.OrderID, []model.OrderLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 2},
		{ProductID: 3, Quantity: 3},
	})
	require.NoError(t, err)

	lines, err := repo.GetOrdersForUser(ctx, 18)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.EqualValues(t, i+1, line.Product.ProductID)
		assert.Equal(t, i+1, line.Quantity)
		assert.Equal(t, order.OrderID, line.Order.OrderID)
		assert.EqualValues(t, 18, line.User.TelegramID)
		assert.True(t, line.Product.Price.Equal(decimal.RequireFromString("9.5")))
	}
}

func TestAddProductsToOrder_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 1, "John Doe", nil)
	product := mustProduct(t, repo, "book", "1")
	order, err := repo.CreateOrder(ctx, 1)
	require.NoError(t, err)

	err = repo.AddProductsToOrder(ctx, order.OrderID, []model.OrderLine{
		{ProductID: product.ProductID, Quantity: 1},
		{ProductID: 404, Quantity: 1},
	})
	assert.ErrorIs(t, err, &errs.ReferentialError{})
	assert.Equal(t, 0, countRows(t, schema.OrderProducts))

	err = repo.AddProductsToOrder(ctx, order.OrderID, []model.OrderLine{
		{ProductID: product.ProductID, Quantity: 1},
		{ProductID: product.ProductID, Quantity: 2},
	})
	assert.ErrorIs(t, err, &errs.ConstraintError{})
	assert.Equal(t, 0, countRows(t, schema.OrderProducts))
}

func TestCreateOrderWithProducts_RollsBack(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	mustUser(t, repo, 1, "John Doe", nil)
	product := mustProduct(t, repo, "book", "1")

	_, err := repo.CreateOrderWithProducts(ctx, 1, []model.OrderLine{
		{ProductID: product.ProductID, Quantity: 1},
		{ProductID: 404, Quantity: 1},
	})
	assert.ErrorIs(t, err, &errs.ReferentialError{})
	assert.Equal(t, 0, countRows(t, schema.Orders))

	order, err := repo.CreateOrderWithProducts(ctx, 1, []model.OrderLine{{ProductID: product.ProductID, Quantity: 4}})
	require.NoError(t, err)
	lines, err := repo.GetOrdersForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, order.OrderID, lines[0].Order.OrderID)
}

func TestCreateProduct_ExactPrice(t *testing.T) {
	repo := setupRepo(t)

	product := mustProduct(t, repo, "book", "123456789012.3456")
	assert.Equal(t, "123456789012.3456", product.Price.StringFixed(4))
}

func TestListUsers_Ordered(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	for _, id := range []int64{30, 10, 20} {
		mustUser(t, repo, id, fmt.Sprintf("User %d", id), nil)
	}

	users, err := repo.ListUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.True(t, sort.SliceIsSorted(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].TelegramID < users[j].TelegramID
	}))

	limited, err := repo.ListUsers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, users[:2], limited)
}

func TestAsync_OverPostgres(t *testing.T) {
	ctx := context.Background()
	async := repository.NewAsync(setupRepo(t))

	first := async.UpsertUser(ctx, repository.UpsertUserParams{TelegramID: 1, FullName: "John Doe", LanguageCode: "en"})
	second := async.UpsertUser(ctx, repository.UpsertUserParams{TelegramID: 2, FullName: "Jane Doe", LanguageCode: "de"})
	_, err := first.Await(ctx)
	require.NoError(t, err)
	_, err = second.Await(ctx)
	require.NoError(t, err)

	lang, err := async.GetUserLanguage(ctx, 2).Await(ctx)
	require.NoError(t, err)
	assert.True(t, lang.Found)
	assert.Equal(t, "de", lang.Value)

	_, err = async.CreateOrder(ctx, 3).Await(ctx)
	assert.ErrorIs(t, err, &errs.ReferentialError{})
}
