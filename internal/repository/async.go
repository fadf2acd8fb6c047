package repository

import (
	"context"

	"github.com/deppfellow/go-shopdb/internal/errs"
	"github.com/deppfellow/go-shopdb/internal/model"
)

// Future is the pending result of an Async call.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func spawn[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the call has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the call result.
//
// If ctx ends first Await returns a StoreError with code AWAIT_ABANDONED.
// The call keeps running under the context it was started with and may
// still commit, so the outcome is unknown; await the future again or cancel
// the call's own context to roll it back.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, &errs.StoreError{
			Code:    "AWAIT_ABANDONED",
			Message: "stopped waiting for store call, outcome unknown: " + ctx.Err().Error(),
			Err:     ctx.Err(),
		}
	}
}

// Lookup is the result of a lookup by identifier.
type Lookup[T any] struct {
	Value T
	Found bool
}

// Async is the non-blocking Repository binding. Each method starts the call
// on its own goroutine and returns immediately; suspension happens only
// while the wrapped call waits on the store.
type Async struct {
	repo Repository
}

// NewAsync wraps repo.
func NewAsync(repo Repository) *Async {
	return &Async{repo: repo}
}

func noValue(err error) (struct{}, error) {
	return struct{}{}, err
}

func (a *Async) UpsertUser(ctx context.Context, params UpsertUserParams) *Future[model.User] {
	return spawn(ctx, func(ctx context.Context) (model.User, error) {
		return a.repo.UpsertUser(ctx, params)
	})
}

func (a *Async) CreateOrder(ctx context.Context, userID int64) *Future[model.Order] {
	return spawn(ctx, func(ctx context.Context) (model.Order, error) {
		return a.repo.CreateOrder(ctx, userID)
	})
}

func (a *Async) CreateProduct(ctx context.Context, params CreateProductParams) *Future[model.Product] {
	return spawn(ctx, func(ctx context.Context) (model.Product, error) {
		return a.repo.CreateProduct(ctx, params)
	})
}

func (a *Async) AddProductToOrder(ctx context.Context, orderID, productID int64, quantity int) *Future[model.OrderProduct] {
	return spawn(ctx, func(ctx context.Context) (model.OrderProduct, error) {
		return a.repo.AddProductToOrder(ctx, orderID, productID, quantity)
	})
}

func (a *Async) AddProductsToOrder(ctx context.Context, orderID int64, lines []model.OrderLine) *Future[struct{}] {
	return spawn(ctx, func(ctx context.Context) (struct{}, error) {
		return noValue(a.repo.AddProductsToOrder(ctx, orderID, lines))
	})
}

func (a *Async) CreateOrderWithProducts(ctx context.Context, userID int64, lines []model.OrderLine) *Future[model.Order] {
	return spawn(ctx, func(ctx context.Context) (model.Order, error) {
		return a.repo.CreateOrderWithProducts(ctx, userID, lines)
	})
}

func (a *Async) GetUserByID(ctx context.Context, telegramID int64) *Future[Lookup[model.User]] {
	return spawn(ctx, func(ctx context.Context) (Lookup[model.User], error) {
		user, found, err := a.repo.GetUserByID(ctx, telegramID)
		return Lookup[model.User]{Value: user, Found: found}, err
	})
}

func (a *Async) ListUsers(ctx context.Context, limit int) *Future[[]model.User] {
	return spawn(ctx, func(ctx context.Context) ([]model.User, error) {
		return a.repo.ListUsers(ctx, limit)
	})
}

func (a *Async) GetUserLanguage(ctx context.Context, telegramID int64) *Future[Lookup[string]] {
	return spawn(ctx, func(ctx context.Context) (Lookup[string], error) {
		code, found, err := a.repo.GetUserLanguage(ctx, telegramID)
		return Lookup[string]{Value: code, Found: found}, err
	})
}

func (a *Async) ListReferralPairs(ctx context.Context) *Future[[]model.ReferralPair] {
	return spawn(ctx, a.repo.ListReferralPairs)
}

func (a *Async) GetOrdersForUser(ctx context.Context, telegramID int64) *Future[[]model.UserOrderLine] {
	return spawn(ctx, func(ctx context.Context) ([]model.UserOrderLine, error) {
		return a.repo.GetOrdersForUser(ctx, telegramID)
	})
}

func (a *Async) CountOrdersPerUser(ctx context.Context) *Future[[]model.UserOrderCount] {
	return spawn(ctx, a.repo.CountOrdersPerUser)
}

func (a *Async) SumQuantityPerUser(ctx context.Context, maxQuantity int64) *Future[[]model.UserQuantityTotal] {
	return spawn(ctx, func(ctx context.Context) ([]model.UserQuantityTotal, error) {
		return a.repo.SumQuantityPerUser(ctx, maxQuantity)
	})
}

func (a *Async) SetReferrer(ctx context.Context, userID int64, referrerID *int64) *Future[struct{}] {
	return spawn(ctx, func(ctx context.Context) (struct{}, error) {
		return noValue(a.repo.SetReferrer(ctx, userID, referrerID))
	})
}

func (a *Async) DeleteUser(ctx context.Context, userID int64) *Future[struct{}] {
	return spawn(ctx, func(ctx context.Context) (struct{}, error) {
		return noValue(a.repo.DeleteUser(ctx, userID))
	})
}

func (a *Async) DeleteOrder(ctx context.Context, orderID int64) *Future[struct{}] {
	return spawn(ctx, func(ctx context.Context) (struct{}, error) {
		return noValue(a.repo.DeleteOrder(ctx, orderID))
	})
}

func (a *Async) DeleteProduct(ctx context.Context, productID int64) *Future[struct{}] {
	return spawn(ctx, func(ctx context.Context) (struct{}, error) {
		return noValue(a.repo.DeleteProduct(ctx, productID))
	})
}
