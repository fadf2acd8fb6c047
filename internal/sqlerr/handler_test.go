package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/deppfellow/go-shopdb/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCode(t *testing.T) {
	tests := []struct {
		sqlstate string
		want     Code
	}{
		{"23503", ForeignKeyViolation},
		{"23505", UniqueViolation},
		{"23001", RestrictViolation},
		{"23502", NotNullViolation},
		{"08006", ConnectionException},
		{"08001", ConnectionException},
		{"40001", SerializationFailure},
		{"42P01", Other},
	}

	for _, tt := range tests {
		t.Run(tt.sqlstate, func(t *testing.T) {
			assert.Equal(t, tt.want, MapCode(tt.sqlstate))
		})
	}
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23503",
		Severity:       "ERROR",
		Message:        `insert or update on table "orders" violates foreign key constraint "orders_user_id_fkey"`,
		TableName:      "orders",
		ConstraintName: "orders_user_id_fkey",
	}

	err := HandleError(fmt.Errorf("exec: %w", pgErr))

	var refErr *errs.ReferentialError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "USER_NOT_FOUND", refErr.Code)
	assert.Equal(t, "The referenced User does not exist", refErr.Message)
	assert.Equal(t, "orders_user_id_fkey", refErr.Constraint)
	assert.Equal(t, ForeignKeyViolation, ErrCode(err))
}

func TestHandleError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		TableName:      "orderproducts",
		ConstraintName: "orderproducts_pkey",
	}

	err := HandleError(pgErr)

	var constraintErr *errs.ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "ORDERPRODUCT_ALREADY_EXISTS", constraintErr.Code)
	assert.Equal(t, "A Orderproduct with this identifier already exists", constraintErr.Message)
}

func TestHandleError_NotNullViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{Code: "23502", TableName: "users", ColumnName: "full_name"})

	var constraintErr *errs.ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "USER_REQUIRED", constraintErr.Code)
	require.Len(t, constraintErr.Errors, 1)
	assert.Equal(t, "full_name", constraintErr.Errors[0].Field)
}

func TestHandleDeleteError_Restrict(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23503",
		Message:        `update or delete on table "products" violates foreign key constraint "orderproducts_product_id_fkey" on table "orderproducts"`,
		TableName:      "orderproducts",
		ConstraintName: "orderproducts_product_id_fkey",
	}

	err := HandleDeleteError(pgErr)

	var restrictErr *errs.RestrictedDeleteError
	require.ErrorAs(t, err, &restrictErr)
	assert.Equal(t, "PRODUCT_IN_USE", restrictErr.Code)
	assert.Equal(t, "The Product is still referenced by Orderproduct and cannot be deleted", restrictErr.Message)
	assert.False(t, errors.Is(err, &errs.ReferentialError{}))
}

func TestHandleError_Transient(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}},
		{"serialization", &pgconn.PgError{Code: "40001"}},
		{"canceled", fmt.Errorf("query: %w", context.Canceled)},
		{"deadline", context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleError(tt.err)
			assert.True(t, errors.Is(err, &errs.TransientStoreError{}), "got %T", err)
		})
	}
}

func TestHandleError_Passthrough(t *testing.T) {
	assert.NoError(t, HandleError(nil))

	classified := errs.NewNotFoundError("user", 1)
	assert.Same(t, classified, HandleError(classified))
}

func TestHandleError_NoRowsAndUnknown(t *testing.T) {
	assert.True(t, errors.Is(HandleError(pgx.ErrNoRows), &errs.NotFoundError{}))

	err := HandleError(errors.New("boom"))
	var storeErr *errs.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "STORE_ERROR", storeErr.Code)
}

func TestExtractColumn(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("users_email_key"))
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_users_email"))
	assert.Equal(t, "", extractColumnForUniqueViolation("orderproducts_pkey"))

	assert.Equal(t, "referrer_id", extractColumnForForeignKey("users", "users_referrer_id_fkey"))
	assert.Equal(t, "", extractColumnForForeignKey("users", "users_pkey"))
}
