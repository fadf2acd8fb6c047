package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/go-shopdb/internal/errs"
	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/deppfellow/go-shopdb/internal/schema"
	"github.com/deppfellow/go-shopdb/internal/validation"
	"github.com/jackc/pgx/v5"
)

func (r *Postgres) UpsertUser(ctx context.Context, params UpsertUserParams) (model.User, error) {
	if err := validation.Check(params); err != nil {
		return model.User{}, err
	}

	query := `
		INSERT INTO ` + schema.Users + ` (telegram_id, full_name, user_name, language_code, referrer_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    user_name = EXCLUDED.user_name,
		    updated_at = NOW()
		RETURNING ` + userColumns

	var user model.User
	err := r.write(ctx, "upsert_user", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query,
			params.TelegramID,
			params.FullName,
			params.UserName,
			params.LanguageCode,
			params.ReferrerID,
		).Scan(userDest(&user)...)
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *Postgres) GetUserByID(ctx context.Context, telegramID int64) (model.User, bool, error) {
	query := `SELECT ` + userColumns + ` FROM ` + schema.Users + ` WHERE telegram_id = $1`

	var user model.User
	found := true
	err := r.read(ctx, "get_user_by_id", func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query, telegramID).Scan(userDest(&user)...)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil || !found {
		return model.User{}, false, err
	}
	return user, true, nil
}

func (r *Postgres) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	if err := validation.Check(listUsersParams{Limit: limit}); err != nil {
		return nil, err
	}

	// telegram_id breaks ties between rows created in the same transaction.
	query := `
		SELECT ` + userColumns + `
		FROM ` + schema.Users + `
		ORDER BY created_at ASC, telegram_id ASC
		LIMIT $1`

	var users []model.User
	err := r.read(ctx, "list_users", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, limit)
		if err != nil {
			return err
		}
		users, err = pgx.CollectRows(rows, scanUser)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Postgres) GetUserLanguage(ctx context.Context, telegramID int64) (string, bool, error) {
	query := `SELECT language_code FROM ` + schema.Users + ` WHERE telegram_id = $1`

	var languageCode string
	found := true
	err := r.read(ctx, "get_user_language", func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query, telegramID).Scan(&languageCode)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil || !found {
		return "", false, err
	}
	return languageCode, true, nil
}

func (r *Postgres) SetReferrer(ctx context.Context, userID int64, referrerID *int64) error {
	query := `
		UPDATE ` + schema.Users + `
		SET referrer_id = $2, updated_at = NOW()
		WHERE telegram_id = $1`

	return r.write(ctx, "set_referrer", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, userID, referrerID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.NewNotFoundError("user", userID)
		}
		return nil
	})
}

// DeleteUser removes a user. Users it referred and its orders keep their
// rows with the reference set to NULL.
func (r *Postgres) DeleteUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM ` + schema.Users + ` WHERE telegram_id = $1`

	return r.remove(ctx, "delete_user", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.NewNotFoundError("user", userID)
		}
		return nil
	})
}
