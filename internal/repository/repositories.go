package repository

import (
	"time"

	"github.com/deppfellow/go-shopdb/internal/database"
	"github.com/rs/zerolog"
)

// Repositories is a container for the repository bindings.
//
// Shop blocks the caller; Async wraps the same Shop binding.
type Repositories struct {
	Shop  *Postgres
	Async *Async
}

// NewRepositories constructs both bindings over one pool.
func NewRepositories(db *database.Database, logger *zerolog.Logger, slowQueryThreshold time.Duration) *Repositories {
	shop := NewPostgres(db.Pool, logger, WithSlowThreshold(slowQueryThreshold))
	return &Repositories{
		Shop:  shop,
		Async: NewAsync(shop),
	}
}
