package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlSavedFunctions = `
CREATE TABLE IF NOT EXISTS saved_functions (
    name        TEXT         PRIMARY KEY,
    source      TEXT         NOT NULL,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_saved_functions_updated_at
    ON saved_functions (updated_at);
`

// Migrate creates the saved_functions table if it does not exist. It is
// idempotent and safe to call on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlSavedFunctions); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}
