package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps audit entries in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the console_audit table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS console_audit (
			id          BIGSERIAL PRIMARY KEY,
			user_id     BIGINT       NOT NULL,
			action      VARCHAR(20)  NOT NULL,
			resource    VARCHAR(20)  NOT NULL,
			resource_id BIGINT       NOT NULL DEFAULT 0,
			remote_addr VARCHAR(255) NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate audit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, e *Entry) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO console_audit (user_id, action, resource, resource_id, remote_addr)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.UserID, e.Action, e.Resource, e.ResourceID, e.RemoteAddr,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}
