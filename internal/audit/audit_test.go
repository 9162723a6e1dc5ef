package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))

	e := &Entry{UserID: 3, Action: ActionDelete, Resource: "genres", ResourceID: 9, RemoteAddr: "10.0.0.1"}
	require.NoError(t, rec.Record(context.Background(), e))
	assert.False(t, e.CreatedAt.IsZero())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["msg"])
	assert.Equal(t, "delete", line["action"])
	assert.Equal(t, "genres", line["resource"])
	assert.EqualValues(t, 9, line["resource_id"])
}

// TestPostgresStore runs against a real database when AUDIT_TEST_DSN is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("AUDIT_TEST_DSN")
	if dsn == "" {
		t.Skip("AUDIT_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	require.NoError(t, s.Migrate(ctx))

	e := &Entry{UserID: 1, Action: ActionReturn, Resource: "loans", ResourceID: 12}
	require.NoError(t, s.Record(ctx, e))
	assert.NotZero(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	var resource string
	var resourceID int64
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT resource, resource_id FROM console_audit WHERE id = $1`, e.ID,
	).Scan(&resource, &resourceID))
	assert.Equal(t, "loans", resource)
	assert.Equal(t, int64(12), resourceID)
}
