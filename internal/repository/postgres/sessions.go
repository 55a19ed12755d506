package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/pkg/errors"
)

// Schema creates the session table. It is safe to run on every start.
const Schema = `
	CREATE TABLE IF NOT EXISTS client_sessions (
		id         UUID PRIMARY KEY,
		state      JSONB NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type sessionRepository struct {
	db     *sql.DB
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionRepository creates a postgres-backed session persister
func NewSessionRepository(db *sql.DB, ttl time.Duration, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		db:     db,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureSchema creates the client_sessions table if it is missing
func (r *sessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		r.logger.Error("Failed to create client_sessions table", zap.Error(err))
		return err
	}
	return nil
}

func (r *sessionRepository) Load(ctx context.Context, sessionID string) ([]byte, error) {
	query := `
		SELECT state
		FROM client_sessions
		WHERE id = $1 AND expires_at > $2
	`

	var state []byte
	err := r.db.QueryRowContext(ctx, query, sessionID, r.now()).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "session", ID: sessionID}
	}
	if err != nil {
		r.logger.Error("Failed to load session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	return state, nil
}

// Save upserts the state and slides the expiry window forward
func (r *sessionRepository) Save(ctx context.Context, sessionID string, data []byte) error {
	query := `
		INSERT INTO client_sessions (id, state, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE
		SET state = EXCLUDED.state, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
	`

	now := r.now()
	_, err := r.db.ExecContext(ctx, query, sessionID, data, now.Add(r.ttl), now)
	if err != nil {
		r.logger.Error("Failed to save session", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	query := `DELETE FROM client_sessions WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		r.logger.Error("Failed to delete session", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	return nil
}

// PurgeExpired removes sessions past their expiry and returns how many were dropped
func (r *sessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM client_sessions WHERE expires_at <= $1`

	res, err := r.db.ExecContext(ctx, query, r.now())
	if err != nil {
		r.logger.Error("Failed to purge expired sessions", zap.Error(err))
		return 0, err
	}
	return res.RowsAffected()
}
