package db

import (
	"context"
	"time"

	"github.com/userhub/backend/internal/model"
)

func (db *Postgres) InsertSession(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_sessions (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := db.Pool.Exec(ctx, query, userID, tokenHash, expiresAt)
	return err
}

func (db *Postgres) GetSession(ctx context.Context, tokenHash string) (*model.RefreshSession, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, is_active, created_at
		FROM refresh_sessions
		WHERE token_hash = $1
	`
	var session model.RefreshSession
	err := db.Pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.IsActive,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeactivateSession marks the matching record inactive. It reports whether
// the record was still active when the update ran.
func (db *Postgres) DeactivateSession(ctx context.Context, tokenHash string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE refresh_sessions
		SET is_active = FALSE
		WHERE token_hash = $1 AND is_active = TRUE
	`, tokenHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RotateSession deactivates the old record and inserts the successor in one
// transaction. The deactivate is guarded by the active flag, so of two
// callers racing on the same token exactly one rotates; the loser gets
// rotated=false and no new record.
func (db *Postgres) RotateSession(ctx context.Context, oldTokenHash string, userID int64, newTokenHash string, expiresAt time.Time) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_sessions
		SET is_active = FALSE
		WHERE token_hash = $1 AND is_active = TRUE
	`, oldTokenHash)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO refresh_sessions (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`, userID, newTokenHash, expiresAt); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (db *Postgres) DeactivateUserSessions(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE refresh_sessions
		SET is_active = FALSE
		WHERE user_id = $1 AND is_active = TRUE
	`, userID)
	return err
}
