package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (db *Postgres) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			first_name TEXT,
			last_name TEXT,
			phone TEXT,
			birth_date DATE,
			bio TEXT,
			avatar_url TEXT,
			location TEXT,
			website TEXT,
			company TEXT,
			job_title TEXT,
			profile_visibility TEXT NOT NULL DEFAULT 'public',
			show_email BOOLEAN NOT NULL DEFAULT FALSE,
			show_phone BOOLEAN NOT NULL DEFAULT FALSE,
			show_birth_date BOOLEAN NOT NULL DEFAULT FALSE,
			last_login TIMESTAMPTZ,
			profile_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS refresh_sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS refresh_sessions_user_id_idx ON refresh_sessions(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func IsNoRows(err error) bool {
	return err == pgx.ErrNoRows
}
