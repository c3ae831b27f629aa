package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/userhub/backend/internal/model"
)

const userColumns = `
	id, email, username, password_hash, is_active, created_at,
	first_name, last_name, phone, birth_date, bio, avatar_url,
	location, website, company, job_title,
	profile_visibility, show_email, show_phone, show_birth_date,
	last_login, profile_updated_at
`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.BirthDate,
		&user.Bio,
		&user.AvatarURL,
		&user.Location,
		&user.Website,
		&user.Company,
		&user.JobTitle,
		&user.ProfileVisibility,
		&user.ShowEmail,
		&user.ShowPhone,
		&user.ShowBirthDate,
		&user.LastLogin,
		&user.ProfileUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (
			email, username, password_hash, first_name, last_name,
			profile_visibility, show_email, show_phone, show_birth_date,
			created_at, profile_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.ProfileVisibility,
		user.ShowEmail,
		user.ShowPhone,
		user.ShowBirthDate,
	)
	return scanUser(row)
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

func (db *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, username))
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := db.Pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// SearchPublicUsers matches active, publicly visible accounts against
// username, name and company.
func (db *Postgres) SearchPublicUsers(ctx context.Context, term string, skip, limit int) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_active = TRUE
		  AND profile_visibility = 'public'
		  AND ($1 = '' OR username ILIKE $2 OR first_name ILIKE $2 OR last_name ILIKE $2 OR company ILIKE $2)
		ORDER BY id
		OFFSET $3 LIMIT $4
	`
	rows, err := db.Pool.Query(ctx, query, term, "%"+term+"%", skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*model.User, error) {
	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (db *Postgres) UpdateUserProfile(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4, birth_date = $5,
		    bio = $6, avatar_url = $7, location = $8, website = $9,
		    company = $10, job_title = $11,
		    profile_visibility = $12, show_email = $13, show_phone = $14,
		    show_birth_date = $15, profile_updated_at = $16
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.BirthDate,
		user.Bio,
		user.AvatarURL,
		user.Location,
		user.Website,
		user.Company,
		user.JobTitle,
		user.ProfileVisibility,
		user.ShowEmail,
		user.ShowPhone,
		user.ShowBirthDate,
		user.ProfileUpdatedAt,
	)
	return err
}

func (db *Postgres) UpdateUserAccount(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, password_hash = $4, profile_updated_at = $5
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.ProfileUpdatedAt,
	)
	return err
}

func (db *Postgres) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := db.Pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, userID, at)
	return err
}

func (db *Postgres) DeleteUser(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return err
}
