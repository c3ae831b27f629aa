package db

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/userhub/backend/internal/model"
)

// Memory is an in-memory reference implementation of the user and session
// stores, used by tests. It reproduces the Postgres contract, including the
// compare-and-swap guarantee of RotateSession: all mutations run under one
// mutex, so a rotation observes either an active or an already-rotated
// record, never an intermediate state.
type Memory struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*model.User
	sessions map[string]*model.RefreshSession
}

func NewMemory() *Memory {
	return &Memory{
		nextID:   1,
		users:    make(map[int64]*model.User),
		sessions: make(map[string]*model.RefreshSession),
	}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

func (m *Memory) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, uniqueViolation()
		}
	}

	stored := *user
	stored.ID = m.nextID
	m.nextID++
	stored.IsActive = true
	now := time.Now()
	stored.CreatedAt = now
	stored.ProfileUpdatedAt = now
	m.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (m *Memory) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *user
	return &out, nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Username == username {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *Memory) ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var users []*model.User
	for id := int64(1); id < m.nextID; id++ {
		if user, ok := m.users[id]; ok {
			out := *user
			users = append(users, &out)
		}
	}
	return window(users, skip, limit), nil
}

func (m *Memory) SearchPublicUsers(ctx context.Context, term string, skip, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lower := strings.ToLower(term)
	var users []*model.User
	for id := int64(1); id < m.nextID; id++ {
		user, ok := m.users[id]
		if !ok || !user.IsActive || user.ProfileVisibility != model.VisibilityPublic {
			continue
		}
		if term != "" && !matchesUser(user, lower) {
			continue
		}
		out := *user
		users = append(users, &out)
	}
	return window(users, skip, limit), nil
}

func matchesUser(user *model.User, lower string) bool {
	if strings.Contains(strings.ToLower(user.Username), lower) {
		return true
	}
	for _, field := range []*string{user.FirstName, user.LastName, user.Company} {
		if field != nil && strings.Contains(strings.ToLower(*field), lower) {
			return true
		}
	}
	return false
}

func window(users []*model.User, skip, limit int) []*model.User {
	if skip >= len(users) {
		return nil
	}
	users = users[skip:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users
}

func (m *Memory) UpdateUserProfile(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Phone = user.Phone
	stored.BirthDate = user.BirthDate
	stored.Bio = user.Bio
	stored.AvatarURL = user.AvatarURL
	stored.Location = user.Location
	stored.Website = user.Website
	stored.Company = user.Company
	stored.JobTitle = user.JobTitle
	stored.ProfileVisibility = user.ProfileVisibility
	stored.ShowEmail = user.ShowEmail
	stored.ShowPhone = user.ShowPhone
	stored.ShowBirthDate = user.ShowBirthDate
	stored.ProfileUpdatedAt = user.ProfileUpdatedAt
	return nil
}

func (m *Memory) UpdateUserAccount(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range m.users {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username || existing.Email == user.Email {
			return uniqueViolation()
		}
	}
	stored.Email = user.Email
	stored.Username = user.Username
	stored.PasswordHash = user.PasswordHash
	stored.ProfileUpdatedAt = user.ProfileUpdatedAt
	return nil
}

func (m *Memory) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[userID]; ok {
		t := at
		user.LastLogin = &t
	}
	return nil
}

func (m *Memory) DeleteUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, userID)
	return nil
}

func (m *Memory) InsertSession(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[tokenHash]; exists {
		return uniqueViolation()
	}
	m.sessions[tokenHash] = &model.RefreshSession{
		ID:        int64(len(m.sessions) + 1),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *Memory) GetSession(ctx context.Context, tokenHash string) (*model.RefreshSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[tokenHash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *session
	return &out, nil
}

func (m *Memory) DeactivateSession(ctx context.Context, tokenHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[tokenHash]
	if !ok || !session.IsActive {
		return false, nil
	}
	session.IsActive = false
	return true, nil
}

func (m *Memory) RotateSession(ctx context.Context, oldTokenHash string, userID int64, newTokenHash string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[oldTokenHash]
	if !ok || !session.IsActive {
		return false, nil
	}
	session.IsActive = false
	m.sessions[newTokenHash] = &model.RefreshSession{
		ID:        int64(len(m.sessions) + 1),
		UserID:    userID,
		TokenHash: newTokenHash,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	return true, nil
}

func (m *Memory) DeactivateUserSessions(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, session := range m.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}
	return nil
}

// SeedSession inserts a session record verbatim, bypassing token minting.
// Test helper for expiry and replay cases.
func (m *Memory) SeedSession(session model.RefreshSession) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := session
	m.sessions[session.TokenHash] = &copied
}
