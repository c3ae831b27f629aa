package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/userhub/backend/internal/config"
	"github.com/userhub/backend/internal/db"
	"github.com/userhub/backend/internal/model"
	"github.com/userhub/backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

const refreshCookieName = "userhub_refresh"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("refresh session not found")
	ErrSessionExpired     = errors.New("refresh session expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrStorage            = errors.New("storage failure")
	ErrMisconfigured      = errors.New("auth config invalid")
)

// UserStore is the slice of the account store Auth Core reads. It never
// mutates credentials itself.
type UserStore interface {
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// SessionStore persists refresh-session records. RotateSession and
// DeactivateSession must only succeed while the record is still active,
// so concurrent rotations of one token resolve to a single winner.
type SessionStore interface {
	InsertSession(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	GetSession(ctx context.Context, tokenHash string) (*model.RefreshSession, error)
	DeactivateSession(ctx context.Context, tokenHash string) (bool, error)
	RotateSession(ctx context.Context, oldTokenHash string, userID int64, newTokenHash string, expiresAt time.Time) (bool, error)
	DeactivateUserSessions(ctx context.Context, userID int64) error
}

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

type AuthService struct {
	users      UserStore
	sessions   SessionStore
	codec      *token.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	cookieCfg  CookieConfig
}

func NewAuthService(users UserStore, sessions SessionStore, cfg config.AuthConfig) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.JWTAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	refreshTTL, err := time.ParseDuration(cfg.JWTRefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}

	cookieSecure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	cookieSameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if cookieSameSite == http.SameSiteNoneMode && !cookieSecure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookiePath := cfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	return &AuthService{
		users:      users,
		sessions:   sessions,
		codec:      token.NewCodec([]byte(cfg.JWTSecret)),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		cookieCfg: CookieConfig{
			Name:     refreshCookieName,
			Path:     cookiePath,
			Domain:   cfg.CookieDomain,
			Secure:   cookieSecure,
			SameSite: cookieSameSite,
			MaxAge:   int(refreshTTL.Seconds()),
		},
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.cookieCfg
}

// Login verifies the credentials, stamps last-login and issues a fresh
// token pair backed by a new active refresh session. Unknown username and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, int64, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			return "", "", 0, ErrInvalidCredentials
		}
		return "", "", 0, storageErr("lookup user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", 0, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		return "", "", 0, storageErr("stamp last login", err)
	}

	return s.issueTokens(ctx, user.ID)
}

// VerifyAccess resolves an access token to the caller's identity. It has
// no side effects and is safe to call concurrently.
func (s *AuthService) VerifyAccess(ctx context.Context, tokenStr string) (*model.AuthUser, error) {
	userID, err := s.codec.Parse(tokenStr, token.ClassAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("lookup user", err)
	}

	return &model.AuthUser{ID: user.ID, Username: user.Username}, nil
}

// Rotate exchanges a refresh token for a new pair and deactivates the
// presented record. A token rotates at most once: a replay after a
// successful rotation fails with ErrSessionNotFound, whichever caller
// presents it. The stored record's expiry is checked independently of the
// token's own embedded expiry.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string) (string, string, int64, error) {
	_, err := s.codec.Parse(refreshToken, token.ClassRefresh)
	if err != nil {
		return "", "", 0, err
	}

	hash := hashRefreshToken(refreshToken)
	session, err := s.sessions.GetSession(ctx, hash)
	if err != nil {
		if db.IsNoRows(err) {
			return "", "", 0, ErrSessionNotFound
		}
		return "", "", 0, storageErr("lookup session", err)
	}
	if !session.IsActive {
		return "", "", 0, ErrSessionNotFound
	}
	if !time.Now().Before(session.ExpiresAt) {
		return "", "", 0, ErrSessionExpired
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return "", "", 0, ErrUserNotFound
		}
		return "", "", 0, storageErr("lookup user", err)
	}

	accessToken, err := s.codec.Mint(user.ID, token.ClassAccess, s.accessTTL)
	if err != nil {
		return "", "", 0, err
	}
	newRefreshToken, err := s.codec.Mint(user.ID, token.ClassRefresh, s.refreshTTL)
	if err != nil {
		return "", "", 0, err
	}

	rotated, err := s.sessions.RotateSession(ctx, hash, user.ID, hashRefreshToken(newRefreshToken), time.Now().Add(s.refreshTTL))
	if err != nil {
		return "", "", 0, storageErr("rotate session", err)
	}
	if !rotated {
		return "", "", 0, ErrSessionNotFound
	}

	return accessToken, newRefreshToken, int64(s.accessTTL.Seconds()), nil
}

// Logout deactivates the matching session if one exists. Missing or
// already-inactive records are not an error; repeated calls are no-ops.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}

	if _, err := s.sessions.DeactivateSession(ctx, hashRefreshToken(refreshToken)); err != nil {
		return storageErr("deactivate session", err)
	}
	return nil
}

// RevokeAll deactivates every refresh session owned by the user. Invoked
// on account deletion and on password change.
func (s *AuthService) RevokeAll(ctx context.Context, userID int64) error {
	if err := s.sessions.DeactivateUserSessions(ctx, userID); err != nil {
		return storageErr("deactivate user sessions", err)
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, userID int64) (string, string, int64, error) {
	accessToken, err := s.codec.Mint(userID, token.ClassAccess, s.accessTTL)
	if err != nil {
		return "", "", 0, err
	}

	refreshToken, err := s.codec.Mint(userID, token.ClassRefresh, s.refreshTTL)
	if err != nil {
		return "", "", 0, err
	}

	if err := s.sessions.InsertSession(ctx, userID, hashRefreshToken(refreshToken), time.Now().Add(s.refreshTTL)); err != nil {
		return "", "", 0, storageErr("insert session", err)
	}

	return accessToken, refreshToken, int64(s.accessTTL.Seconds()), nil
}

func hashRefreshToken(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown SameSite value %q", value)
	}
}

// IsAuthFailure reports whether err is any of the authentication failure
// kinds. The transport collapses all of them into one unauthenticated
// response so callers cannot tell which check failed.
func IsAuthFailure(err error) bool {
	for _, kind := range []error{
		ErrInvalidCredentials,
		ErrSessionNotFound,
		ErrSessionExpired,
		ErrUserNotFound,
		token.ErrInvalid,
		token.ErrExpired,
		token.ErrWrongClass,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
