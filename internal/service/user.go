package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/userhub/backend/internal/db"
	"github.com/userhub/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// UserRepo is the full account/profile store consumed by UserService.
type UserRepo interface {
	UserStore
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error)
	SearchPublicUsers(ctx context.Context, term string, skip, limit int) ([]*model.User, error)
	UpdateUserProfile(ctx context.Context, user *model.User) error
	UpdateUserAccount(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, userID int64) error
}

type UserService struct {
	repo     UserRepo
	sessions SessionStore
}

func NewUserService(repo UserRepo, sessions SessionStore) *UserService {
	return &UserService{repo: repo, sessions: sessions}
}

// Register creates an account with the default visibility policy: profile
// public, all conditional fields hidden.
func (s *UserService) Register(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, ErrInvalidInput
	}

	if _, err := s.repo.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, ErrConflict
	} else if !db.IsNoRows(err) {
		return nil, storageErr("lookup username", err)
	}
	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrConflict
	} else if !db.IsNoRows(err) {
		return nil, storageErr("lookup email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, &model.User{
		Email:             req.Email,
		Username:          req.Username,
		PasswordHash:      string(hash),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		ProfileVisibility: model.VisibilityPublic,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, storageErr("create user", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("lookup user", err)
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("lookup user", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, skip, limit int) ([]*model.User, error) {
	users, err := s.repo.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}

func (s *UserService) Search(ctx context.Context, term string, skip, limit int) ([]*model.User, error) {
	users, err := s.repo.SearchPublicUsers(ctx, term, skip, limit)
	if err != nil {
		return nil, storageErr("search users", err)
	}
	return users, nil
}

// UpdateAccount applies a partial credential update for the account owner.
// A password change deactivates every outstanding refresh session.
func (s *UserService) UpdateAccount(ctx context.Context, userID int64, upd model.AccountUpdate) (*model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		if _, err := mail.ParseAddress(*upd.Email); err != nil {
			return nil, ErrInvalidInput
		}
		if existing, err := s.repo.GetUserByEmail(ctx, *upd.Email); err == nil && existing.ID != userID {
			return nil, ErrConflict
		} else if err != nil && !db.IsNoRows(err) {
			return nil, storageErr("lookup email", err)
		}
		user.Email = *upd.Email
	}

	if upd.Username != nil {
		if err := validateUsername(*upd.Username); err != nil {
			return nil, err
		}
		if existing, err := s.repo.GetUserByUsername(ctx, *upd.Username); err == nil && existing.ID != userID {
			return nil, ErrConflict
		} else if err != nil && !db.IsNoRows(err) {
			return nil, storageErr("lookup username", err)
		}
		user.Username = *upd.Username
	}

	passwordChanged := false
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		passwordChanged = true
	}

	user.ProfileUpdatedAt = time.Now()
	if err := s.repo.UpdateUserAccount(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, storageErr("update account", err)
	}

	if passwordChanged {
		if err := s.sessions.DeactivateUserSessions(ctx, userID); err != nil {
			return nil, storageErr("deactivate user sessions", err)
		}
	}

	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd model.ProfileUpdate) (*model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	upd.ApplyTo(user)
	user.ProfileUpdatedAt = time.Now()

	if err := s.repo.UpdateUserProfile(ctx, user); err != nil {
		return nil, storageErr("update profile", err)
	}
	return user, nil
}

func (s *UserService) UpdatePrivacy(ctx context.Context, userID int64, upd model.PrivacyUpdate) (*model.User, error) {
	if upd.ProfileVisibility != nil {
		switch *upd.ProfileVisibility {
		case model.VisibilityPublic, model.VisibilityPrivate, model.VisibilityFriends:
		default:
			return nil, ErrInvalidInput
		}
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	upd.ApplyTo(user)
	user.ProfileUpdatedAt = time.Now()

	if err := s.repo.UpdateUserProfile(ctx, user); err != nil {
		return nil, storageErr("update privacy", err)
	}
	return user, nil
}

// SetAvatar stores the new avatar reference and returns the previous one
// so the caller can remove the orphaned object.
func (s *UserService) SetAvatar(ctx context.Context, userID int64, avatarURL string) (*string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.AvatarURL
	user.AvatarURL = &avatarURL
	user.ProfileUpdatedAt = time.Now()

	if err := s.repo.UpdateUserProfile(ctx, user); err != nil {
		return nil, storageErr("update avatar", err)
	}
	return previous, nil
}

func (s *UserService) ClearAvatar(ctx context.Context, userID int64) (*string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarURL == nil {
		return nil, ErrUserNotFound
	}

	previous := user.AvatarURL
	user.AvatarURL = nil
	user.ProfileUpdatedAt = time.Now()

	if err := s.repo.UpdateUserProfile(ctx, user); err != nil {
		return nil, storageErr("clear avatar", err)
	}
	return previous, nil
}

// Delete removes the account after deactivating every refresh session it
// owns. Outstanding access tokens stay valid until their short expiry;
// VerifyAccess reports the missing user from then on.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}

	if err := s.sessions.DeactivateUserSessions(ctx, userID); err != nil {
		return storageErr("deactivate user sessions", err)
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return storageErr("delete user", err)
	}
	return nil
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength || len(username) > 64 {
		return ErrInvalidInput
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > 128 {
		return ErrInvalidInput
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
