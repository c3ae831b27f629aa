package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/userhub/backend/internal/db"
	"github.com/userhub/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func newTestUsers(t *testing.T) (*UserService, *AuthService) {
	t.Helper()

	store := db.NewMemory()
	authSvc, err := NewAuthService(store, store, testAuthConfig())
	if err != nil {
		t.Fatalf("NewAuthService error: %v", err)
	}
	return NewUserService(store, store), authSvc
}

func TestRegisterDefaults(t *testing.T) {
	svc, _ := newTestUsers(t)

	user, err := svc.Register(context.Background(), model.CreateUserRequest{
		Email:     "alice@example.com",
		Username:  "alice",
		Password:  "password123",
		FirstName: strPtr("Alice"),
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if user.ProfileVisibility != model.VisibilityPublic {
		t.Fatalf("expected default public visibility, got %q", user.ProfileVisibility)
	}
	if user.ShowEmail || user.ShowPhone || user.ShowBirthDate {
		t.Fatalf("conditional fields must default to hidden")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc, _ := newTestUsers(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "other@example.com", Username: "alice", Password: "password123",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	_, err = svc.Register(ctx, model.CreateUserRequest{
		Email: "alice@example.com", Username: "alice2", Password: "password123",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestUsers(t)
	ctx := context.Background()

	cases := []model.CreateUserRequest{
		{Email: "a@example.com", Username: "ab", Password: "password123"},
		{Email: "a@example.com", Username: "alice", Password: "short"},
		{Email: "not-an-email", Username: "alice", Password: "password123"},
	}
	for i, req := range cases {
		if _, err := svc.Register(ctx, req); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestUpdateProfileMerge(t *testing.T) {
	svc, _ := newTestUsers(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "alice@example.com", Username: "alice", Password: "password123",
		FirstName: strPtr("Alice"), LastName: strPtr("Smith"),
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	before := user.ProfileUpdatedAt

	// Only present fields change; absent ones survive.
	updated, err := svc.UpdateProfile(ctx, user.ID, model.ProfileUpdate{
		Bio:      strPtr("hello"),
		Location: strPtr("Berlin"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}

	if updated.Bio == nil || *updated.Bio != "hello" {
		t.Fatalf("bio not applied")
	}
	if updated.Location == nil || *updated.Location != "Berlin" {
		t.Fatalf("location not applied")
	}
	if updated.FirstName == nil || *updated.FirstName != "Alice" {
		t.Fatalf("absent field must not be cleared")
	}
	if updated.ProfileUpdatedAt.Before(before) {
		t.Fatalf("profile_updated_at must not go backwards")
	}
}

func TestUpdatePrivacyValidation(t *testing.T) {
	svc, _ := newTestUsers(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err = svc.UpdatePrivacy(ctx, user.ID, model.PrivacyUpdate{
		ProfileVisibility: strPtr("invisible"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown visibility, got %v", err)
	}

	show := true
	updated, err := svc.UpdatePrivacy(ctx, user.ID, model.PrivacyUpdate{
		ProfileVisibility: strPtr(model.VisibilityFriends),
		ShowEmail:         &show,
	})
	if err != nil {
		t.Fatalf("UpdatePrivacy error: %v", err)
	}
	if updated.ProfileVisibility != model.VisibilityFriends || !updated.ShowEmail {
		t.Fatalf("privacy update not applied: %+v", updated)
	}
}

func TestUpdateAccountPasswordRevokesSessions(t *testing.T) {
	svc, authSvc := newTestUsers(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, refresh, _, err := authSvc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if _, err := svc.UpdateAccount(ctx, user.ID, model.AccountUpdate{
		Password: strPtr("new-password-1"),
	}); err != nil {
		t.Fatalf("UpdateAccount error: %v", err)
	}

	if _, _, _, err := authSvc.Rotate(ctx, refresh); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected old sessions revoked after password change, got %v", err)
	}

	if _, _, _, err := authSvc.Login(ctx, "alice", "new-password-1"); err != nil {
		t.Fatalf("login with new password error: %v", err)
	}
	if _, _, _, err := authSvc.Login(ctx, "alice", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}

func TestUpdateAccountConflicts(t *testing.T) {
	svc, _ := newTestUsers(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	bob, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "bob@example.com", Username: "bob", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := svc.UpdateAccount(ctx, bob.ID, model.AccountUpdate{
		Username: strPtr("alice"),
	}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for taken username, got %v", err)
	}
	if _, err := svc.UpdateAccount(ctx, bob.ID, model.AccountUpdate{
		Email: strPtr("alice@example.com"),
	}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for taken email, got %v", err)
	}

	// Re-submitting one's own values is not a conflict.
	if _, err := svc.UpdateAccount(ctx, bob.ID, model.AccountUpdate{
		Username: strPtr("bob"), Email: strPtr("bob@example.com"),
	}); err != nil {
		t.Fatalf("self-update error: %v", err)
	}
}

func TestDeleteCascadesSessions(t *testing.T) {
	svc, authSvc := newTestUsers(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, refresh, _, err := authSvc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if _, err := svc.GetByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
	if _, _, _, err := authSvc.Rotate(ctx, refresh); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected sessions revoked after delete, got %v", err)
	}
}

func TestSearchOnlyPublicProfiles(t *testing.T) {
	svc, _ := newTestUsers(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	bob, err := svc.Register(ctx, model.CreateUserRequest{
		Email: "bob@example.com", Username: "bob", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := svc.UpdatePrivacy(ctx, bob.ID, model.PrivacyUpdate{
		ProfileVisibility: strPtr(model.VisibilityPrivate),
	}); err != nil {
		t.Fatalf("UpdatePrivacy error: %v", err)
	}

	users, err := svc.Search(ctx, "", 0, 20)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("expected only the public profile, got %d results", len(users))
	}
}

func TestProfileStats(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	user := &model.User{
		Username:          "alice",
		FirstName:         strPtr("Alice"),
		Bio:               strPtr("hi"),
		CreatedAt:         now.AddDate(0, 0, -30),
		ProfileUpdatedAt:  now.AddDate(0, 0, -3),
		ProfileVisibility: model.VisibilityPublic,
		ShowEmail:         true,
	}

	stats := ProfileStats(user, now)
	if stats.ProfileCompleteness.CompletedFields != 2 {
		t.Fatalf("expected 2 completed fields, got %d", stats.ProfileCompleteness.CompletedFields)
	}
	if stats.ProfileCompleteness.TotalFields != 10 {
		t.Fatalf("expected 10 total fields, got %d", stats.ProfileCompleteness.TotalFields)
	}
	if stats.ProfileCompleteness.Percentage != 20.0 {
		t.Fatalf("expected 20%%, got %v", stats.ProfileCompleteness.Percentage)
	}
	if stats.AccountAgeDays != 30 || stats.DaysSinceLastUpdate != 3 {
		t.Fatalf("age stats wrong: %+v", stats)
	}
	if !stats.PrivacySettings.ShowEmail {
		t.Fatalf("privacy settings not carried through")
	}
}
