package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/userhub/backend/internal/config"
	"github.com/userhub/backend/internal/db"
	"github.com/userhub/backend/internal/model"
	"github.com/userhub/backend/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.UserService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemory()
	authSvc, err := service.NewAuthService(store, store, config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTAccessTTL:  "15m",
		JWTRefreshTTL: "168h",
		CookieSecure:  "false",
	})
	if err != nil {
		t.Fatalf("NewAuthService error: %v", err)
	}
	userSvc := service.NewUserService(store, store)

	authHandler := NewAuthHandler(authSvc)
	profileHandler := NewProfileHandler(userSvc, nil)

	r := gin.New()
	r.POST("/api/v1/auth/login", authHandler.Login)
	r.POST("/api/v1/auth/refresh", authHandler.Refresh)
	r.POST("/api/v1/auth/logout", authHandler.Logout)
	r.GET("/api/v1/auth/me", AuthMiddleware(authSvc), authHandler.Me)
	r.GET("/api/v1/profile/:id", OptionalAuthMiddleware(authSvc), profileHandler.Get)
	return r, userSvc
}

func registerTestUser(t *testing.T, svc *service.UserService) *model.User {
	t.Helper()

	user, err := svc.Register(context.Background(), model.CreateUserRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return user
}

func doLogin(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(model.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "userhub_refresh" {
			return cookie
		}
	}
	t.Fatalf("refresh cookie not set")
	return nil
}

func TestLoginEndpoint(t *testing.T) {
	r, users := newTestRouter(t)
	registerTestUser(t, users)

	w := doLogin(t, r, "alice", "password123")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp model.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.AccessToken == "" || resp.ExpiresIn == 0 {
		t.Fatalf("incomplete auth response: %+v", resp)
	}

	cookie := refreshCookie(t, w)
	if !cookie.HttpOnly {
		t.Fatalf("refresh cookie must be HttpOnly")
	}
}

func TestLoginEndpointUnauthorized(t *testing.T) {
	r, users := newTestRouter(t)
	registerTestUser(t, users)

	for _, creds := range [][2]string{{"alice", "wrong-password"}, {"nobody", "password123"}} {
		w := doLogin(t, r, creds[0], creds[1])
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		// The body must not say which check failed.
		if w.Body.String() != `{"error":"unauthorized"}` {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	}
}

func TestMeEndpoint(t *testing.T) {
	r, users := newTestRouter(t)
	user := registerTestUser(t, users)

	w := doLogin(t, r, "alice", "password123")
	var resp model.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w2.Code)
	}

	var me model.AuthMeResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &me); err != nil {
		t.Fatalf("bad me body: %v", err)
	}
	if me.UserID != user.ID || me.Username != "alice" {
		t.Fatalf("wrong identity: %+v", me)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req)
	if w3.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w3.Code)
	}
}

func TestRefreshEndpointSingleUse(t *testing.T) {
	r, users := newTestRouter(t)
	registerTestUser(t, users)

	login := doLogin(t, r, "alice", "password123")
	oldCookie := refreshCookie(t, login)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(oldCookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on first refresh, got %d", w.Code)
	}
	newCookie := refreshCookie(t, w)
	if newCookie.Value == oldCookie.Value {
		t.Fatalf("refresh must rotate the cookie")
	}

	// Replaying the consumed cookie is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(oldCookie)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on replay, got %d", w2.Code)
	}
}

func TestLogoutEndpointIdempotent(t *testing.T) {
	r, users := newTestRouter(t)
	registerTestUser(t, users)

	login := doLogin(t, r, "alice", "password123")
	cookie := refreshCookie(t, login)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("logout #%d: expected 200, got %d", i+1, w.Code)
		}
	}

	// Logout without any cookie is fine too.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without cookie, got %d", w.Code)
	}
}

func TestPublicProfileVisibility(t *testing.T) {
	r, users := newTestRouter(t)
	user := registerTestUser(t, users)

	visibility := model.VisibilityPrivate
	if _, err := users.UpdatePrivacy(context.Background(), user.ID, model.PrivacyUpdate{
		ProfileVisibility: &visibility,
	}); err != nil {
		t.Fatalf("UpdatePrivacy error: %v", err)
	}

	// Anonymous view of a private profile.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var view model.PublicProfile
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("bad profile body: %v", err)
	}
	if view.Email != nil {
		t.Fatalf("private profile leaked email")
	}
	if view.Bio == nil || *view.Bio != model.HiddenBio {
		t.Fatalf("expected placeholder bio, got %v", view.Bio)
	}
	if view.Username != "alice" {
		t.Fatalf("base fields must pass through")
	}

	// Owner sees their own bio.
	login := doLogin(t, r, "alice", "password123")
	var resp model.AuthResponse
	if err := json.Unmarshal(login.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad login body: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/profile/1", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	var ownerView model.PublicProfile
	if err := json.Unmarshal(w2.Body.Bytes(), &ownerView); err != nil {
		t.Fatalf("bad owner profile body: %v", err)
	}
	if ownerView.Bio != nil && *ownerView.Bio == model.HiddenBio {
		t.Fatalf("owner must not get the placeholder bio")
	}
}
