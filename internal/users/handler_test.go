package users_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"aidocs-backend/internal/bootstrap"
	"aidocs-backend/internal/shared/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func TestRegisterLoginAndProfile(t *testing.T) {
	router := newTestRouter(t)

	reqRegister := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"ada@example.com","name":"Ada","password":"long password 1"}`))
	reqRegister.Header.Set("Content-Type", "application/json")
	respRegister := httptest.NewRecorder()
	router.ServeHTTP(respRegister, reqRegister)

	if respRegister.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", respRegister.Code, respRegister.Body.String())
	}

	var registered struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(respRegister.Body).Decode(&registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if registered.Token == "" || registered.User.ID == "" {
		t.Fatalf("missing token or user id: %+v", registered)
	}

	reqLogin := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"long password 1"}`))
	reqLogin.Header.Set("Content-Type", "application/json")
	respLogin := httptest.NewRecorder()
	router.ServeHTTP(respLogin, reqLogin)

	if respLogin.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", respLogin.Code, respLogin.Body.String())
	}

	var loggedIn struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(respLogin.Body).Decode(&loggedIn); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	reqMe := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	reqMe.Header.Set("Authorization", "Bearer "+loggedIn.Token)
	respMe := httptest.NewRecorder()
	router.ServeHTTP(respMe, reqMe)

	if respMe.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", respMe.Code, respMe.Body.String())
	}

	var profile struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		PasswordHash string `json:"passwordHash"`
	}
	if err := json.NewDecoder(respMe.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.ID != registered.User.ID {
		t.Fatalf("expected profile for registered user, got %+v", profile)
	}
	if profile.PasswordHash != "" {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"nobody@example.com","password":"whatever else"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRegisterDuplicateEmailReturns400(t *testing.T) {
	router := newTestRouter(t)

	body := `{"email":"ada@example.com","name":"Ada","password":"long password 1"}`
	for i, want := range []int{http.StatusCreated, http.StatusBadRequest} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("attempt %d: expected %d, got %d", i, want, resp.Code)
		}
	}
}

func TestGuestProfile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("X-Guest-Id", "abc123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		ID    string `json:"id"`
		Guest bool   `json:"guest"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != "guest:abc123" || !body.Guest {
		t.Fatalf("unexpected guest profile: %+v", body)
	}
}
