package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"rentabike/pkg/auth"
	"rentabike/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func newRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	router := httprouter.New()
	NewAuthHandler(auth.NewAuthenticator(hash, "test-secret", time.Hour), testLogger()).RegisterRoutes(router)
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "correct password", body: `{"password":"correct horse"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"password":"battery staple"}`, wantStatus: http.StatusUnauthorized},
		{name: "missing password", body: `{}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "malformed", body: `{"password":`, wantStatus: http.StatusBadRequest},
	}

	router := newRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(router, "/api/v1/admin/login", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestLoginThenVerify(t *testing.T) {
	router := newRouter(t)

	w := post(router, "/api/v1/admin/login", `{"password":"correct horse"}`)
	var login struct {
		Data LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Data.Token == "" || login.Data.ExpiresAt.IsZero() {
		t.Fatalf("expected token and expiry, got %+v", login.Data)
	}

	tests := []struct {
		name      string
		token     string
		wantValid bool
	}{
		{name: "issued token", token: login.Data.Token, wantValid: true},
		{name: "garbage", token: "not.a.jwt", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(router, "/api/v1/admin/verify", `{"token":"`+tt.token+`"}`)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			var verify struct {
				Data VerifyResponse `json:"data"`
			}
			if err := json.NewDecoder(w.Body).Decode(&verify); err != nil {
				t.Fatalf("decode verify: %v", err)
			}
			if verify.Data.Valid != tt.wantValid || verify.Data.Admin != tt.wantValid {
				t.Errorf("got %+v, want valid=%v", verify.Data, tt.wantValid)
			}
		})
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	router := httprouter.New()
	NewAuthHandler(auth.NewAuthenticator("", "", time.Hour), testLogger()).RegisterRoutes(router)

	w := post(router, "/api/v1/admin/login", `{"password":"anything"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
