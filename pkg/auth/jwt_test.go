package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := HashPassword("ride-the-coast")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return NewAuthenticator(hash, "test-secret", 24*time.Hour)
}

func TestLogin(t *testing.T) {
	a := newTestAuthenticator(t)

	token, expiresAt, err := a.Login("ride-the-coast")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if d := time.Until(expiresAt); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("expiry %v not ~24h away", expiresAt)
	}
	if !a.Authorized(token) {
		t.Error("freshly issued token should be authorized")
	}

	if _, _, err := a.Login("wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	a := NewAuthenticator("", "", time.Hour)
	if _, _, err := a.Login("anything"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if a.Authorized("anything") {
		t.Error("unconfigured authenticator must reject every token")
	}
}

func TestAuthorized(t *testing.T) {
	a := newTestAuthenticator(t)
	valid, _, err := a.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expired := newTestAuthenticator(t)
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	stale, _, _ := expired.Issue()

	otherSecret := NewAuthenticator("", "other-secret", time.Hour)
	forged, _, _ := otherSecret.Issue()

	notAdmin, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Admin: false,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "valid", token: valid, want: true},
		{name: "expired", token: stale, want: false},
		{name: "wrong secret", token: forged, want: false},
		{name: "admin claim false", token: notAdmin, want: false},
		{name: "garbage", token: "not.a.jwt", want: false},
		{name: "empty", token: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Authorized(tt.token); got != tt.want {
				t.Errorf("Authorized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer   abc.def ", want: "abc.def"},
		{header: "Basic abc", want: ""},
		{header: "abc.def", want: ""},
		{header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
