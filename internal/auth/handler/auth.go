package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"

	"rentabike/pkg/auth"
	apperrors "rentabike/pkg/errors"
	httputil "rentabike/pkg/http"
	"rentabike/pkg/logger"
	"rentabike/pkg/middleware"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
	Admin bool `json:"admin"`
}

// Authenticator is the part of auth.Authenticator the endpoints use.
type Authenticator interface {
	Login(password string) (string, time.Time, error)
	Parse(token string) (*auth.Claims, error)
}

type AuthHandler struct {
	auth     Authenticator
	validate *validator.Validate
	log      *logger.Logger
}

func NewAuthHandler(authenticator Authenticator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     authenticator,
		validate: validator.New(),
		log:      log,
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/admin/login", h.Login)
	router.POST("/api/v1/admin/verify", h.Verify)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, "Login", apperrors.Validation("Password is required", map[string]any{
			"missing_fields": []string{"password"},
		}))
		return
	}

	token, expiresAt, err := h.auth.Login(req.Password)
	if err != nil {
		requestID := middleware.GetRequestID(r.Context())
		if errors.Is(err, auth.ErrNotConfigured) {
			h.log.Error("Admin login attempted without credentials configured", "request_id", requestID)
			h.writeError(w, "Login", apperrors.Unavailable("Admin login"))
			return
		}
		h.log.Warn("Admin login failed", "request_id", requestID, "remote_addr", middleware.ClientIP(r))
		h.writeError(w, "Login", apperrors.Unauthorized("Invalid password"))
		return
	}

	h.log.Info("Admin logged in", "request_id", middleware.GetRequestID(r.Context()), "expires_at", expiresAt)
	if err := httputil.WriteSuccess(w, LoginResponse{Token: token, ExpiresAt: expiresAt}); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

// Verify reports whether a token is still a valid admin session. An invalid
// token is a normal answer, not an error.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req VerifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Verify", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, "Verify", apperrors.Validation("Token is required", map[string]any{
			"missing_fields": []string{"token"},
		}))
		return
	}

	resp := VerifyResponse{}
	if claims, err := h.auth.Parse(req.Token); err == nil {
		resp.Valid = true
		resp.Admin = claims.Admin
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Verify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
