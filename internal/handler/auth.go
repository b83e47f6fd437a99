package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"stockcount-api/internal/middleware"
	"stockcount-api/internal/service"
	"stockcount-api/pkg/apierror"
	"stockcount-api/pkg/response"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	sessions     *service.SessionService
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. secureCookie marks the session
// cookie Secure and should be set behind HTTPS.
func NewAuthHandler(sessions *service.SessionService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		secureCookie: secureCookie,
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the response for login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	token, session, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		response.Error(w, apierror.Unauthorized("Invalid username or password"))
		return
	}
	if err != nil {
		log.Printf("[AuthHandler] Login for %q failed: %v", req.Username, err)
		response.Error(w, apierror.InternalError("failed to create session"))
		return
	}

	ttl := h.sessions.TTL()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	response.OK(w, LoginResponse{
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
		Username:  session.Username,
		Role:      session.Role,
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		response.Error(w, apierror.BadRequest("no session token"))
		return
	}

	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		log.Printf("[AuthHandler] Revoke failed: %v", err)
		response.Error(w, apierror.InternalError("failed to revoke session"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	response.OK(w, map[string]string{"status": "logged_out"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized(""))
		return
	}
	response.OK(w, session)
}
