package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"socialgraph/internal/models"
	"socialgraph/internal/reporting"
	"socialgraph/internal/services"
)

const (
	sessionCookieName = "session_token"
	sessionCookieAge  = 30 * 24 * time.Hour
)

// AuthHandler is the identity collaborator's HTTP surface: signup, login,
// logout and the current-user lookup.
type AuthHandler struct {
	userService services.UserServiceInterface
	authService services.AuthServiceInterface
	reporter    reporting.Reporter
	secure      bool // HTTPS-only cookies
}

func NewAuthHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface, reporter reporting.Reporter, secure bool) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		reporter:    reporter,
		secure:      secure,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// validate normalizes the payload in place and reports the first problem.
func (req *RegisterRequest) validate() error {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return errors.New("Invalid email address")
	}

	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 2 || len(req.Username) > 100 {
		return errors.New("Username must be between 2 and 100 characters")
	}

	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	// bcrypt ignores everything past 72 bytes
	if len(req.Password) > 72 {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User    *models.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		h.reporter.CaptureException(r.Context(), err, nil)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.userService.Create(r.Context(), models.CreateUserParams{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
	})
	switch {
	case errors.Is(err, services.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, "Email already registered")
		return
	case errors.Is(err, services.ErrUsernameAlreadyInUse):
		writeError(w, http.StatusConflict, "Username already taken")
		return
	case err != nil:
		h.reporter.CaptureException(r.Context(), err, nil)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.reporter.CaptureException(r.Context(), err, nil)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.authService.VerifyPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		_ = h.authService.DeleteSession(r.Context(), cookie.Value)
	}

	h.setCookie(w, "", -1)
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

// startSession issues a session token and sets the cookie. On failure the
// error response has already been written.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		h.reporter.CaptureException(r.Context(), err, map[string]interface{}{"user_id": user.ID.String()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}

	h.setCookie(w, token, int(sessionCookieAge.Seconds()))
	return true
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, maxAge int) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	http.SetCookie(w, cookie)
}
