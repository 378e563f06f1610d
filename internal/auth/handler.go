package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/stockfolio/api/internal/httputil"
	"github.com/stockfolio/api/internal/logging"
	"github.com/stockfolio/api/internal/ratelimit"
	"github.com/stockfolio/api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest represents the signin request body
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AuthResponse represents a successful signup or signin response
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresIn int64        `json:"expiresIn"`
	User      UserResponse `json:"user"`
}

// Signup handles user registration
// @Summary      Sign up
// @Description  Create a new account and receive a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup fields"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing or malformed fields"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitExceeded(w, r, "signup") {
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("signup failed: email already exists")
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
		case errors.Is(err, ErrNameRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNameRequired, http.StatusBadRequest)
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmailFormat):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		default:
			logger.Error("signup failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to sign up", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user signed up", "user_id", result.User.ID)
	httputil.RespondJSON(w, newAuthResponse(result), http.StatusOK)
}

// Signin handles user login
// @Summary      Sign in
// @Description  Authenticate with email and password, receive a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SigninRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/signin [post]
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitExceeded(w, r, "signin") {
		return
	}

	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signin request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	result, err := h.service.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidCredentials):
			// Unknown email and wrong password share this exact response
			logger.Warn("signin failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		default:
			logger.Error("signin failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to sign in", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user signed in", "user_id", result.User.ID)
	httputil.RespondJSON(w, newAuthResponse(result), http.StatusOK)
}

// Me returns the account behind the presented bearer token
// @Summary      Current user
// @Description  Resolve the authenticated account from the bearer token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing, invalid, or orphaned token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}
	if email, ok := GetUserEmailFromContext(r.Context()); ok {
		logger = logger.WithFields(map[string]any{"email": email})
	}

	u, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Valid token, but the account it names is gone
			logger.Warn("token refers to a deleted user", "user_id", userID)
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to load current user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load current user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}, http.StatusOK)
}

// limitExceeded applies the per-IP limiter for the given purpose and writes
// a 429 when the window is exhausted. Limiter errors fail open.
func (h *Handler) limitExceeded(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return false
	}
	if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}
	return false
}

// getClientIP returns the request's remote IP. The RealIP middleware has
// already rewritten RemoteAddr when the request came through a proxy.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func newAuthResponse(result *AuthResult) AuthResponse {
	return AuthResponse{
		Token:     result.Token,
		TokenType: result.TokenType,
		ExpiresIn: result.ExpiresIn,
		User: UserResponse{
			ID:    result.User.ID,
			Name:  result.User.Name,
			Email: result.User.Email,
		},
	}
}
