// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskloop-ai/taskchat/internal/middleware"
	"github.com/taskloop-ai/taskchat/internal/model"
	"github.com/taskloop-ai/taskchat/internal/store"
	"github.com/taskloop-ai/taskchat/pkg/logger"
)

const minPasswordLength = 8

// AuthHandler handles signup, login and the current-user endpoint.
type AuthHandler struct {
	store     *store.Store
	jwtSecret string
	tokenTTL  time.Duration
	logger    *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(st *store.Store, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		store:     st,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    log,
	}
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "validation_error", "password must be at least 8 characters")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name cannot be empty")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create account")
		return
	}

	user, err := h.store.CreateUser(ctx, email, name, string(hash))
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "email_taken", "email already registered")
		return
	}
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create account")
		return
	}

	h.issueAndRespond(w, user, http.StatusCreated)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("failed to load user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "login failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	h.issueAndRespond(w, user, http.StatusOK)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.store.GetUser(ctx, middleware.GetUserID(ctx))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *AuthHandler) issueAndRespond(w http.ResponseWriter, user *model.User, status int) {
	token, err := middleware.IssueToken(h.jwtSecret, user.ID, user.Email, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to issue token")
		return
	}
	writeData(w, status, model.AuthResponse{User: *user, Token: token})
}
