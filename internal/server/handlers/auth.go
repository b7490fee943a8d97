package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/blogapi/internal/server/auth"
	"github.com/iudanet/blogapi/pkg/api"
)

// Authenticator операции аутентификации, используемые handler'ом
type Authenticator interface {
	Register(ctx context.Context, req auth.SignUp) (auth.Identity, error)
	Authenticate(ctx context.Context, email, password string) (auth.Identity, error)
	IssueToken(id auth.Identity) (string, error)
	AccessTokenTTL() time.Duration
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger *slog.Logger
	authn  Authenticator
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, authn Authenticator) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		authn:  authn,
	}
}

// SignUp обрабатывает POST /api/v1/auth/sign-up
// Регистрация нового пользователя
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignUpRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	id, err := h.authn.Register(ctx, auth.SignUp{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
	})
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	sendJSON(w, h.logger, api.SignUpResponse{
		ID:    id.UserID(),
		Email: id.Email(),
		Name:  id.Name(),
	}, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
// Проверяет учетные данные и выдает access token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	id, err := h.authn.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	token, err := h.authn.IssueToken(id)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", id.UserID()))

	sendJSON(w, h.logger, api.AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.authn.AccessTokenTTL().Seconds()),
	}, http.StatusOK)
}
