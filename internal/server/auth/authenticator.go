// Package auth регистрирует и аутентифицирует пользователей, выпускает
// access токены и восстанавливает Identity по токену.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/blogapi/internal/crypto"
	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/server/apperr"
	"github.com/iudanet/blogapi/internal/server/storage"
)

// Сообщения об ошибках, отдаваемые клиенту
const (
	msgBadCredentials   = "bad credentials"
	msgUnknownSubject   = "unknown subject"
	msgPasswordMismatch = "password and confirmation password do not match"
)

// dummyPassword хешируется один раз при создании Authenticator. Проверка
// пароля против этого хеша выравнивает время ответа для неизвестного email.
const dummyPassword = "blogapi-dummy-password"

// CredentialStore is the part of storage.UserStorage the authenticator needs
type CredentialStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenCodec issues and verifies access tokens
type TokenCodec interface {
	Encode(subject string, extraClaims map[string]any, ttl time.Duration) (string, error)
	ExtractSubject(token string) (string, error)
}

// SignUp входные данные регистрации
type SignUp struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
}

// Authenticator не имеет изменяемого состояния после создания
// и безопасен для конкурентного использования.
type Authenticator struct {
	store          CredentialStore
	hasher         crypto.PasswordHasher
	codec          TokenCodec
	logger         *slog.Logger
	now            func() time.Time
	accessTokenTTL time.Duration
	dummyHash      string
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(
	store CredentialStore,
	hasher crypto.PasswordHasher,
	codec TokenCodec,
	accessTokenTTL time.Duration,
	logger *slog.Logger,
) *Authenticator {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		logger.Warn("Failed to prepare dummy password hash", slog.Any("error", err))
	}

	return &Authenticator{
		store:          store,
		hasher:         hasher,
		codec:          codec,
		accessTokenTTL: accessTokenTTL,
		logger:         logger,
		now:            time.Now,
		dummyHash:      dummyHash,
	}
}

// AccessTokenTTL returns the lifetime of issued tokens
func (a *Authenticator) AccessTokenTTL() time.Duration {
	return a.accessTokenTTL
}

// Register создает пользователя. При несовпадении пароля и подтверждения
// хранилище не затрагивается.
func (a *Authenticator) Register(ctx context.Context, req SignUp) (Identity, error) {
	if req.Password != req.ConfirmPassword {
		return Identity{}, apperr.Validation(msgPasswordMismatch, map[string]string{
			"confirm_password": msgPasswordMismatch,
		})
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return Identity{}, apperr.Validation("email and password are required", nil)
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return Identity{}, apperr.Wrap(apperr.ErrConflict, "email is already registered", err)
		}
		return Identity{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.InfoContext(ctx, "User registered",
		slog.String("user_id", user.ID),
	)

	return NewIdentity(user), nil
}

// Authenticate проверяет пару email/пароль. Неизвестный email и неверный
// пароль дают одну и ту же ошибку.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	user, err := a.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			a.hasher.Verify(password, a.dummyHash)
			a.logger.DebugContext(ctx, "Login failed: unknown email")
			return Identity{}, apperr.Authentication(msgBadCredentials)
		}
		return Identity{}, fmt.Errorf("failed to get user: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.DebugContext(ctx, "Login failed: password mismatch",
			slog.String("user_id", user.ID),
		)
		return Identity{}, apperr.Authentication(msgBadCredentials)
	}

	return NewIdentity(user), nil
}

// Lookup возвращает Identity пользователя без проверки пароля.
// Используется административными командами.
func (a *Authenticator) Lookup(ctx context.Context, email string) (Identity, error) {
	user, err := a.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return Identity{}, apperr.Wrap(apperr.ErrNotFound, "user not found", err)
		}
		return Identity{}, fmt.Errorf("failed to get user: %w", err)
	}
	return NewIdentity(user), nil
}

// IssueToken выпускает access токен с email в качестве subject
func (a *Authenticator) IssueToken(id Identity) (string, error) {
	token, err := a.codec.Encode(id.Email(), map[string]any{}, a.accessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// ValidateToken проверяет токен и заново загружает пользователя по subject.
// Ошибка токена возвращается как есть (jwt.ErrTokenInvalid), удаленный
// пользователь дает ошибку аутентификации.
func (a *Authenticator) ValidateToken(ctx context.Context, token string) (Identity, error) {
	subject, err := a.codec.ExtractSubject(token)
	if err != nil {
		return Identity{}, err
	}

	user, err := a.store.GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return Identity{}, apperr.Wrap(apperr.ErrAuthentication, msgUnknownSubject, err)
		}
		return Identity{}, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return NewIdentity(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
