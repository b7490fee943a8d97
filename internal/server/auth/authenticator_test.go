package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/blogapi/internal/crypto"
	"github.com/iudanet/blogapi/internal/models"
	"github.com/iudanet/blogapi/internal/server/apperr"
	"github.com/iudanet/blogapi/internal/server/jwt"
	"github.com/iudanet/blogapi/internal/server/storage"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// mockCredentialStore is an in-memory CredentialStore for testing
type mockCredentialStore struct {
	users       map[string]*models.User // email -> User
	createError error
	getError    error
	createCalls int
	mu          sync.Mutex
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{users: make(map[string]*models.User)}
}

func (m *mockCredentialStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createError != nil {
		return m.createError
	}
	key := strings.ToLower(user.Email)
	if _, exists := m.users[key]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[key] = user
	return nil
}

func (m *mockCredentialStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockCredentialStore) delete(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, strings.ToLower(email))
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestAuthenticator(t *testing.T, store CredentialStore, c *clock) *Authenticator {
	t.Helper()
	codec, err := jwt.NewCodec(testSecret, jwt.WithClock(c.Now))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthenticator(store, crypto.NewBcryptHasher(bcrypt.MinCost), codec, time.Hour, logger)
}

func validSignUp() SignUp {
	return SignUp{
		Email:           "alice@example.com",
		Password:        "Secret123!",
		ConfirmPassword: "Secret123!",
		Name:            "Alice",
	}
}

func TestAuthenticator_Register(t *testing.T) {
	store := newMockCredentialStore()
	a := newTestAuthenticator(t, store, &clock{now: time.Now()})

	req := validSignUp()
	req.Email = "  Alice@Example.com "

	id, err := a.Register(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, id.UserID())
	assert.Equal(t, "alice@example.com", id.Email())
	assert.Equal(t, "Alice", id.Name())
	assert.Equal(t, []Role{RoleUser}, id.Roles())

	stored, err := store.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, req.Password, stored.PasswordHash, "пароль хранится только в виде хеша")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(req.Password)))
}

func TestAuthenticator_Register_PasswordMismatch(t *testing.T) {
	store := newMockCredentialStore()
	a := newTestAuthenticator(t, store, &clock{now: time.Now()})

	req := validSignUp()
	req.ConfirmPassword = "Different1!"

	_, err := a.Register(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "do not match")

	// хранилище не затронуто
	assert.Equal(t, 0, store.createCalls)
	assert.Empty(t, store.users)
}

func TestAuthenticator_Register_Errors(t *testing.T) {
	storeErr := errors.New("database is locked")

	tests := []struct {
		name     string
		prepare  func(*mockCredentialStore)
		modify   func(*SignUp)
		wantKind error
		wantErr  error
	}{
		{
			name: "duplicate email",
			prepare: func(m *mockCredentialStore) {
				m.users["alice@example.com"] = &models.User{ID: "existing", Email: "alice@example.com"}
			},
			wantKind: apperr.ErrConflict,
			wantErr:  storage.ErrUserAlreadyExists,
		},
		{
			name:     "empty email",
			modify:   func(s *SignUp) { s.Email = "  " },
			wantKind: apperr.ErrValidation,
		},
		{
			name:    "storage failure",
			prepare: func(m *mockCredentialStore) { m.createError = storeErr },
			wantErr: storeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockCredentialStore()
			if tt.prepare != nil {
				tt.prepare(store)
			}
			a := newTestAuthenticator(t, store, &clock{now: time.Now()})

			req := validSignUp()
			if tt.modify != nil {
				tt.modify(&req)
			}

			_, err := a.Register(context.Background(), req)
			require.Error(t, err)
			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAuthenticator_Authenticate(t *testing.T) {
	store := newMockCredentialStore()
	a := newTestAuthenticator(t, store, &clock{now: time.Now()})

	registered, err := a.Register(context.Background(), validSignUp())
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "correct credentials", email: "alice@example.com", password: "Secret123!"},
		{name: "email in other case", email: "ALICE@example.com", password: "Secret123!"},
		{name: "wrong password", email: "alice@example.com", password: "wrong", wantErr: true},
		{name: "unknown email", email: "bob@example.com", password: "Secret123!", wantErr: true},
		{name: "empty password", email: "alice@example.com", password: "", wantErr: true},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrAuthentication)
				messages = append(messages, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.UserID(), id.UserID())
		})
	}

	// одинаковое сообщение для неизвестного email и неверного пароля
	for _, msg := range messages {
		assert.Equal(t, msgBadCredentials, msg)
	}
}

// countingHasher records every Verify call and delegates to bcrypt
type countingHasher struct {
	crypto.PasswordHasher
	mu           sync.Mutex
	verifyCalls  int
	verifyHashes []string
}

func (h *countingHasher) Verify(plaintext, hash string) bool {
	h.mu.Lock()
	h.verifyCalls++
	h.verifyHashes = append(h.verifyHashes, hash)
	h.mu.Unlock()
	return h.PasswordHasher.Verify(plaintext, hash)
}

func TestAuthenticator_Authenticate_UnknownEmailVerifiesDummyHash(t *testing.T) {
	store := newMockCredentialStore()
	hasher := &countingHasher{PasswordHasher: crypto.NewBcryptHasher(bcrypt.MinCost)}
	codec, err := jwt.NewCodec(testSecret)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewAuthenticator(store, hasher, codec, time.Hour, logger)

	_, err = a.Register(context.Background(), validSignUp())
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), "bob@example.com", "Secret123!")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	assert.Equal(t, msgBadCredentials, err.Error())

	require.Equal(t, 1, hasher.verifyCalls)
	dummy := hasher.verifyHashes[0]
	assert.NotEmpty(t, dummy)
	assert.True(t, strings.HasPrefix(dummy, "$2"), "expected bcrypt hash, got %q", dummy)
	assert.NotEqual(t, store.users["alice@example.com"].PasswordHash, dummy)

	// тот же хеш используется повторно, без хеширования на каждый запрос
	_, err = a.Authenticate(context.Background(), "carol@example.com", "other")
	require.Error(t, err)
	require.Equal(t, 2, hasher.verifyCalls)
	assert.Equal(t, dummy, hasher.verifyHashes[1])

	// известный email проверяется против собственного хеша
	_, err = a.Authenticate(context.Background(), "alice@example.com", "Secret123!")
	require.NoError(t, err)
	require.Equal(t, 3, hasher.verifyCalls)
	assert.Equal(t, store.users["alice@example.com"].PasswordHash, hasher.verifyHashes[2])
}

func TestAuthenticator_Authenticate_StorageError(t *testing.T) {
	store := newMockCredentialStore()
	store.getError = errors.New("disk I/O error")
	a := newTestAuthenticator(t, store, &clock{now: time.Now()})

	_, err := a.Authenticate(context.Background(), "alice@example.com", "Secret123!")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrAuthentication)
	assert.ErrorIs(t, err, store.getError)
}

func TestAuthenticator_RegisterLoginValidate(t *testing.T) {
	ctx := context.Background()
	store := newMockCredentialStore()
	c := &clock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	a := newTestAuthenticator(t, store, c)

	_, err := a.Register(ctx, validSignUp())
	require.NoError(t, err)

	id, err := a.Authenticate(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)

	token, err := a.IssueToken(id)
	require.NoError(t, err)

	resolved, err := a.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID(), resolved.UserID())
	assert.Equal(t, "alice@example.com", resolved.Email())
	assert.True(t, resolved.HasRole(RoleUser))

	// по истечении TTL токен отвергается
	c.now = c.now.Add(a.AccessTokenTTL())
	_, err = a.ValidateToken(ctx, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestAuthenticator_ValidateToken_DeletedUser(t *testing.T) {
	ctx := context.Background()
	store := newMockCredentialStore()
	a := newTestAuthenticator(t, store, &clock{now: time.Now()})

	id, err := a.Register(ctx, validSignUp())
	require.NoError(t, err)
	token, err := a.IssueToken(id)
	require.NoError(t, err)

	store.delete(id.Email())

	_, err = a.ValidateToken(ctx, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestAuthenticator_Lookup(t *testing.T) {
	ctx := context.Background()
	store := newMockCredentialStore()
	a := newTestAuthenticator(t, store, &clock{now: time.Now()})

	registered, err := a.Register(ctx, validSignUp())
	require.NoError(t, err)

	id, err := a.Lookup(ctx, " ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID(), id.UserID())

	_, err = a.Lookup(ctx, "bob@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	store.getError = errors.New("disk I/O error")
	_, err = a.Lookup(ctx, "alice@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
}

func TestAuthenticator_ValidateToken_Invalid(t *testing.T) {
	a := newTestAuthenticator(t, newMockCredentialStore(), &clock{now: time.Now()})

	_, err := a.ValidateToken(context.Background(), "garbage")
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	_, ok := IdentityFromContext(ctx)
	assert.False(t, ok)
	_, ok = UserIDFromContext(ctx)
	assert.False(t, ok)

	id := NewIdentity(&models.User{ID: "u1", Email: "alice@example.com", Name: "Alice"})
	ctx = WithIdentity(ctx, id)

	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", got.Email())

	userID, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", userID)

	// изменение возвращенного среза ролей не влияет на Identity
	roles := got.Roles()
	roles[0] = "ADMIN"
	assert.True(t, got.HasRole(RoleUser))

	_, ok = IdentityFromContext(WithIdentity(context.Background(), Identity{}))
	assert.False(t, ok, "пустая Identity не считается аутентификацией")
}
