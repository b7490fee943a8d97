// Package server собирает HTTP сервер блога: хранилище, аутентификацию,
// сервисы, handlers и цепочку middleware.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/blogapi/internal/config"
	"github.com/iudanet/blogapi/internal/crypto"
	"github.com/iudanet/blogapi/internal/server/auth"
	"github.com/iudanet/blogapi/internal/server/blog"
	"github.com/iudanet/blogapi/internal/server/handlers"
	"github.com/iudanet/blogapi/internal/server/jwt"
	"github.com/iudanet/blogapi/internal/server/middleware"
	"github.com/iudanet/blogapi/internal/server/seed"
	"github.com/iudanet/blogapi/internal/server/storage/sqlite"
)

const healthPath = "/api/v1/health"

// Server HTTP сервер блога
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *sqlite.Storage
	authn      *auth.Authenticator
	blog       *blog.Service
	handler    http.Handler
	httpServer *http.Server
}

// New создает сервер. Хранилище остается во владении вызывающего.
func New(cfg *config.Config, store *sqlite.Storage, logger *slog.Logger, version string) (*Server, error) {
	authn, err := NewAuthenticator(cfg.JWT, store, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  store,
		authn:  authn,
		blog:   blog.NewService(store, store, store, logger),
	}
	s.handler = s.routes(version)
	s.httpServer = &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return s, nil
}

// NewAuthenticator создает Authenticator с HS256 кодеком из конфигурации
func NewAuthenticator(cfg config.JWTConfig, store auth.CredentialStore, logger *slog.Logger) (*auth.Authenticator, error) {
	codec, err := jwt.NewCodec(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	return auth.NewAuthenticator(store, crypto.NewBcryptHasher(bcrypt.DefaultCost), codec, cfg.AccessTokenTTL, logger), nil
}

// RoutePolicy правила доступа к API. Все, что не открыто явно, требует токен.
func RoutePolicy() *middleware.Policy {
	return middleware.NewPolicy(middleware.Authenticated,
		middleware.Rule{Method: http.MethodPost, Pattern: "/api/v1/auth/**", Access: middleware.Public},
		middleware.Rule{Method: http.MethodGet, Pattern: "/api/v1/posts/drafts", Access: middleware.Authenticated},
		middleware.Rule{Method: http.MethodGet, Pattern: "/api/v1/posts/**", Access: middleware.Public},
		middleware.Rule{Method: http.MethodGet, Pattern: "/api/v1/categories/**", Access: middleware.Public},
		middleware.Rule{Method: http.MethodGet, Pattern: "/api/v1/tags/**", Access: middleware.Public},
		middleware.Rule{Method: http.MethodGet, Pattern: healthPath, Access: middleware.Public},
	)
}

func (s *Server) routes(version string) http.Handler {
	authHandler := handlers.NewAuthHandler(s.logger, s.authn)
	postHandler := handlers.NewPostHandler(s.logger, s.blog)
	categoryHandler := handlers.NewCategoryHandler(s.logger, s.blog)
	tagHandler := handlers.NewTagHandler(s.logger, s.blog)
	healthHandler := handlers.NewHealthHandler(s.logger, s.store, version)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/sign-up", authHandler.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.HandleFunc("GET /api/v1/posts", postHandler.List)
	mux.HandleFunc("GET /api/v1/posts/drafts", postHandler.Drafts)
	mux.HandleFunc("GET /api/v1/posts/{id}", postHandler.Get)
	mux.HandleFunc("POST /api/v1/posts", postHandler.Create)
	mux.HandleFunc("PUT /api/v1/posts/{id}", postHandler.Update)
	mux.HandleFunc("DELETE /api/v1/posts/{id}", postHandler.Delete)

	mux.HandleFunc("GET /api/v1/categories", categoryHandler.List)
	mux.HandleFunc("POST /api/v1/categories", categoryHandler.Create)
	mux.HandleFunc("DELETE /api/v1/categories/{id}", categoryHandler.Delete)

	mux.HandleFunc("GET /api/v1/tags", tagHandler.List)
	mux.HandleFunc("POST /api/v1/tags", tagHandler.Create)
	mux.HandleFunc("DELETE /api/v1/tags/{id}", tagHandler.Delete)

	mux.HandleFunc("GET "+healthPath, healthHandler.Health)

	// Порядок: recovery -> logging -> cors -> identity -> authorize -> mux
	var h http.Handler = mux
	h = middleware.AuthorizeMiddleware(s.logger, RoutePolicy())(h)
	h = middleware.IdentityMiddleware(s.logger, s.authn)(h)
	h = middleware.CORSMiddleware(s.cfg.Server.CORS.AllowedOrigins)(h)
	h = middleware.LoggingWithSkip(s.logger, []string{healthPath})(h)
	h = middleware.RecoveryMiddleware(s.logger)(h)

	return h
}

// Handler возвращает корневой http.Handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Authenticator возвращает сервис аутентификации сервера
func (s *Server) Authenticator() *auth.Authenticator {
	return s.authn
}

// Seed загружает seed файл в хранилище
func (s *Server) Seed(ctx context.Context, path string) (seed.Result, error) {
	data, err := seed.LoadFile(path)
	if err != nil {
		return seed.Result{}, err
	}
	return seed.NewSeeder(s.store, s.authn, s.blog, s.logger).Run(ctx, data)
}

// Run запускает HTTP сервер и блокируется до отмены ctx,
// после чего корректно завершает активные запросы.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server", slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
