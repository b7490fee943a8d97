package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/iudanet/blogapi/internal/config"
	"github.com/iudanet/blogapi/internal/logging"
	"github.com/iudanet/blogapi/internal/server"
	"github.com/iudanet/blogapi/internal/server/apperr"
	"github.com/iudanet/blogapi/internal/server/auth"
	"github.com/iudanet/blogapi/internal/server/seed"
	"github.com/iudanet/blogapi/internal/server/storage/sqlite"
	pkgapi "github.com/iudanet/blogapi/pkg/api"
)

// openLocal открывает базу и собирает сервер без запуска HTTP.
// Вызывающий обязан вызвать close.
func (c *Cli) openLocal(ctx context.Context) (srv *server.Server, closeFn func(), err error) {
	cfg, err := config.Load(c.opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.opts.DBPath != "" {
		cfg.Database.Path = c.opts.DBPath
		if err := cfg.Finalize(); err != nil {
			return nil, nil, err
		}
	}

	logCfg := cfg.Logging
	logCfg.Level = c.logLevel()
	logger := logging.New(logCfg, os.Stderr)

	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	closeFn = func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", slog.Any("error", err))
		}
	}

	srv, err = server.New(cfg, store, logger, c.opts.Version)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return srv, closeFn, nil
}

func (c *Cli) runCreateUser(ctx context.Context) error {
	c.io.Heading("Create user")

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	name, err := c.io.ReadInput("Name: ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}
	password, err := c.getPassword(true)
	if err != nil {
		return err
	}

	// те же правила, что и для POST /api/v1/auth/sign-up
	req := pkgapi.SignUpRequest{Email: email, Password: password, ConfirmPassword: password, Name: name}
	if err := apperr.FromValidation(req.Validate()); err != nil {
		return describe(err)
	}

	srv, closeFn, err := c.openLocal(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	id, err := srv.Authenticator().Register(ctx, auth.SignUp{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
	})
	if err != nil {
		return describe(err)
	}

	c.io.Println()
	c.io.Success("User created")
	c.io.Printf("ID:    %s\n", id.UserID())
	c.io.Printf("Email: %s\n", id.Email())
	c.io.Printf("Name:  %s\n", id.Name())
	return nil
}

func (c *Cli) runSeed(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: blogctl seed <file>")
	}

	srv, closeFn, err := c.openLocal(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := srv.Seed(ctx, args[0])
	if err != nil {
		return describe(err)
	}

	c.io.Success("Seed loaded from %s", args[0])
	c.io.Printf("Users:      %d\n", res.Users)
	c.io.Printf("Categories: %d\n", res.Categories)
	c.io.Printf("Tags:       %d\n", res.Tags)
	c.io.Printf("Posts:      %d\n", res.Posts)
	if res == (seed.Result{}) {
		c.io.Warn("Nothing to load: every section already has data")
	}
	return nil
}

// runToken печатает только токен, вывод можно подставить в переменную окружения
func (c *Cli) runToken(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: blogctl token <email>")
	}

	srv, closeFn, err := c.openLocal(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	authn := srv.Authenticator()
	id, err := authn.Lookup(ctx, args[0])
	if err != nil {
		return describe(err)
	}
	token, err := authn.IssueToken(id)
	if err != nil {
		return err
	}

	c.io.Println(token)
	return nil
}
