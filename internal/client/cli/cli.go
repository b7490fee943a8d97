// Package cli команды утилиты администрирования blogctl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/blogapi/internal/client/api"
	"github.com/iudanet/blogapi/internal/client/iocli"
)

// Переменные окружения утилиты
const (
	EnvPassword = "BLOGCTL_PASSWORD"
	EnvToken    = "BLOGCTL_TOKEN"
)

// ErrUnknownCommand неизвестная команда
var ErrUnknownCommand = errors.New("unknown command")

// Passwords источники пароля, указанные флагами
type Passwords struct {
	FromFile string
	FromArgs string
}

// Options глобальные флаги утилиты
type Options struct {
	Passwords  Passwords
	ConfigPath string // YAML конфиг сервера для локальных команд
	DBPath     string // перекрывает database.path из конфига
	ServerURL  string // адрес API для удаленных команд
	Version    string
	Verbose    bool // логи сервисов уровня info вместо warn
}

// Cli выполняет команды blogctl
type Cli struct {
	io        iocli.IO
	apiClient *api.Client
	getenv    func(string) string
	opts      Options
}

// New создает Cli
func New(io iocli.IO, opts Options) *Cli {
	return &Cli{
		io:        io,
		opts:      opts,
		apiClient: api.NewClient(strings.TrimRight(opts.ServerURL, "/")),
		getenv:    os.Getenv,
	}
}

// Run выполняет команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create-user":
		return c.runCreateUser(ctx)
	case "seed":
		return c.runSeed(ctx, args)
	case "token":
		return c.runToken(ctx, args)
	case "login":
		return c.runLogin(ctx, args)
	case "posts":
		return c.runPosts(ctx, args)
	case "drafts":
		return c.runDrafts(ctx)
	case "health":
		return c.runHealth(ctx)
	case "version":
		c.io.Printf("blogctl %s\n", c.opts.Version)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// getPassword возвращает пароль из первого доступного источника:
// 1. переменная окружения BLOGCTL_PASSWORD
// 2. файл из --password-file
// 3. флаг --password
// 4. интерактивный ввод; confirm запрашивает пароль повторно
func (c *Cli) getPassword(confirm bool) (string, error) {
	if envPassword := c.getenv(EnvPassword); envPassword != "" {
		return envPassword, nil
	}

	if c.opts.Passwords.FromFile != "" {
		content, err := os.ReadFile(c.opts.Passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	if c.opts.Passwords.FromArgs != "" {
		return c.opts.Passwords.FromArgs, nil
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	if confirm {
		again, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if again != password {
			return "", fmt.Errorf("passwords do not match")
		}
	}

	return password, nil
}

func (c *Cli) logLevel() string {
	if c.opts.Verbose {
		return slog.LevelInfo.String()
	}
	return slog.LevelWarn.String()
}

// PrintUsage печатает справку
func PrintUsage(out iocli.IO) {
	out.Heading("blogctl")
	out.Println("Usage:")
	out.Println("  blogctl [OPTIONS] COMMAND [ARGS]")
	out.Println()
	out.Println("Options:")
	out.Println("  --config PATH           Server YAML config (local commands)")
	out.Println("  --db PATH               SQLite database path, overrides config")
	out.Println("  --server URL            API URL for remote commands (default: http://localhost:8080)")
	out.Println("  --password PASSWORD     Password (not recommended, use env var or file)")
	out.Println("  --password-file PATH    Path to file containing password")
	out.Println("  --verbose               Show service logs")
	out.Println("  --version               Show version information")
	out.Println()
	out.Println("Password priority (highest to lowest):")
	out.Println("  1. BLOGCTL_PASSWORD environment variable")
	out.Println("  2. --password-file")
	out.Println("  3. --password")
	out.Println("  4. Interactive prompt")
	out.Println()
	out.Println("Local commands (open the database directly):")
	out.Println("  create-user             Create a user account")
	out.Println("  seed <file>             Load users, categories, tags and posts from YAML")
	out.Println("  token <email>           Issue an access token for an existing user")
	out.Println()
	out.Println("Remote commands (call the API):")
	out.Println("  login [email]           Log in and print the access token")
	out.Println("  posts [--category ID] [--tag ID]")
	out.Println("                          List published posts")
	out.Println("  drafts                  List your drafts (token from BLOGCTL_TOKEN)")
	out.Println("  health                  Check server health")
	out.Println("  version                 Show version")
	out.Println()
	out.Println("Examples:")
	out.Println("  export BLOG_JWT_SECRET=$(openssl rand -base64 32)")
	out.Println("  blogctl --config configs/config.yaml create-user")
	out.Println("  blogctl --db blog.db seed configs/seed.example.yaml")
	out.Println("  export BLOGCTL_TOKEN=$(blogctl token admin@example.com)")
	out.Println("  blogctl --server https://blog.example.com posts --tag 6f1c...")
}
