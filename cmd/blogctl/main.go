package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/iudanet/blogapi/internal/client/cli"
	"github.com/iudanet/blogapi/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to server YAML config")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides config)")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	password := flag.String("password", "", "Password (not recommended, use BLOGCTL_PASSWORD or --password-file)")
	passwordFile := flag.String("password-file", "", "Path to file containing password")
	verbose := flag.Bool("verbose", false, "Show service logs")

	stdio := iocli.NewStdio()
	flag.Usage = func() { cli.PrintUsage(stdio) }
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cli.New(stdio, cli.Options{
		ConfigPath: *configPath,
		DBPath:     *dbPath,
		ServerURL:  *serverURL,
		Passwords: cli.Passwords{
			FromFile: *passwordFile,
			FromArgs: *password,
		},
		Version: Version,
		Verbose: *verbose,
	})

	if err := c.Run(ctx, args[0], args[1:]); err != nil {
		errColor := color.New(color.FgRed)
		_, _ = errColor.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUnknownCommand) {
			cli.PrintUsage(stdio)
		}
		stop()
		os.Exit(1)
	}
}

func printVersion() {
	cyan := color.New(color.FgCyan)
	_, _ = cyan.Println("blogctl")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
