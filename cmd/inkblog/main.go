package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"inkblog/internal/domain/config"
)

// Global is shared by every subcommand.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
}

type CLI struct {
	Config  string `short:"c" help:"Site configuration file" default:"site.yaml"`
	EnvFile string `name:"env-file" help:"Dotenv file loaded before the config" default:".env"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Build BuildCmd `cmd:"" help:"Render the whole site into the public directory"`
	Serve ServeCmd `cmd:"" help:"Serve the site with live reload and code toggles"`
	List  ListCmd  `cmd:"" help:"Print posts in publication order"`
}

func (c *CLI) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the dotenv file, then the YAML config on top of defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(c.EnvFile); err != nil {
		return config.Config{}, fmt.Errorf("load %s: %w", c.EnvFile, err)
	}
	cfg, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", c.Config, err)
	}
	return cfg, nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("inkblog"),
		kong.Description("A small markdown blog: static build and dev server."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cli.logger()
	slog.SetDefault(logger)

	if err := kctx.Run(&Global{Ctx: ctx, Logger: logger}, &cli); err != nil {
		logger.Error("command failed", "command", kctx.Command(), "error", err)
		stop()
		os.Exit(1)
	}
}
