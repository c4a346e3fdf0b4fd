package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/target/spotify-auth/config"
	"github.com/target/spotify-auth/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	In     io.Reader

	// openServices defaults to openAppServices.
	openServices func(cmdCtx *commandContext) (*appServices, error)
}

// appServices is the wired service graph a command runs against.
type appServices struct {
	*bootstrap.ServiceContainer
	storage *bootstrap.Storage
}

func (a *appServices) Close() error {
	var errs []error
	if a.ServiceContainer != nil {
		errs = append(errs, a.ServiceContainer.Close())
	}
	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}
	return errors.Join(errs...)
}

func main() {
	logger := bootstrap.InitLoggerWithLevel(os.Stderr, slog.LevelInfo)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger = bootstrap.InitLoggerWithLevel(os.Stderr, cfg.SlogLevel())

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"status": {
			name:        "status",
			description: "Show the stored token, selected device and config problems",
			run:         runStatus,
		},
		"token": {
			name:        "token",
			description: "Print a valid access token, authorizing in the browser if needed",
			run:         runToken,
		},
		"refresh": {
			name:        "refresh",
			description: "Run a new browser authorization even if the token is still valid",
			run:         runRefresh,
		},
		"clear-token": {
			name:        "clear-token",
			description: "Forget the stored access token",
			run:         runClearToken,
		},
		"devices": {
			name:        "devices",
			description: "List the Spotify Connect devices of the account",
			run:         runDevices,
		},
		"select-device": {
			name:        "select-device",
			description: "Store the device used for playback",
			run:         runSelectDevice,
		},
		"config-list": {
			name:        "config-list",
			description: "List config and secret entries",
			run:         runConfigList,
		},
		"config-set": {
			name:        "config-set",
			description: "Set a config or secret entry from its stored form",
			run:         runConfigSet,
		},
		"migrate": {
			name:        "migrate",
			description: "Create the config table of the postgres store backend",
			run:         runMigrations,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: spotify-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func (c *commandContext) services() (*appServices, error) {
	if c.openServices != nil {
		return c.openServices(c)
	}
	return openAppServices(c)
}

func openAppServices(cmdCtx *commandContext) (*appServices, error) {
	storage, err := bootstrap.OpenStorage(cmdCtx.Ctx, cmdCtx.Config.Storage, cmdCtx.Logger)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}
	container, err := bootstrap.NewServices(cmdCtx.Ctx, &bootstrap.ServiceDeps{
		Config: &cmdCtx.Config,
		Store:  storage.Store,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		if cerr := storage.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, fmt.Errorf("build services: %w", err)
	}
	return &appServices{ServiceContainer: container, storage: storage}, nil
}

// withServices opens the service graph, runs fn and closes the graph again.
func withServices(cmdCtx *commandContext, fn func(svc *appServices) error) (err error) {
	svc, err := cmdCtx.services()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(svc)
}
