package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/lbradley/daybook/internal/constants"
	"github.com/lbradley/daybook/internal/keyring"
	"github.com/lbradley/daybook/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string; store them in the OS keyring instead." default:"~/.config/daybook/daybook.db"`
	Debug   bool   `help:"Enable debug logging."`

	Serve   ServeCmd   `cmd:"" help:"Run the planning engine HTTP server." default:"1"`
	Init    InitCmd    `cmd:"" help:"Initialize daybook storage."`
	Migrate MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
}

// Context carries shared state into commands.
type Context struct {
	Store storage.Provider
	Debug bool
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Time accounting and schedule reconciliation engine for daily planning"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	store, err := buildStore(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appCtx := &Context{Store: store, Debug: CLI.Debug}

	// Load the store before running the command; init handles its own setup.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildStore selects a backend from the config value. A postgres://
// connection string selects PostgreSQL, anything else is a SQLite path.
func buildStore(config string) (storage.Provider, error) {
	if storage.IsPostgresConnString(config) {
		if storage.HasEmbeddedCredentials(config) {
			return nil, fmt.Errorf("connection strings with embedded credentials are not allowed; store them with the OS keyring instead")
		}
		if err := storage.ValidateConnString(config); err != nil {
			return nil, err
		}
		// Prefer full credentials from the keyring when present.
		if connStr, err := keyring.GetConnectionString(); err == nil {
			return storage.NewPostgresStore(connStr), nil
		}
		return storage.NewPostgresStore(config), nil
	}
	if filepath.Ext(config) == ".json" {
		return storage.NewJSONStore(expandPath(config)), nil
	}
	return storage.NewSQLiteStore(expandPath(config)), nil
}

func expandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home + path[1:]
		}
	}
	return path
}
