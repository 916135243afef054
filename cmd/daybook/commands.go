package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lbradley/daybook/internal/api"
	"github.com/lbradley/daybook/internal/cache"
	"github.com/lbradley/daybook/internal/generator"
	"github.com/lbradley/daybook/internal/keyring"
	"github.com/lbradley/daybook/internal/logger"
	"github.com/lbradley/daybook/internal/ratelimit"
	"github.com/lbradley/daybook/internal/storage"
)

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Port         int    `help:"Port to listen on." default:"8080" env:"DAYBOOK_PORT"`
	GeneratorURL string `help:"Base URL of the external content generator." env:"DAYBOOK_GENERATOR_URL"`
	Offline      bool   `help:"Use the offline generator instead of the external one."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	if err := logger.Init(logger.Config{
		Debug:     ctx.Debug,
		ConfigDir: filepath.Dir(ctx.Store.GetConfigPath()),
	}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer ctx.Store.Close()

	gen, err := c.buildGenerator()
	if err != nil {
		return err
	}

	server := api.NewServer(ctx.Store, gen)
	handler := server.Handler(os.Stdout)

	addr := fmt.Sprintf(":%d", c.Port)
	logger.Info("daybook engine listening", "addr", addr, "offline", c.Offline)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return srv.ListenAndServe()
}

func (c *ServeCmd) buildGenerator() (generator.Generator, error) {
	if c.Offline || c.GeneratorURL == "" {
		return generator.NewStatic(), nil
	}

	token := os.Getenv("DAYBOOK_GENERATOR_TOKEN")
	bucket := ratelimit.New(10, 0.5)
	store := cache.NewMemory()

	// Cache sweeping is caller-driven; run it for the server's lifetime.
	go cache.Sweep(store, time.Tick(time.Minute), make(chan struct{}))

	return generator.NewClient(c.GeneratorURL, token, bucket, store), nil
}

// InitCmd initializes storage.
type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	defer ctx.Store.Close()
	fmt.Printf("Initialized daybook storage at %s\n", ctx.Store.GetConfigPath())
	return nil
}

// MigrateCmd applies pending database migrations.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	defer ctx.Store.Close()
	if _, ok := ctx.Store.(*storage.JSONStore); ok {
		fmt.Println("JSON storage has no migrations.")
		return nil
	}
	// Init is idempotent and runs pending migrations on an existing database.
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Println("Migrations applied.")
	return nil
}

// DoctorCmd runs health checks against the configured environment.
type DoctorCmd struct{}

func (c *DoctorCmd) Run(ctx *Context) error {
	defer ctx.Store.Close()

	fmt.Printf("storage:       ok (%s)\n", ctx.Store.GetConfigPath())

	if keyring.IsAvailable() {
		fmt.Println("keyring:       available")
	} else {
		fmt.Println("keyring:       unavailable (PostgreSQL credentials cannot be stored)")
	}

	if _, err := ctx.Store.GetPreferences(); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Println("preferences:   not set (defaults will be used)")
		} else {
			fmt.Printf("preferences:   error: %v\n", err)
		}
	} else {
		fmt.Println("preferences:   ok")
	}
	return nil
}
