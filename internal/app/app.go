package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/campusconnect/loginflow/internal/devserver"
	"github.com/campusconnect/loginflow/internal/pkg/clock"
	"github.com/campusconnect/loginflow/internal/pkg/config"
	"github.com/campusconnect/loginflow/internal/pkg/goroutine"
	"github.com/campusconnect/loginflow/internal/pkg/instrument"
	"github.com/campusconnect/loginflow/internal/pkg/uid"
	"github.com/campusconnect/loginflow/internal/pkg/validator"
	"github.com/campusconnect/loginflow/internal/verification/inbound"
	"github.com/campusconnect/loginflow/internal/verification/usecase"
)

// Options selects how the application boots.
type Options struct {
	// ConfigPath points at a YAML config file. Empty means the embedded
	// defaults.
	ConfigPath string
	// DevServer starts the in-process development identity server and points
	// the client at it.
	DevServer bool
}

// App wires dependencies and manages the application lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID

	// modules
	usecase   *usecase.Usecase
	cli       *inbound.CLI
	devServer *devserver.Server

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		opts:   opts,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDevServer()
	app.initModules()
	app.initClosers()

	return app
}

// Run starts the development server when enabled and drives the interactive
// session until the user quits.
func (a *App) Run() error {
	if a.devServer != nil {
		a.goroutine.Go(a.ctx, func(context.Context) error {
			return a.devServer.Start()
		})
		// Give the listener a moment to bind before the first prompt.
		time.Sleep(150 * time.Millisecond)
	}

	return a.cli.Run(a.ctx)
}

// Stop shuts the application down gracefully.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.Error("failed to close resource", "name", closer.name, "error", err)
		}
	}
}

func (a *App) exitOnError(err error, msg string) {
	if err == nil {
		return
	}
	slog.Error(msg, "error", err)
	os.Exit(1)
}
