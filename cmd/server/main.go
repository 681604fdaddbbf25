package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/kogase-admin/analytics"
	"github.com/jrsteele09/kogase-admin/apiclient"
	"github.com/jrsteele09/kogase-admin/auth"
	"github.com/jrsteele09/kogase-admin/credentials"
	"github.com/jrsteele09/kogase-admin/credentials/sqliterepo"
	"github.com/jrsteele09/kogase-admin/health"
	"github.com/jrsteele09/kogase-admin/iam"
	"github.com/jrsteele09/kogase-admin/internal/config"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/jrsteele09/kogase-admin/internal/otel"
	"github.com/jrsteele09/kogase-admin/server"
	"github.com/jrsteele09/kogase-admin/telemetry"
	"github.com/rs/zerolog"
)

const (
	serviceName     = "kogase-admin"
	appVersion      = "1.0.0"
	credentialsFile = "credentials.db"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running server: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	c, err := config.New()
	if err != nil {
		return err
	}
	log := newLogger(c)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, c, serviceName)
	if err != nil {
		return fmt.Errorf("otel.Setup: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	if err := os.MkdirAll(c.GetDataFolder(), 0o700); err != nil {
		return fmt.Errorf("create data folder: %w", err)
	}
	repo, err := sqliterepo.Open(filepath.Join(c.GetDataFolder(), credentialsFile))
	if err != nil {
		return err
	}
	defer repo.Close()

	store, err := credentials.NewStore(repo, credentials.WithLogger(log))
	if err != nil {
		return err
	}
	client, err := apiclient.New(c.GetAPIBaseURL(), store, apiclient.WithLogger(log))
	if err != nil {
		return err
	}
	identities, err := iam.NewService(client)
	if err != nil {
		return err
	}
	telemetrySvc, err := telemetry.NewService(client, telemetry.WithClientInfo(runtime.GOOS, appVersion))
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(client, identities, auth.WithLogger(log), auth.WithAppVersion(appVersion))
	if err != nil {
		return err
	}
	defer authSvc.Close()
	authSvc.Subscribe(func(e auth.Event) {
		ev := log.Info().Str("event", e.Type.String())
		if e.User != nil {
			ev = ev.Str("userId", e.User.ID)
		}
		ev.AnErr("reason", e.Reason).Msg("sign-in state changed")
	})

	loader, err := analytics.NewLoader(identities, telemetrySvc, analytics.WithLogger(log))
	if err != nil {
		return err
	}
	monitor, err := health.NewMonitor(client,
		health.WithInterval(c.GetHealthInterval()),
		health.WithTimeout(c.GetHealthTimeout()),
		health.WithLogger(log))
	if err != nil {
		return err
	}
	monitor.Subscribe(func(previous, current health.State) {
		log.Warn().Stringer("from", previous.Status).Stringer("to", current.Status).Msg("backend availability changed")
	})
	go monitor.Run(ctx)

	restoreSession(ctx, authSvc, log)

	handler, err := server.New(c, server.Services{
		Auth:      authSvc,
		IAM:       identities,
		Telemetry: telemetrySvc,
		Analytics: loader,
		Health:    monitor,
	}, server.WithLogger(log))
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(srv, log)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	returnError = shutdown(srv)
	log.Info().Msg("Server stopped")
	return returnError
}

// restoreSession picks up the operator's cached sign-in, if it still
// verifies.
func restoreSession(ctx context.Context, authSvc *auth.Service, log zerolog.Logger) {
	user, err := authSvc.Initialize(ctx)
	switch {
	case err == nil:
		log.Info().Str("userId", user.ID).Str("name", user.Name()).Msg("restored signed-in session")
	case interrors.Is(err, interrors.ErrNotAuthenticated):
		log.Info().Msg("no signed-in session")
	default:
		log.Info().Err(err).Msg("cached session discarded")
	}
}

func newLogger(c config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if c.GetEnv() == "DEV" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).With().Timestamp().Str("service", serviceName).Logger()
}

func listenAndServe(server *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
