package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	authsvc "churnportal/internal/app/services/auth"
	"churnportal/internal/app/services/prediction"
	"churnportal/internal/app/services/reports"
	domainauth "churnportal/internal/domain/auth"
	"churnportal/internal/infra/broker/kafka"
	"churnportal/internal/infra/churnapi"
	"churnportal/internal/infra/config"
	mongostore "churnportal/internal/infra/db/mongo"
	ginserver "churnportal/internal/infra/http/gin"
	"churnportal/internal/infra/obs"
	"churnportal/internal/infra/security"
	"churnportal/internal/infra/spreadsheet"
	"churnportal/internal/infra/storage/memory"
	"churnportal/internal/infra/storage/s3"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := obs.NewLoggerTo(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close(logger)

	server, err := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health, app.handlers)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "predict_api", cfg.PredictAPIURL, "scale", cfg.Scale)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	closers  []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{health: obs.HealthHandlers{Checks: map[string]obs.Check{}}}

	client := churnapi.NewClient(cfg.PredictAPIURL, churnapi.NewHTTPClient(cfg.PredictAPIHeaderTimeout), logger)
	workspaces := memory.NewWorkspaceStore(cfg.Scale)

	sessions, err := app.sessionStore(ctx, cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	predictions := &prediction.Service{API: client, Logger: logger, Timeout: cfg.PredictAPITimeout}
	if cfg.AuditEnabled() {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, "churnportal")
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
		predictions.Audit = kafka.NewAuditPublisher(producer, cfg.KafkaTopicPrefix)
		logger.Info("prediction audit enabled", "brokers", cfg.KafkaBrokers)
	}

	reportService := &reports.Service{Exporter: spreadsheet.Exporter{}, Logger: logger}
	if cfg.ReportsEnabled() {
		archive, err := s3.NewReportArchive(s3.Options{
			Endpoint:      cfg.ReportsS3Endpoint,
			UseSSL:        cfg.ReportsS3UseSSL,
			AccessKey:     cfg.ReportsS3AccessKey,
			SecretKey:     cfg.ReportsS3SecretKey,
			Bucket:        cfg.ReportsS3Bucket,
			PublicBaseURL: cfg.ReportsS3PublicURL,
			LinkTTL:       cfg.ReportsS3LinkTTL,
			Logger:        logger,
		})
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("report archive: %w", err)
		}
		reportService.Archive = archive
		app.health.Checks["reports"] = archive.Ping
		logger.Info("report archive enabled", "bucket", cfg.ReportsS3Bucket)
	}

	authService := &authsvc.Service{API: client, Sessions: sessions, Workspaces: workspaces, Logger: logger}
	pages, err := ginserver.NewPagesHandler()
	if err != nil {
		app.close(logger)
		return nil, err
	}

	app.handlers = ginserver.Handlers{
		Pages: pages,
		Auth: ginserver.AuthHandler{
			Service:      authService,
			Tokens:       security.RandomTokenGenerator{},
			SecureCookie: cfg.SessionCookieSecure,
			Logger:       logger,
		},
		Dashboard: ginserver.DashboardHandler{
			Predictions: predictions,
			Workspaces:  workspaces,
			Logger:      logger,
		},
		Department: ginserver.DepartmentHandler{
			Predictions: predictions,
			Reports:     reportService,
			Workspaces:  workspaces,
			Logger:      logger,
		},
		FormsAPI: ginserver.FormsAPIHandler{Workspaces: workspaces, Logger: logger},
		Session: ginserver.BrowserSession{
			Auth:         authService,
			Tokens:       security.RandomTokenGenerator{},
			SecureCookie: cfg.SessionCookieSecure,
			Logger:       logger,
		}.Handle,
	}
	return app, nil
}

func (a *application) sessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (domainauth.SessionStore, error) {
	if cfg.SessionStore != config.SessionStoreMongo {
		return memory.NewSessionStore(), nil
	}
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	store, err := mongostore.NewSessionStore(ctx, client.DB)
	if err != nil {
		return nil, fmt.Errorf("mongo session store: %w", err)
	}
	a.health.Checks["mongo"] = client.Ping
	logger.Info("sessions stored in mongo", "database", cfg.MongoDB)
	return store, nil
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}
	a.closers = nil
}
