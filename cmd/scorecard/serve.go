package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Scorecard/internal/api"
	"github.com/MikeSquared-Agency/Scorecard/internal/broker"
	"github.com/MikeSquared-Agency/Scorecard/internal/config"
	"github.com/MikeSquared-Agency/Scorecard/internal/hermes"
	"github.com/MikeSquared-Agency/Scorecard/internal/metrics"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, metrics server and score-request worker.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		slog.SetDefault(logger)
		return serve(cmd.Context(), cfg, logger)
	},
}

func openStore(ctx context.Context, db config.DatabaseConfig) (store.Store, error) {
	switch db.Driver {
	case "postgres":
		return store.NewPostgresStore(ctx, db.URL)
	case "sqlite", "mysql":
		return store.NewSQLStore(ctx, db.Driver, db.URL)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", db.Driver)
	}
}

// seedDefaultProfile stores the configured default profile under its file
// name unless a profile with that name exists.
func seedDefaultProfile(ctx context.Context, s store.Store, path string, cats profile.Catalogues, logger *slog.Logger) error {
	p, err := profile.LoadFile(path, cats)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	existing, err := s.GetProfileByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	sp := &store.StoredProfile{Name: name, Notes: "loaded from " + path, Description: p.Description()}
	if err := s.CreateProfile(ctx, sp); err != nil && !errors.Is(err, store.ErrNameTaken) {
		return err
	}
	logger.Info("default profile stored", "name", name, "profile_id", sp.ID)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy, err := scoring.ParseMissingPolicy(cfg.Scoring.MissingObjectivePolicy)
	if err != nil {
		return err
	}

	// Database
	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer db.Close()
	logger.Info("profile store ready", "driver", cfg.Database.Driver)

	cats := profile.DefaultCatalogues()
	if cfg.Scoring.DefaultProfile != "" {
		if err := seedDefaultProfile(ctx, db, cfg.Scoring.DefaultProfile, cats, logger); err != nil {
			return fmt.Errorf("default profile: %w", err)
		}
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Broker
	scorers := broker.NewScorers(db, cats, cfg.Broker.ProfileCacheSize,
		scoring.WithMissingPolicy(policy),
		scoring.WithLogger(logger),
		scoring.WithRecorder(m),
	)
	b := broker.New(hermesClient, scorers, cfg, logger)
	if cfg.Broker.Enabled && hermesClient != nil {
		if err := b.Start(ctx); err != nil {
			return fmt.Errorf("start broker: %w", err)
		}
		defer b.Stop()
	}

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(db, hermesClient, b, cats, m, cfg.Server, logger),
	}
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(reg),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []struct {
		name string
		s    *http.Server
	}{{"API", apiServer}, {"metrics", metricsServer}} {
		g.Go(func() error {
			logger.Info(srv.name+" server starting", "addr", srv.s.Addr)
			if err := srv.s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", srv.name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}
