package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/config"
	"github.com/yourusername/cb-sentinel/internal/database"
	"github.com/yourusername/cb-sentinel/internal/datasource"
	"github.com/yourusername/cb-sentinel/internal/logger"
	"github.com/yourusername/cb-sentinel/internal/metrics"
	"github.com/yourusername/cb-sentinel/internal/repository"
)

// deps holds the wired collaborators shared by every command
type deps struct {
	cfg        *config.Config
	logger     *logrus.Logger
	httpClient *datasource.RateLimitedHTTPClient
	finmind    *datasource.FinMindClient

	series     datasource.SeriesSource
	universe   datasource.UniverseSource
	equities   datasource.QuoteSource
	bondQuotes datasource.QuoteSource

	db    *database.DB
	repos *repository.Repositories
}

func setupDependencies(ctx context.Context, configPath, envPath string) (*deps, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.LoadDotEnv(envPath); err != nil {
		return nil, err
	}

	cfg, err := loadConfigWithSecrets(ctx, configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	d := &deps{cfg: cfg, logger: log}
	d.httpClient = datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:           cfg.FinMind.Timeout(),
		MaxRetries:        cfg.FinMind.MaxRetries,
		RetryWaitMin:      200 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         cfg.FinMind.RateLimit,
		CircuitBreakerMax: datasource.DefaultHTTPClientConfig().CircuitBreakerMax,
	}, log)
	d.finmind = datasource.NewFinMindClient(d.httpClient, cfg.FinMind.BaseURL, cfg.FinMind.Token, log)

	d.series, d.universe, d.equities, d.bondQuotes = d.finmind, d.finmind, d.finmind, d.finmind.BondQuotes()
	if cfg.Cache.Enabled {
		ttl := cfg.Cache.CacheTTL()
		cached := datasource.NewCachedSource(d.finmind, d.finmind, d.finmind, ttl, log)
		d.series, d.universe, d.equities = cached, cached, cached
		d.bondQuotes = datasource.NewCachedSource(nil, nil, d.finmind.BondQuotes(), ttl, log)
	}

	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		d.db, d.repos = db, repos
		d.universe = datasource.NewStoredUniverse(d.universe, repos.Instrument, log)
	}

	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"database":    cfg.Database.Enabled,
		"cache":       cfg.Cache.Enabled,
	}).Debug("Dependencies ready")
	return d, nil
}

func loadConfigWithSecrets(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Close releases network and database resources
func (d *deps) Close() {
	if d.httpClient != nil {
		_ = d.httpClient.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
