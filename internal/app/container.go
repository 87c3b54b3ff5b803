package app

import (
	"context"
	"fmt"

	"github.com/kapu/sdg-pulse/internal/config"
	"github.com/kapu/sdg-pulse/internal/service/ai"
	"github.com/kapu/sdg-pulse/internal/service/cache"
	"github.com/kapu/sdg-pulse/internal/service/classifier"
	"github.com/kapu/sdg-pulse/internal/service/database"
	"github.com/kapu/sdg-pulse/internal/service/generator"
	"github.com/kapu/sdg-pulse/internal/service/responder"
	"github.com/kapu/sdg-pulse/internal/service/trends"
	"go.uber.org/zap"
)

// Needs selects which infrastructure a command builds.
type Needs struct {
	LLM      bool
	Postgres bool
	// Cache connects Redis even without an LLM client. Unlike the LLM
	// path, a connection failure is then an error.
	Cache bool
}

// Container holds the services of one pipeline run. Close releases them in
// reverse construction order.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Client    *ai.Client
	Cache     *cache.CacheService
	Postgres  *database.PostgresService
	Responses *database.ResponseRepository

	closers []func()
}

// Build assembles the services a command asked for. Missing credentials for a
// requested piece are a configuration error.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, needs Needs) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if needs.LLM {
		if err := cfg.ValidateCredentials(); err != nil {
			return nil, err
		}
		if err := c.buildClient(ctx); err != nil {
			return nil, err
		}
	}

	if needs.Cache && c.Cache == nil {
		if err := c.buildCache(); err != nil {
			return nil, err
		}
	}

	if needs.Postgres {
		postgresSvc, err := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		c.closers = append(c.closers, func() {
			_ = postgresSvc.Close()
		})
		c.Postgres = postgresSvc
		c.Responses = database.NewResponseRepository(postgresSvc, logger)
	}

	return c, nil
}

func (c *Container) buildClient(ctx context.Context) error {
	cfg, logger := c.Config, c.Logger

	registry, err := ai.LoadRegistry(cfg.Models.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load model registry: %w", err)
	}

	clientCfg := ai.ClientConfig{
		Timeout: cfg.OpenRouter.Timeout,
		Primary: ai.NewOpenRouterProvider(ai.OpenRouterConfig{
			APIKey:  cfg.OpenRouter.APIKey,
			BaseURL: cfg.OpenRouter.BaseURL,
			Referer: cfg.OpenRouter.Referer,
			Title:   cfg.OpenRouter.Title,
			Timeout: cfg.OpenRouter.Timeout,
		}, logger),
	}

	if cfg.Gemini.EnableFallback && cfg.Gemini.APIKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			logger.Warn("Gemini fallback disabled", zap.Error(err))
		} else {
			clientCfg.Fallback = gemini
		}
	}

	if cfg.Redis.Enabled {
		if err := c.buildCache(); err != nil {
			// the cache only saves cost; runs proceed without it
			logger.Warn("Completion cache unavailable", zap.Error(err))
		} else {
			clientCfg.Cache = c.Cache
		}
	}

	client, err := ai.NewClient(registry, clientCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}
	c.closers = append(c.closers, client.Close)
	c.Client = client
	return nil
}

func (c *Container) buildCache() error {
	cfg := c.Config.Redis
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	}, c.Logger)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, func() {
		_ = cacheSvc.Close()
	})
	c.Cache = cacheSvc
	return nil
}

func (c *Container) SDGClassifier() *classifier.SDGClassifier {
	return classifier.NewSDGClassifier(c.Client, c.Logger)
}

func (c *Container) EmotionDetector() *classifier.EmotionDetector {
	return classifier.NewEmotionDetector(c.Client, c.Logger)
}

func (c *Container) PostGenerator() *generator.PostGenerator {
	return generator.NewPostGenerator(c.Client, c.Config.Generation.PostsPerTrend, c.Logger)
}

// Responder returns a responder; without a client it can only run in template mode.
func (c *Container) Responder() *responder.Responder {
	if c.Client == nil {
		return responder.NewResponder(nil, c.Logger)
	}
	return responder.NewResponder(c.Client, c.Logger)
}

func (c *Container) Scraper() *trends.Scraper {
	return trends.NewScraper(c.Config.Scraper.Selector, c.Config.Scraper.Timeout, c.Logger)
}

// Close releases everything Build opened. It is safe to call more than once.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
