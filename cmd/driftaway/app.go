// cmd/driftaway/app.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"driftaway/internal/cache"
	"driftaway/internal/chat"
	"driftaway/internal/common/config"
	"driftaway/internal/common/database"
	"driftaway/internal/common/logger"
	"driftaway/internal/common/observability"
	"driftaway/internal/model"
	"driftaway/internal/orchestrator"
	"driftaway/internal/pipeline"
	"driftaway/internal/providers"
	"driftaway/internal/repair"
	"driftaway/internal/trip"
)

// app holds every wired component and the cleanups to run on exit.
type app struct {
	cfg          *config.Config
	zap          *zap.Logger
	log          logger.Logger
	obs          *observability.Observability
	redis        *database.RedisClient
	orchestrator *orchestrator.Orchestrator
	chat         *chat.Service
	closers      []func()
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// newApp wires the planner. A non-empty tripFile replaces the Firestore
// store with trips read from disk.
func newApp(ctx context.Context, tripFile string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	a := &app{cfg: cfg, zap: zapLog, log: logger.NewZapAdapter(zapLog)}
	a.closers = append(a.closers, func() { _ = zapLog.Sync() })

	obs, err := observability.New(cfg.Observability.ServiceName)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("observability init failed: %w", err)
	}
	a.obs = obs
	a.closers = append(a.closers, obs.Shutdown)

	store, err := a.tripStore(ctx, tripFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Cache.Backend == "redis" {
		rdb := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			_ = rdb.Close()
			a.Close()
			return nil, err
		}
		a.redis = rdb
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		zapLog.Info("Redis connected successfully")
	}

	responses, err := cache.New(cfg.Cache, a.redis)
	if err != nil {
		a.Close()
		return nil, err
	}

	gen := a.generator(ctx)
	rep := repair.NewClient(&repair.Config{
		URL:     cfg.APIs.Repair.URL,
		Timeout: config.GetDuration(cfg.APIs.Repair.Timeout),
	})
	engine := pipeline.NewEngine(gen, rep, a.log)

	a.orchestrator = orchestrator.New(store, providers.All(engine), responses, orchestrator.Config{
		MaxConcurrency:  cfg.Orchestrator.MaxConcurrency,
		ProviderTimeout: config.GetDuration(cfg.Orchestrator.ProviderTimeout),
		CacheTTL:        cfg.Cache.CacheTTL(),
	}, a.log, orchestrator.WithTracer(obs.Tracer()), orchestrator.WithRecorder(obs))

	a.chat = chat.NewService(a.orchestrator, gen, chat.Config{
		MaxHistory: cfg.Chat.MaxHistory,
		Timeout:    config.GetDuration(cfg.Chat.Timeout),
	}, a.log)

	return a, nil
}

func (a *app) tripStore(ctx context.Context, tripFile string) (trip.Store, error) {
	if tripFile != "" {
		data, err := os.ReadFile(tripFile)
		if err != nil {
			return nil, fmt.Errorf("read trip file: %w", err)
		}
		a.zap.Info("Using trips from file", zap.String("path", tripFile))
		return trip.LoadMemoryStore(data)
	}

	var client interface{ Close() error }
	var store trip.Store
	err := retryWithBackoff(func() error {
		fs, err := database.NewFirestore(ctx, a.cfg.Firestore)
		if err != nil {
			return err
		}
		client = fs
		store = trip.NewFirestoreStore(fs, a.cfg.Firestore.Collection)
		return nil
	}, 3, time.Second, a.zap, "Firestore initialization")
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.zap.Info("Firestore connected successfully", zap.String("collection", a.cfg.Firestore.Collection))
	return store, nil
}

// generator returns nil when no model can be built. Providers then serve
// their fallbacks and chat answers with the canned reply.
func (a *app) generator(ctx context.Context) model.Generator {
	g := a.cfg.APIs.GenAI
	timeout := config.GetDuration(g.Timeout)

	if g.Backend == "http" {
		return model.NewHTTPGenerator(&model.HTTPConfig{
			BaseURL:     g.BaseURL,
			APIKey:      g.APIKey,
			MaxTokens:   g.MaxTokens,
			Temperature: g.Temperature,
			Timeout:     timeout,
		})
	}

	gem, err := model.NewGemini(ctx, model.GeminiConfig{
		APIKey:      g.APIKey,
		Model:       g.Model,
		Temperature: g.Temperature,
		MaxTokens:   g.MaxTokens,
		Timeout:     timeout,
	})
	if err != nil {
		a.zap.Warn("Gemini unavailable, providers will serve fallbacks", zap.Error(err))
		return nil
	}
	a.closers = append(a.closers, func() { _ = gem.Close() })
	return gem
}

// ready pings the dependencies the planner needs per request.
func (a *app) ready(ctx context.Context) error {
	if a.redis != nil {
		return a.redis.Ping(ctx)
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
