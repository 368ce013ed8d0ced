// Smoke-check binary: builds an engine from the environment config,
// indexes a few sample profiles and runs a match. Useful for verifying
// provider credentials, cache connectivity and budget settings without
// touching production data.
//
//	ENV=local go run ./cmd/matchengine/
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	matchengine "github.com/talentgrid/matchengine"
	"github.com/talentgrid/matchengine/internal/config"
	logpkg "github.com/talentgrid/matchengine/internal/logger"
	"github.com/talentgrid/matchengine/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting matchengine smoke check",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("provider", cfg.Embedding.Provider),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	eng, err := matchengine.New(buildOptions(cfg, logger)...)
	if err != nil {
		logger.Fatal("Failed to create engine", zap.Error(err))
	}
	defer eng.Close()

	if err := smokeCheck(eng, logger); err != nil {
		logger.Fatal("Smoke check failed", zap.Error(err))
	}

	logger.Info("Smoke check passed")
}

// buildOptions maps the file config onto engine options.
func buildOptions(cfg config.Config, logger *zap.Logger) []matchengine.Option {
	opts := []matchengine.Option{
		matchengine.WithDimension(cfg.Index.Dimension),
		matchengine.WithMaxBatchSize(cfg.Index.MaxBatchSize),
		matchengine.WithLogger(logger),
	}

	if cfg.Embedding.Provider == "openai" {
		opts = append(opts, matchengine.WithOpenAI(matchengine.OpenAIConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}))
	}

	if cfg.Embedding.ProfileInstruction != "" {
		opts = append(opts, matchengine.WithInstruction(cfg.Embedding.ProfileInstruction))
	}

	budget := cfg.Embedding.Budget
	if budget.DailyTokenLimit > 0 || budget.MonthlyTokenLimit > 0 {
		opts = append(opts, matchengine.WithBudget(matchengine.BudgetConfig{
			DailyTokenLimit:   budget.DailyTokenLimit,
			MonthlyTokenLimit: budget.MonthlyTokenLimit,
			Reject:            budget.Action == "reject",
		}))
	}

	if cfg.Cache.Enabled {
		opts = append(opts, matchengine.WithRedisCache(cfg.Cache.Addrs[0], cfg.Cache.Password))
	}

	return opts
}

func smokeCheck(eng *matchengine.Engine, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	profiles := []matchengine.ProfileItem{
		{ID: "smoke-1", Text: "senior go engineer, distributed systems",
			Metadata: matchengine.Metadata{"city": "Mumbai"}},
		{ID: "smoke-2", Text: "frontend developer, react and typescript",
			Metadata: matchengine.Metadata{"city": "Delhi"}},
	}

	results, err := eng.BatchUpsertProfiles(ctx, profiles)
	if err != nil {
		return fmt.Errorf("upsert profiles: %w", err)
	}
	for _, r := range results {
		if !r.OK {
			return fmt.Errorf("index %s: %w", r.ID, r.Err)
		}
	}

	matches, err := eng.MatchToRole(ctx, "backend engineer", []string{"go"}, 2)
	if err != nil {
		return fmt.Errorf("match to role: %w", err)
	}
	if len(matches) != len(profiles) {
		return fmt.Errorf("expected %d matches, got %d", len(profiles), len(matches))
	}

	for _, m := range matches {
		logger.Info("Match",
			zap.String("id", m.ID),
			zap.Float64("score", m.Score),
			zap.Any("city", m.Metadata["city"]),
		)
	}

	st, err := eng.Stats()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	logger.Info("Index stats",
		zap.Int("count", st.Count),
		zap.Int("dimension", st.Dimension),
		zap.Int64("memory_bytes", st.MemoryBytes),
	)

	return nil
}
