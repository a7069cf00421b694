package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizdesk/internal/app"
	"quizdesk/internal/config"
	"quizdesk/internal/infra/file"
	"quizdesk/internal/infra/memory"
	pgstore "quizdesk/internal/infra/postgres"
	redisstore "quizdesk/internal/infra/redis"
	"quizdesk/internal/logger"
)

// runtime is everything a command needs after startup. close releases the
// pool and the Redis client.
type runtime struct {
	cfg      config.Config
	log      *zap.Logger
	services app.Services
	close    func()
}

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

// openRuntime builds the stores named by the config, seeds the root/demo
// accounts and the default question bank, and wires the services.
func openRuntime(ctx context.Context, path string) (*runtime, error) {
	cfg, log, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	services, closeFn, err := buildServices(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &runtime{
		cfg:      cfg,
		log:      log,
		services: services,
		close: func() {
			closeFn()
			_ = log.Sync()
		},
	}, nil
}

func buildServices(ctx context.Context, cfg config.Config, log *zap.Logger) (app.Services, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			closeAll()
			return app.Services{}, nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			closeAll()
			return app.Services{}, nil, err
		}
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			closeAll()
			return app.Services{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
	}

	users, questions, scores, err := openStores(cfg, log)
	if err != nil {
		closeAll()
		return app.Services{}, nil, err
	}
	if pool != nil {
		backing := pgstore.NewQuestionRepository(pool)
		if redisClient != nil {
			questions = redisstore.NewCategoryCache(redisClient, backing, config.Duration(cfg.Redis.TTL, 10*time.Minute), log)
		} else {
			questions = memory.NewCategoryCache(backing, config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute))
		}
	}
	if redisClient != nil {
		scores = redisstore.NewScoreRepository(redisClient, "", log)
	}

	hasher, err := app.NewHasher(cfg.Auth.Hasher, cfg.Auth.BcryptCost)
	if err != nil {
		closeAll()
		return app.Services{}, nil, err
	}
	auth := app.NewAuthService(users, hasher, seedFromConfig(cfg), log)
	if err := auth.Bootstrap(ctx); err != nil {
		closeAll()
		return app.Services{}, nil, err
	}
	bank := app.NewQuestionBank(questions, log)
	if err := bank.EnsureSeeded(ctx); err != nil {
		closeAll()
		return app.Services{}, nil, err
	}

	return app.Services{
		Auth:   auth,
		Bank:   bank,
		Engine: app.NewEngine(bank, log),
		Ledger: app.NewScoreLedger(scores, log),
		Log:    log,
	}, closeAll, nil
}

func openStores(cfg config.Config, log *zap.Logger) (app.UserRepository, app.QuestionRepository, app.ScoreRepository, error) {
	switch cfg.Storage.Backend {
	case "", config.BackendFile:
		return file.OpenUserRepository(cfg.UsersPath(), log),
			file.OpenQuestionRepository(cfg.QuestionsPath(), log),
			file.OpenScoreRepository(cfg.ScoresPath(), log),
			nil
	case config.BackendMemory:
		return memory.NewUserRepository(), memory.NewQuestionRepository(), memory.NewScoreRepository(), nil
	}
	return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func seedFromConfig(cfg config.Config) app.Seed {
	seed := app.DefaultSeed()
	if cfg.Auth.RootUsername != "" {
		seed.RootUsername = cfg.Auth.RootUsername
	}
	if cfg.Auth.RootPassword != "" {
		seed.RootPassword = cfg.Auth.RootPassword
	}
	if cfg.Auth.DemoUsername != "" {
		seed.DemoUsername = cfg.Auth.DemoUsername
	}
	if cfg.Auth.DemoPassword != "" {
		seed.DemoPassword = cfg.Auth.DemoPassword
	}
	return seed
}
