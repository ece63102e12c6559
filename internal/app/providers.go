package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/aitwy/aitwy-server/internal/config"
	"github.com/aitwy/aitwy-server/internal/repo/events"
	"github.com/aitwy/aitwy-server/internal/repo/mailer"
	"github.com/aitwy/aitwy-server/internal/repo/mongodb"
	"github.com/aitwy/aitwy-server/internal/repo/ratelimit"
	"github.com/aitwy/aitwy-server/internal/server"
	"github.com/aitwy/aitwy-server/pkg/logger"
)

const connectTimeout = 10 * time.Second

func newMongoDB(lc fx.Lifecycle, cfg *config.Config) (*mongodb.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	db, err := mongodb.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init mongo client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Ping(ctx); err != nil {
				return err
			}
			logger.Infow(ctx, "connected to MongoDB", "db_name", cfg.Database.Name)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})

	return db, nil
}

func newPinger(db *mongodb.DB) server.Pinger {
	return db
}

func newMailSender(cfg *config.Config) (mailer.Sender, error) {
	if !cfg.Email.HasCredentials() {
		logger.MustNamed("app").Warnw("email credentials not set, mail will be logged instead of sent")
	}
	return mailer.NewSender(cfg)
}

// newRateLimiter uses Redis when REDIS_ADDR is set and lets every request
// through otherwise.
func newRateLimiter(lc fx.Lifecycle, cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.Redis.Addr == "" {
		return ratelimit.Noop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	limiter, err := ratelimit.NewFixedWindowLimiter(client, "", cfg.RateLimit.Limit, cfg.RateLimit.Window)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("init rate limiter: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warnw(ctx, "redis unreachable, rate limiting degraded", "addr", cfg.Redis.Addr, "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return limiter, nil
}

func newEventPublisher(lc fx.Lifecycle, cfg *config.Config) (events.Publisher, error) {
	publisher, err := events.NewPublisher(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("init event publisher: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}
