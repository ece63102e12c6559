package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/aitwy/aitwy-server/internal/config"
	"github.com/aitwy/aitwy-server/internal/repo/mailer"
	"github.com/aitwy/aitwy-server/internal/repo/mongodb"
	"github.com/aitwy/aitwy-server/internal/server"
	"github.com/aitwy/aitwy-server/internal/usecase"
	"github.com/aitwy/aitwy-server/pkg/logger"
)

// Invoke loads configuration from the environment and builds the application
// graph. funcs are invoked after every provider is available.
func Invoke(funcs ...any) *fx.App {
	conf := config.MustLoad()
	return New(conf, funcs...)
}

func New(conf *config.Config, funcs ...any) *fx.App {
	if err := logger.Init(conf.Log); err != nil {
		panic(err)
	}
	log := logger.MustNamed("app")
	log.Debugw("config loaded",
		"server_addr", conf.Server.Addr(),
		"db_name", conf.Database.Name,
		"email_service", conf.Email.Service,
		"redis_enabled", conf.Redis.Addr != "",
		"kafka_enabled", len(conf.Kafka.Brokers) > 0,
	)

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Supply(conf),
		fx.Provide(
			newMongoDB,
			newMailSender,
			newRateLimiter,
			newEventPublisher,

			mongodb.NewUserRepository,
			mailer.New,

			usecase.NewTokenIssuer,
			usecase.NewAuthUseCase,

			newPinger,
			server.NewHandler,
			server.NewAuthController,
			server.NewEcho,
		),
		fx.Invoke(EnsureIndexes),
		fx.Invoke(funcs...),
	)
}

// EnsureIndexes creates the account indexes on startup.
func EnsureIndexes(lc fx.Lifecycle, users mongodb.UserRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return users.EnsureIndexes(ctx)
		},
	})
}
