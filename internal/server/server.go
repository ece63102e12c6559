package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/aitwy/aitwy-server/internal/config"
	"github.com/aitwy/aitwy-server/internal/repo/ratelimit"
	pkgmdw "github.com/aitwy/aitwy-server/internal/server/middleware"
	"github.com/aitwy/aitwy-server/internal/usecase"
	"github.com/aitwy/aitwy-server/pkg/logger"
)

// NewEcho builds the HTTP router with the middleware chain and every route
// registered. It does not listen.
func NewEcho(
	conf *config.Config,
	handler Controller,
	authCtrl AuthController,
	authUsecase usecase.AuthUseCase,
	limiter ratelimit.Limiter,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(pkgmdw.ErrorHandlerConfig{
		Logger:       logger.MustNamed("http"),
		ExposeErrors: conf.Server.ExposeErrors,
	})

	logConfig := pkgmdw.LogRequestConfig{
		Logger: logger.MustNamed("http"),
		Skipper: func(c echo.Context) bool {
			path := c.Path()
			return path == "/health" || path == "/metrics"
		},
	}

	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.CORS(pkgmdw.OriginPattern(conf.Server.CORSOrigins...)))
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))
	e.Use(middleware.BodyLimit("1M"))

	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if conf.Server.PprofEnabled {
		pkgmdw.PprofWrap(e)
	}

	requireAuth := pkgmdw.JWTAuth(authUsecase)

	auth := e.Group("/api/auth")
	auth.POST("/signup", pkgmdw.WrapHandler(authCtrl.Signup), pkgmdw.RateLimit(limiter, "signup"))
	auth.POST("/login", pkgmdw.WrapHandler(authCtrl.Login), pkgmdw.RateLimit(limiter, "login"))
	auth.GET("/me", pkgmdw.WrapHandler(authCtrl.Me), requireAuth)
	auth.POST("/logout", pkgmdw.WrapHandler(authCtrl.Logout), requireAuth)
	auth.GET("/verify-email/:token", pkgmdw.WrapHandler(authCtrl.VerifyEmail))
	auth.POST("/resend-verification", pkgmdw.WrapHandler(authCtrl.ResendVerification), pkgmdw.RateLimit(limiter, "resend"))

	return e
}

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	e *echo.Echo,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				addr := conf.Server.Addr()
				logger.Infow(context.Background(), "starting HTTP server", "addr", addr)
				if err := e.Start(addr); !errors.Is(err, http.ErrServerClosed) {
					logger.Errorw(context.Background(), "HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
