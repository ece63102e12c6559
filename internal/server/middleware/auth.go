package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aitwy/aitwy-server/internal/models"
	"github.com/aitwy/aitwy-server/internal/usecase"
	"github.com/aitwy/aitwy-server/pkg/logger"
)

const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
)

// JWTAuth rejects requests without a valid bearer token and stores the
// account (password excluded) on the echo context.
func JWTAuth(authUsecase usecase.AuthUseCase) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				return NewResponseError(http.StatusUnauthorized, "Not authorized, no token", nil)
			}

			ctx := c.Request().Context()
			user, err := authUsecase.ValidateToken(ctx, strings.TrimSpace(tokenString))
			if err != nil {
				if errors.Is(err, models.ErrUnauthorized) {
					return NewResponseError(http.StatusUnauthorized, "Not authorized, token failed", err)
				}
				return NewResponseError(http.StatusInternalServerError, "Not authorized, token failed", err)
			}

			userID := user.ID.Hex()
			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyUserID, userID)
			logger.AddFields(ctx, "user_id", userID)
			return next(c)
		}
	}
}

func GetUser(c echo.Context) *models.User {
	user, _ := c.Get(ContextKeyUser).(*models.User)
	return user
}

func GetUserID(c echo.Context) string {
	id, _ := c.Get(ContextKeyUserID).(string)
	return id
}
