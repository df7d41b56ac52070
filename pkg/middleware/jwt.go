package middleware

import (
	"net/http"
	"strings"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/auth"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JWTMiddleware rejects requests without a valid bearer token and stores the
// token claims under auth.ContextKey.
func JWTMiddleware(tokens *auth.JWTManager, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, apperr.ErrorResponse{Error: "Missing Token"})
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			claims, err := tokens.ValidateJWT(tokenString)
			if err != nil {
				logger.Debug("rejected token", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, apperr.ErrorResponse{Error: "Invalid Token"})
			}
			c.Set(auth.ContextKey, claims)
			return next(c)
		}
	}
}
