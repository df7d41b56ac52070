package auth

import (
	"net/http"

	"FoodExpiryTracker/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service *UserService
	logger  *zap.Logger
}

func NewAuthHandler(service *UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperr.ErrorResponse{Error: "invalid request"})
	}

	user, err := h.service.RegisterUser(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    ProfileResponse{ID: user.ID.Hex(), Name: user.DisplayName(), Email: user.Email},
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := c.Bind(&cred); err != nil {
		return c.JSON(http.StatusBadRequest, apperr.ErrorResponse{Error: "invalid request"})
	}

	token, err := h.service.AuthenticateUser(c.Request().Context(), cred)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, apperr.ErrorResponse{Error: "invalid or missing token"})
	}
	ownerID, err := claims.OwnerID()
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apperr.ErrorResponse{Error: "invalid or missing token"})
	}

	user, err := h.service.Profile(c.Request().Context(), ownerID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ProfileResponse{ID: user.ID.Hex(), Name: user.DisplayName(), Email: user.Email})
}

func (h *AuthHandler) fail(c echo.Context, err error) error {
	status, body := apperr.Response(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("auth request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(status, body)
}
