package food

import (
	"net/http"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/auth"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the owner-scoped food item endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetAllItems lists the caller's items ordered by expiry.
func (h *Handler) GetAllItems(c echo.Context) error {
	ownerID, err := ownerFrom(c)
	if err != nil {
		return h.fail(c, err)
	}
	items, err := h.service.List(c.Request().Context(), ownerID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetItem(c echo.Context) error {
	ownerID, err := ownerFrom(c)
	if err != nil {
		return h.fail(c, err)
	}
	item, err := h.service.Get(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) AddItem(c echo.Context) error {
	ownerID, err := ownerFrom(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperr.ErrorResponse{Error: "invalid request"})
	}
	item, err := h.service.Create(c.Request().Context(), ownerID, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "Item added successfully", "item": item})
}

func (h *Handler) UpdateItem(c echo.Context) error {
	ownerID, err := ownerFrom(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperr.ErrorResponse{Error: "invalid request"})
	}
	item, err := h.service.Update(c.Request().Context(), ownerID, c.Param("id"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Item updated successfully", "item": item})
}

func (h *Handler) DeleteItem(c echo.Context) error {
	ownerID, err := ownerFrom(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.service.Delete(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

func ownerFrom(c echo.Context) (primitive.ObjectID, error) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return primitive.NilObjectID, apperr.ErrUnauthorized
	}
	ownerID, err := claims.OwnerID()
	if err != nil {
		return primitive.NilObjectID, apperr.ErrUnauthorized
	}
	return ownerID, nil
}

func (h *Handler) fail(c echo.Context, err error) error {
	status, body := apperr.Response(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("food request failed", zap.String("method", c.Request().Method), zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(status, body)
}
