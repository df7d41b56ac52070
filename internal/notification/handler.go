package notification

import (
	"context"
	"errors"
	"net/http"

	"FoodExpiryTracker/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler exposes manual triggers and scheduler status over HTTP.
type Handler struct {
	service   *Service
	scheduler *Scheduler
	logger    *zap.Logger
}

func NewHandler(service *Service, scheduler *Scheduler, logger *zap.Logger) *Handler {
	return &Handler{service: service, scheduler: scheduler, logger: logger}
}

// RunDailyExpiryCheck runs a pass and answers once it has finished. The pass is
// detached from the request so a client disconnect cannot cut it short.
func (h *Handler) RunDailyExpiryCheck(c echo.Context) error {
	report, err := h.scheduler.RunNow(context.WithoutCancel(c.Request().Context()))
	if err != nil {
		if errors.Is(err, ErrPassInProgress) {
			return c.JSON(http.StatusConflict, apperr.ErrorResponse{Error: "Expiry check already running"})
		}
		h.logger.Error("manual expiry check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, apperr.ErrorResponse{Error: "Failed to run expiry check"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Expiry check executed manually",
		"report":  report,
	})
}

func (h *Handler) SendEmail(c echo.Context) error {
	var req SendEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperr.ErrorResponse{Error: "invalid request"})
	}
	if err := h.service.SendAdHoc(c.Request().Context(), req); err != nil {
		status, body := apperr.Response(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("ad-hoc expiry alert failed", zap.String("recipient", req.Email), zap.Error(err))
		}
		return c.JSON(status, body)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Email sent successfully"})
}

// ScheduleRun registers a one-shot pass.
func (h *Handler) ScheduleRun(c echo.Context) error {
	var req RunAtRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperr.ErrorResponse{Error: "run_at must be an RFC 3339 timestamp"})
	}
	if err := h.scheduler.RunAt(req.RunAt); err != nil {
		if errors.Is(err, ErrSchedulerStopped) {
			return c.JSON(http.StatusServiceUnavailable, apperr.ErrorResponse{Error: err.Error()})
		}
		status, body := apperr.Response(err)
		return c.JSON(status, body)
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{"message": "Expiry check scheduled", "run_at": req.RunAt})
}

func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.Status())
}
