package pkg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "up", want: http.StatusOK},
		{name: "down", err: assert.AnError, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/api/health", healthCheck(stubPinger{err: tt.err}))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
