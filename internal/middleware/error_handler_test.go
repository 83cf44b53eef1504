package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "string message",
			err:      echo.NewHTTPError(http.StatusNotFound, "event not found"),
			wantCode: http.StatusNotFound,
			wantBody: `{"message":"event not found"}`,
		},
		{
			name:     "structured body",
			err:      echo.NewHTTPError(http.StatusConflict, map[string]any{"limitReached": true}),
			wantCode: http.StatusConflict,
			wantBody: `{"limitReached":true}`,
		},
		{
			name:     "plain error is hidden",
			err:      errors.New("pq: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"message":"Internal Server Error"}`,
		},
		{
			name:     "internal error is logged, not shown",
			err:      echo.NewHTTPError(http.StatusServiceUnavailable, "registration could not be saved").SetInternal(errors.New("deadlock")),
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"message":"registration could not be saved"}`,
		},
	}

	log := zerolog.Nop()
	handle := ErrorHandler(&log)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handle(tt.err, c)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
