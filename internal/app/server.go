package app

import (
	"net/http"

	"github.com/Eursukkul/registration-engine/internal/handler"
	"github.com/Eursukkul/registration-engine/internal/middleware"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewServer builds the HTTP surface: health, metrics and the /api/v1 routes.
func (a *App) NewServer(log *zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Use(echoMw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "registration-engine"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	handler.NewRegistrationHandler(a.Registration, a.Payment).RegisterRoutes(api)
	handler.NewPaymentHandler(a.Payment, a.Verification, a.Reconciliation).RegisterRoutes(api)
	return e
}
