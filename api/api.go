package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/marktlinn/kvstore/store"
)

const shutdownTimeout = 5 * time.Second

// ApiErrorResponse is the body of every failed request.
type ApiErrorResponse struct {
	Error string `json:"error"`
}

// The Api wraps a Store and exposes it over HTTP as JSON.
type Api struct {
	Address string
	Port    int
	Router  *echo.Echo
	Store   store.Store
	Logger  logrus.FieldLogger
}

// initRouter initialises the Api Router setting up middleware and routes in the process.
func (a *Api) initRouter() {
	if a.Logger == nil {
		a.Logger = logrus.StandardLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.Logger.WithFields(logrus.Fields{
				"request_id": v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency,
			}).Info("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/", a.IndexHandler)
	e.GET("/api/health", a.HealthHandler)
	e.POST("/api/store", a.StoreHandler)
	e.GET("/api/retrieve/:key", a.RetrieveHandler)
	e.GET("/api/all", a.GetAllHandler)
	e.DELETE("/api/delete/:key", a.DeleteHandler)

	a.Router = e
}

// Start serves the Api until ctx is cancelled, then shuts the server down gracefully.
func (a *Api) Start(ctx context.Context) error {
	a.initRouter()
	addr := net.JoinHostPort(a.Address, strconv.Itoa(a.Port))

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Infof("HTTP server listening on %s", addr)
		errCh <- a.Router.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Logger.Info("shutting down HTTP server")
	if err := a.Router.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
