package api

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/marktlinn/kvstore/record"
	"github.com/marktlinn/kvstore/store"
)

//go:embed index.html
var indexHTML []byte

const (
	msgStored      = "Value stored successfully"
	msgDeleted     = "Key deleted successfully"
	errMissing     = "Both key and value are required"
	errKeyNotFound = "Key not found"
)

// StoreResponse acknowledges a successful store.
type StoreResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

// MessageResponse carries a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports whether the backing store answers.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}

// IndexHandler serves the browser UI.
func (a *Api) IndexHandler(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

// HealthHandler pings the Store and reports healthy or unhealthy.
func (a *Api) HealthHandler(c echo.Context) error {
	if err := a.Store.Ping(c.Request().Context()); err != nil {
		a.Logger.Errorf("health check failed: %s", err)
		return c.JSON(http.StatusInternalServerError, HealthResponse{
			Status: "unhealthy",
			Error:  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

// StoreHandler decodes a JSON {key, value} body and upserts it into the Store.
func (a *Api) StoreHandler(c echo.Context) error {
	req := record.StoreRequest{}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		a.Logger.Debugf("failed to decode store request: %s", err)
		return c.JSON(http.StatusBadRequest, ApiErrorResponse{Error: "Invalid JSON body: " + err.Error()})
	}
	if !req.Valid() {
		return c.JSON(http.StatusBadRequest, ApiErrorResponse{Error: errMissing})
	}

	if err := a.Store.Put(c.Request().Context(), *req.Key, *req.Value); err != nil {
		a.Logger.Errorf("failed to store key %q: %s", *req.Key, err)
		return c.JSON(http.StatusInternalServerError, ApiErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, StoreResponse{
		Message: msgStored,
		Key:     *req.Key,
		Value:   *req.Value,
	})
}

// RetrieveHandler returns the full record for the key in the path.
func (a *Api) RetrieveHandler(c echo.Context) error {
	key, err := pathKey(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiErrorResponse{Error: err.Error()})
	}

	rec, err := a.Store.Get(c.Request().Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ApiErrorResponse{Error: errKeyNotFound})
	}
	if err != nil {
		a.Logger.Errorf("failed to retrieve key %q: %s", key, err)
		return c.JSON(http.StatusInternalServerError, ApiErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, rec)
}

// GetAllHandler returns every record, newest first.
func (a *Api) GetAllHandler(c echo.Context) error {
	records, err := a.Store.List(c.Request().Context())
	if err != nil {
		a.Logger.Errorf("failed to list records: %s", err)
		return c.JSON(http.StatusInternalServerError, ApiErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, records)
}

// DeleteHandler removes the record for the key in the path.
func (a *Api) DeleteHandler(c echo.Context) error {
	key, err := pathKey(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiErrorResponse{Error: err.Error()})
	}

	err = a.Store.Delete(c.Request().Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ApiErrorResponse{Error: errKeyNotFound})
	}
	if err != nil {
		a.Logger.Errorf("failed to delete key %q: %s", key, err)
		return c.JSON(http.StatusInternalServerError, ApiErrorResponse{Error: err.Error()})
	}

	a.Logger.Infof("key %q deleted", key)
	return c.JSON(http.StatusOK, MessageResponse{Message: msgDeleted})
}

// pathKey returns the :key path parameter. echo routes on RawPath when the
// URL has one, and the parameter is still escaped only in that case.
func pathKey(c echo.Context) (string, error) {
	key := c.Param("key")
	if c.Request().URL.RawPath == "" {
		return key, nil
	}
	return url.PathUnescape(key)
}
