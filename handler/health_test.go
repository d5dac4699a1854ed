package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthDependencies(t *testing.T) {
	ok := func(context.Context) error { return nil }

	h := NewHealthHandler(map[string]HealthCheck{"database": ok, "redis": ok})
	rec := serve(h.Router(), http.MethodGet, "/dependencies", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHealthHandler(map[string]HealthCheck{
		"database": ok,
		"nats":     func(context.Context) error { return errors.New("not connected to NATS") },
	})
	rec = serve(h.Router(), http.MethodGet, "/dependencies", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not connected to NATS")

	rec = serve(h.Router(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPortalHandlerListsRegistry(t *testing.T) {
	rec := serve(NewPortalHandler().Router(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"detik"`)
	assert.Contains(t, rec.Body.String(), `"mode":"browser"`)
}
