package traccar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Register(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/devices", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Luna", body["name"])
		assert.Equal(t, "COLLAR-1", body["uniqueId"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"name":"Luna","uniqueId":"COLLAR-1"}`))
	}))
	defer srv.Close()

	c := mustNew(t, Config{BaseURL: srv.URL, Token: "secret"}, logger.NewTest(t))
	ref, err := c.Register(context.Background(), tracking.Device{Name: "Luna", UniqueID: "COLLAR-1"})

	require.NoError(t, err)
	assert.Equal(t, "42", ref)
}

func TestClient_RegisterFailureIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate uniqueId", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := mustNew(t, Config{BaseURL: srv.URL}, logger.NewNop())
	_, err := c.Register(context.Background(), tracking.Device{Name: "Luna", UniqueID: "COLLAR-1"})

	assert.ErrorIs(t, err, apperr.ErrDependency)
}

func TestClient_Update(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/devices/42", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := mustNew(t, Config{BaseURL: srv.URL}, logger.NewNop())
	require.NoError(t, c.Update(context.Background(), "42", tracking.Device{Name: "Luna", UniqueID: "COLLAR-2"}))
	assert.EqualValues(t, 42, got["id"])
	assert.Equal(t, "COLLAR-2", got["uniqueId"])
}

func TestClient_LatestPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/positions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("deviceId") == "7" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"deviceId":42,"latitude":14.5,"longitude":121.0,"speed":0,"fixTime":"2026-05-01T10:00:00Z"},
			{"deviceId":42,"latitude":14.6,"longitude":121.1,"speed":1.5,"fixTime":"2026-05-01T11:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c := mustNew(t, Config{BaseURL: srv.URL}, logger.NewNop())

	p, err := c.LatestPosition(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", p.DeviceRef)
	assert.Equal(t, 14.6, p.Latitude)
	assert.True(t, p.FixTime.Equal(time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)))

	_, err = c.LatestPosition(context.Background(), "7")
	assert.True(t, errors.Is(err, tracking.ErrNoPosition))
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, logger.NewNop())
	assert.Error(t, err)
}

func mustNew(t *testing.T, cfg Config, log logger.Logger) *Client {
	t.Helper()
	c, err := New(cfg, log)
	require.NoError(t, err)
	return c
}
