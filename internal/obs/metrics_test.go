package obs_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/obs"
)

func TestInstrumentAndScrape(t *testing.T) {
	obs.Init()
	obs.Init() // re-registering must not panic

	app := fiber.New()
	app.Use(obs.Instrument())
	app.Get("/ping/:id", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	app.Get("/metrics", obs.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping/42", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), "http_request_duration_seconds")
	// The route pattern, not the concrete URL, is the path label.
	assert.Contains(t, string(body), `path="/ping/:id"`)
}

func TestObserveScan(t *testing.T) {
	obs.Init()

	// Must not panic regardless of registration state or label values.
	obs.ObserveScan("vehicle", true)
	obs.ObserveScan("user", false)
}
