package rest

import (
	"bytes"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibhoossain/whatsapp-bulk-sender/pkg/utils"
)

type staticQR string

func (q staticQR) LatestQR() (string, bool) { return string(q), q != "" }

func newAppOnly(ready bool, qr QRSource, registry *prometheus.Registry) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	InitRestApp(app, stubMessenger{ready: ready}, qr, registry)
	return app
}

func TestApp_Status(t *testing.T) {
	app := newAppOnly(true, nil, prometheus.NewRegistry())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/app/status", nil))
	require.NoError(t, err)

	var out utils.ResponseData
	decode(t, resp, &out)
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, map[string]any{"state": "CONNECTED", "ready": true}, out.Results)
}

func TestApp_QRCode(t *testing.T) {
	t.Run("NoPairing", func(t *testing.T) {
		app := newAppOnly(false, staticQR(""), prometheus.NewRegistry())

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/app/qr", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var out utils.ResponseData
		decode(t, resp, &out)
		assert.Equal(t, "NOT_FOUND", out.Code)
	})

	t.Run("Pairing", func(t *testing.T) {
		app := newAppOnly(false, staticQR("2@abc,def,ghi"), prometheus.NewRegistry())

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/app/qr", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		img, err := png.Decode(bytes.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, qrSize, img.Bounds().Dx())
	})
}

func TestApp_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "bulk_test_total", Help: "test counter"})
	registry.MustRegister(counter)
	counter.Add(3)

	app := newAppOnly(true, nil, registry)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(body), "bulk_test_total 3")
}
