package cmd

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalepa/fleetkpi/kpi"
)

func testServer(t *testing.T, dir string) *fiber.App {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	agg := kpi.NewAggregator(kpi.DefaultOptions(dir), log)
	return newServer(agg, 5*time.Second, log)
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServeData_Mock(t *testing.T) {
	app := testServer(t, t.TempDir())
	resp, body := get(t, app, "/api/data")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "mock", got["source"])

	summary, ok := got["summary"].(map[string]any)
	require.True(t, ok, "summary missing: %s", body)
	assert.Equal(t, 88102290.0, summary["totalRevenue"])
	assert.Equal(t, 26.1, summary["nightTripPct"])
	assert.Equal(t, 26.1, summary["pctNightTrips"])

	kpis, ok := got["kpis"].(map[string]any)
	require.True(t, ok)
	for _, name := range kpi.KPINames {
		assert.Contains(t, kpis, name)
	}
}

func TestServeData_Generated(t *testing.T) {
	dir := t.TempDir()
	_, err := writeGenerated(dir, "csv", 7)
	require.NoError(t, err)

	app := testServer(t, dir)
	_, body := get(t, app, "/api/data")

	var d struct {
		Source          string `json:"source"`
		WeeklyByBorough []any  `json:"weeklyByBorough"`
	}
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "columnar", d.Source)
	assert.Len(t, d.WeeklyByBorough, len(generatedWeeks)*len(generatedBoroughs))
}

func TestServeSeries(t *testing.T) {
	app := testServer(t, t.TempDir())

	_, body := get(t, app, "/api/series")
	var all seriesResponse
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Equal(t, []string{"2024-12-30", "2025-01-06", "2025-01-13"}, all.Weeks)
	require.Len(t, all.Series, 3)
	assert.Equal(t, "Brooklyn", all.Series[0].Name)

	_, body = get(t, app, "/api/series?borough=Manhattan")
	var one seriesResponse
	require.NoError(t, json.Unmarshal(body, &one))
	require.Len(t, one.Series, 1)
	require.Len(t, one.Series[0].Values, 3)
	require.NotNil(t, one.Series[0].Values[0])
	assert.Equal(t, 612000.0, *one.Series[0].Values[0])

	resp, body := get(t, app, "/api/series?borough=Atlantis")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "unknown borough")
}

func TestServeDashboard(t *testing.T) {
	app := testServer(t, t.TempDir())
	resp, body := get(t, app, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))

	page := string(body)
	for _, want := range []string{"Source: mock", "$88,102,290", "Manhattan", "/chart.png"} {
		assert.Contains(t, page, want)
	}
}

func TestServeChart(t *testing.T) {
	app := testServer(t, t.TempDir())
	resp, body := get(t, app, "/chart.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	_, err := png.Decode(bytes.NewReader(body))
	assert.NoError(t, err)
}

func TestServeHealth(t *testing.T) {
	app := testServer(t, t.TempDir())
	resp, body := get(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}
