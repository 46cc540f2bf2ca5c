package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"coinflip/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsProvider_NilIsSafe(t *testing.T) {
	var mp *MetricsProvider

	assert.NotPanics(t, func() {
		mp.RecordWagerCreated(100, false)
		mp.RecordWagerSettled("resolved", true, 100, 1)
		mp.RecordProofRejected()
		mp.RecordEventPublished("nats", "wager_created", nil)
		mp.RecordWorkerRun(WorkerEpochTicker, "ok")
		mp.MeasureDatabaseQuery("wager", "Create")()
	})
	assert.Nil(t, mp.Registry())
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_Disabled(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = false
	mp := NewMetricsProvider(cfg)

	require.NoError(t, mp.Initialize(context.Background()))
	assert.False(t, mp.isEnabled())
	assert.NotPanics(t, func() { mp.RecordWagerCreated(1, true) })
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	assert.ErrorContains(t, err, "unknown exporter type")
}

func TestMetricsProvider_PrometheusExport(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "prometheus"
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	mp.RecordWagerCreated(20000, false)
	mp.RecordWagerSettled("resolved", true, 20000, 100)
	mp.RecordDatabaseQuery("wager", "Settle", 3*time.Millisecond)

	server := httptest.NewServer(NewMetricsHandler(mp))
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "coinflip_wagers_created_total")
	assert.Contains(t, string(body), "coinflip_treasury_fees_collected_total")
	assert.Contains(t, string(body), "go_goroutines")
}
