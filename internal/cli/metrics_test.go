package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMetricsFiltersPrefix(t *testing.T) {
	reg := prometheus.NewRegistry()
	ours := prometheus.NewCounter(prometheus.CounterOpts{Name: "masonry_things_total", Help: "Things."})
	theirs := prometheus.NewCounter(prometheus.CounterOpts{Name: "other_things_total", Help: "Other things."})
	reg.MustRegister(ours, theirs)
	ours.Add(3)
	theirs.Inc()

	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, reg))
	assert.Contains(t, buf.String(), "# TYPE masonry_things_total counter")
	assert.Contains(t, buf.String(), "masonry_things_total 3")
	assert.NotContains(t, buf.String(), "other_things_total")
}

func TestBuildMetricsFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs([]string{"build", "--metrics", housePath})
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, stderr.String(), "masonry_export_records_total")
	assert.Contains(t, stderr.String(), "masonry_export_duration_seconds_bucket")
	assert.NotContains(t, stderr.String(), "go_goroutines")
	assert.NotContains(t, stdout.String(), "masonry_export_records_total")
}

func TestServeMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		serveMetrics(ctx, ln, newLogger(io.Discard, log.ErrorLevel))
		close(stopped)
	}()

	// Exercise the export path so the masonry families have samples.
	_, err = run(t, "build", housePath)
	require.NoError(t, err)

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "masonry_export_records_total")

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop after cancel")
	}
}
