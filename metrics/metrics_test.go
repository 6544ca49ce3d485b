package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.Scanned()
	r.Scanned()
	r.Skipped(ReasonWeekend)
	r.Collected()
	r.ObserveSink("xlsx", 200*time.Millisecond)
	r.RunFinished(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.DaysScanned))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DaysSkipped.WithLabelValues(ReasonWeekend)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.DaysSkipped.WithLabelValues(ReasonNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.TablesCollected))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LastRunSuccess))
	assert.Equal(t, 1, testutil.CollectAndCount(r.SinkDuration))

	r.RunFinished(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.LastRunSuccess))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.Scanned()
		r.Skipped(ReasonMalformed)
		r.Collected()
		r.ObserveSink("drive", time.Second)
		r.RunFinished(true)
	})
	assert.NoError(t, r.Push(context.Background(), "http://localhost:9091", "job"))
}

func TestRecorder_Push(t *testing.T) {
	type pushed struct {
		path string
		size int
	}
	got := make(chan pushed, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		got <- pushed{path: req.URL.Path, size: len(data)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	r := New()
	r.Collected()

	require.NoError(t, r.Push(context.Background(), server.URL, "currency_quotes"))
	p := <-got
	assert.Equal(t, "/metrics/job/currency_quotes", p.path)
	assert.Positive(t, p.size)

	assert.NoError(t, r.Push(context.Background(), "", "currency_quotes"))
}
