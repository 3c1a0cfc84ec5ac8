package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/confkit/pkg/config"
	"mercator-hq/confkit/pkg/source"
)

var _ config.Recorder = (*Collector)(nil)

func testCollector() *Collector {
	return NewCollector(Config{Enabled: true, Namespace: "test", Subsystem: "metrics", MaxProfiles: 2}, prometheus.NewRegistry())
}

func TestCollector_RecordLoad(t *testing.T) {
	c := testCollector()

	c.RecordLoad("production", 2*time.Millisecond, nil)
	c.RecordLoad("production", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(c.pipeline.loadsTotal.WithLabelValues("production", "success")); got != 1 {
		t.Errorf("success loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.pipeline.loadsTotal.WithLabelValues("production", "error")); got != 1 {
		t.Errorf("error loads = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.pipeline.loadDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
	if testutil.ToFloat64(c.pipeline.lastSuccess) == 0 {
		t.Error("last success timestamp not set")
	}
}

func TestCollector_ReloadEventsAndWatchers(t *testing.T) {
	c := testCollector()

	c.RecordReload("dev", 3, nil)
	c.RecordReload("dev", 0, errors.New("bad"))
	c.RecordEvent("change")
	c.RecordEvent("change")
	c.SetWatchedFiles(4)
	c.RecordRefresh(nil)

	if got := testutil.ToFloat64(c.pipeline.reloadsTotal.WithLabelValues("dev", "success")); got != 1 {
		t.Errorf("reloads = %v", got)
	}
	if got := testutil.ToFloat64(c.pipeline.events.WithLabelValues("change")); got != 2 {
		t.Errorf("change events = %v", got)
	}
	if got := testutil.ToFloat64(c.pipeline.watchedFiles); got != 4 {
		t.Errorf("watched files = %v", got)
	}
	if got := testutil.ToFloat64(c.refresh.runs.WithLabelValues("success")); got != 1 {
		t.Errorf("refresh runs = %v", got)
	}
}

func TestCollector_ProfileCardinality(t *testing.T) {
	c := testCollector()
	for _, p := range []string{"a", "b", "c", "d"} {
		c.RecordLoad(p, time.Millisecond, nil)
	}
	if got := testutil.ToFloat64(c.pipeline.loadsTotal.WithLabelValues(otherLabel, "success")); got != 2 {
		t.Errorf("other loads = %v, want 2", got)
	}
	if got := c.profiles.Count(); got != 2 {
		t.Errorf("admitted profiles = %d", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	c := NewCollector(Config{}, nil)
	c.RecordLoad("dev", time.Millisecond, nil)
	c.SetWatchedFiles(3)

	if got := testutil.ToFloat64(c.pipeline.loadsTotal.WithLabelValues("dev", "success")); got != 0 {
		t.Errorf("disabled collector recorded %v loads", got)
	}
	if got := testutil.ToFloat64(c.pipeline.watchedFiles); got != 0 {
		t.Errorf("disabled collector set watched files to %v", got)
	}
}

func TestCollector_WithConfig(t *testing.T) {
	c := testCollector()
	cfg, err := config.Load(context.Background(), config.Options{
		Profile: "test",
		Env:     map[string]string{},
		Metrics: c,
		Sources: []source.Source{source.Object(map[string]any{"a": 1})},
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg.On(config.EventReload, func(config.Event) {})
	if err := cfg.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(c.pipeline.loadsTotal.WithLabelValues("test", "success")); got != 2 {
		t.Errorf("loads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.pipeline.reloadsTotal.WithLabelValues("test", "success")); got != 1 {
		t.Errorf("reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.pipeline.events.WithLabelValues("reload")); got != 1 {
		t.Errorf("reload events = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	c := testCollector()
	c.RecordLoad("dev", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_metrics_loads_total") {
		t.Errorf("body missing loads_total:\n%s", rec.Body.String())
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	c := testCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordLoad("dev", time.Microsecond, nil)
				c.RecordEvent("reload")
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(c.pipeline.loadsTotal.WithLabelValues("dev", "success")); got != 1000 {
		t.Errorf("loads = %v, want 1000", got)
	}
}
