package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{"no checks", nil, StatusReady},
		{
			name:   "all healthy",
			checks: map[string]CheckFunc{"a": func(context.Context) error { return nil }},
			want:   StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("reload failed") },
			},
			want: StatusDegraded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, fn := range tt.checks {
				c.RegisterCheck(name, fn)
			}
			report := c.Readiness(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %q, want %q", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("Checks = %v", report.Checks)
			}
		})
	}
}

func TestReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	report := c.Readiness(context.Background())
	if got := report.Checks["slow"]; got.Status != StatusUnhealthy || got.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow = %+v", got)
	}
}

func TestRegisterUnregister(t *testing.T) {
	c := New(0)
	c.RegisterCheck("b", func(context.Context) error { return nil })
	c.RegisterCheck("a", func(context.Context) error { return nil })
	if got := strings.Join(c.Names(), ","); got != "a,b" {
		t.Errorf("Names() = %q", got)
	}
	c.UnregisterCheck("a")
	if got := strings.Join(c.Names(), ","); got != "b" {
		t.Errorf("Names() = %q", got)
	}
}

func TestHandlers(t *testing.T) {
	c := New(time.Second)
	healthy := true
	c.RegisterCheck("config", func(context.Context) error {
		if !healthy {
			return errors.New("last reload failed")
		}
		return nil
	})
	mux := http.NewServeMux()
	c.Mount(mux, VersionInfo{Version: "1.2.3"})

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	if rec := do(http.MethodGet, LivenessPath); rec.Code != http.StatusOK {
		t.Errorf("liveness = %d", rec.Code)
	}
	if rec := do(http.MethodGet, ReadinessPath); rec.Code != http.StatusOK {
		t.Errorf("readiness = %d", rec.Code)
	}

	healthy = false
	rec := do(http.MethodGet, ReadinessPath)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness after failure = %d", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode readiness: %v", err)
	}
	if report.Checks["config"].Message != "last reload failed" {
		t.Errorf("report = %+v", report)
	}

	rec = do(http.MethodGet, VersionPath)
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil || info.Version != "1.2.3" || info.GoVersion == "" {
		t.Errorf("version = %+v, %v", info, err)
	}

	if rec := do(http.MethodPost, LivenessPath); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST liveness = %d", rec.Code)
	}
	if rec := do(http.MethodHead, LivenessPath); rec.Body.Len() != 0 {
		t.Errorf("HEAD body = %q", rec.Body.String())
	}
}
