package plugin

import (
	"bytes"
	"context"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"mercator-hq/confkit/pkg/source"
)

func constant(name string, data map[string]any) source.Plugin {
	return Func(name, func(context.Context, map[string]any, source.LoadContext) (map[string]any, error) {
		return data, nil
	})
}

func TestRegistry_RegisterGet(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(constant("a", map[string]any{"x": 1}))

	p, ok := r.Get("a")
	if !ok {
		t.Fatal("Get(a) not found")
	}
	got, err := p.Load(context.Background(), nil, source.LoadContext{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got["x"] != 1 {
		t.Errorf("Load() = %v, want x=1", got)
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) found a plugin")
	}
	if !r.Has("a") || r.Has("missing") {
		t.Error("Has() returned unexpected result")
	}
}

func TestRegistry_ReplaceWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := NewRegistry(logger)

	r.Register(constant("a", map[string]any{"v": "first"}))
	r.Register(constant("a", map[string]any{"v": "second"}))

	if !strings.Contains(buf.String(), "replacing existing plugin") {
		t.Errorf("expected warning in log output, got %q", buf.String())
	}

	p, _ := r.Get("a")
	got, _ := p.Load(context.Background(), nil, source.LoadContext{})
	if got["v"] != "second" {
		t.Errorf("v = %v, want second", got["v"])
	}
}

func TestRegistry_ListUnregisterClear(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"c", "a", "b"} {
		r.Register(constant(name, nil))
	}

	if got, want := r.List(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	if !r.Unregister("b") {
		t.Error("Unregister(b) = false, want true")
	}
	if r.Unregister("b") {
		t.Error("second Unregister(b) = true, want false")
	}
	if got, want := r.List(), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	r.Clear()
	if got := r.List(); len(got) != 0 {
		t.Errorf("List() after Clear = %v, want empty", got)
	}
}

func TestRegistry_IndependentInstances(t *testing.T) {
	r1 := NewRegistry(nil)
	r2 := NewRegistry(nil)
	r1.Register(constant("a", nil))

	if r2.Has("a") {
		t.Error("registries share state")
	}
}

func TestRegistry_ServesPluginLoader(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Func("opts", func(_ context.Context, options map[string]any, lc source.LoadContext) (map[string]any, error) {
		return map[string]any{"profile": lc.Profile, "echo": options["value"]}, nil
	}))

	loader := source.PluginLoader{Plugins: r}
	got, err := loader.Load(context.Background(), source.PluginSource("opts", map[string]any{"value": "v"}), source.LoadContext{Profile: "test"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]any{"profile": "test", "echo": "v"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}
