package tree

import (
	"reflect"
	"testing"
)

func TestFreeze_CopiesInput(t *testing.T) {
	src := map[string]any{"server": map[string]any{"port": 8080}}
	f := Freeze(src)

	src["server"].(map[string]any)["port"] = 1

	got, _ := f.Get("server.port")
	if got != 8080 {
		t.Errorf("Get(server.port) = %v, want 8080", got)
	}
}

func TestFrozen_ReadsReturnCopies(t *testing.T) {
	f := Freeze(map[string]any{
		"server": map[string]any{"port": 8080},
		"hosts":  []any{"a"},
	})

	server, _ := f.Get("server")
	server.(map[string]any)["port"] = 1

	hosts, _ := f.Get("hosts")
	hosts.([]any)[0] = "z"

	all := f.Map()
	all["server"] = "gone"

	leaves := f.Leaves()
	leaves["hosts"].([]any)[0] = "y"

	want := map[string]any{
		"server": map[string]any{"port": 8080},
		"hosts":  []any{"a"},
	}
	if !reflect.DeepEqual(f.Map(), want) {
		t.Errorf("frozen tree changed through a read: %v, want %v", f.Map(), want)
	}
}

func TestFrozen_FreezeIsIdempotent(t *testing.T) {
	f := Freeze(map[string]any{"a": 1})
	again := f.Freeze()

	if !reflect.DeepEqual(f.Map(), again.Map()) {
		t.Errorf("Freeze() of frozen tree = %v, want %v", again.Map(), f.Map())
	}
}

func TestFrozen_ZeroValue(t *testing.T) {
	var f Frozen

	if f.Has("a") {
		t.Error("Has(a) = true on zero Frozen")
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
	b, err := f.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != "{}" {
		t.Errorf("MarshalJSON() = %s, want {}", b)
	}
}
