package interpolate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestInterpolate_ChainResolves(t *testing.T) {
	data := map[string]any{"a": "${b}", "b": "${c}", "c": "x"}

	got, err := Interpolate(context.Background(), data, nil, Options{})
	if err != nil {
		t.Fatalf("Interpolate() error = %v", err)
	}
	want := map[string]any{"a": "x", "b": "x", "c": "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Interpolate() = %v, want %v", got, want)
	}
	if data["a"] != "${b}" {
		t.Error("input tree was modified")
	}
}

func TestInterpolate_Cycle(t *testing.T) {
	data := map[string]any{"a": "${b}", "b": "${a}"}

	_, err := Interpolate(context.Background(), data, nil, Options{})

	var ce *CircularReferenceError
	if !errors.As(err, &ce) {
		t.Fatalf("Interpolate() error = %v, want *CircularReferenceError", err)
	}
	chain := strings.Join(ce.Chain, ",")
	if !strings.Contains(chain, "a") || !strings.Contains(chain, "b") {
		t.Errorf("Chain = %v, want both a and b", ce.Chain)
	}
	var de *DepthExceededError
	if errors.As(err, &de) {
		t.Error("cycle reported as depth exceeded")
	}
}

func TestInterpolate_SelfReference(t *testing.T) {
	_, err := Interpolate(context.Background(), map[string]any{"a": "x${a}"}, nil, Options{})

	var ce *CircularReferenceError
	if !errors.As(err, &ce) {
		t.Fatalf("Interpolate() error = %v, want *CircularReferenceError", err)
	}
	if want := []string{"a", "a"}; !reflect.DeepEqual(ce.Chain, want) {
		t.Errorf("Chain = %v, want %v", ce.Chain, want)
	}
}

func TestInterpolate_EnvPassthrough(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		env  map[string]string
		want map[string]any
	}{
		{
			name: "same name as env var",
			data: map[string]any{"DATABASE_URL": "${DATABASE_URL}"},
			env:  map[string]string{"DATABASE_URL": "postgres://db"},
			want: map[string]any{"DATABASE_URL": "postgres://db"},
		},
		{
			name: "nested under the env var name",
			data: map[string]any{"db": map[string]any{"URL": "${URL}"}, "URL": "${URL}"},
			env:  map[string]string{"URL": "https://example.com"},
			want: map[string]any{"db": map[string]any{"URL": "https://example.com"}, "URL": "https://example.com"},
		},
		{
			name: "inside an array",
			data: map[string]any{"HOSTS": []any{"${HOSTS}", "b"}},
			env:  map[string]string{"HOSTS": "a"},
			want: map[string]any{"HOSTS": []any{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Interpolate(context.Background(), tt.data, tt.env, Options{})
			if err != nil {
				t.Fatalf("Interpolate() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Interpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterpolate_DepthExceeded(t *testing.T) {
	data := map[string]any{}
	for i := 0; i < 8; i++ {
		data[fmt.Sprintf("k%d", i)] = fmt.Sprintf("${k%d}", i+1)
	}
	data["k8"] = "end"

	if _, err := Interpolate(context.Background(), data, nil, Options{}); err != nil {
		t.Fatalf("Interpolate() with default depth error = %v", err)
	}

	_, err := Interpolate(context.Background(), data, nil, Options{MaxDepth: 3})
	var de *DepthExceededError
	if !errors.As(err, &de) {
		t.Fatalf("Interpolate() error = %v, want *DepthExceededError", err)
	}
	if de.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", de.MaxDepth)
	}
}

func TestInterpolate_Values(t *testing.T) {
	data := map[string]any{
		"server": map[string]any{"host": "db.local", "port": 5432, "tls": true, "ratio": 0.25},
		"list":   []any{"a", 1},
		"url":    "postgres://${DB_USER}@${server.host}:${server.port}",
		"flags":  "${server.tls}/${server.ratio}",
		"json":   "${list}",
		"obj":    "${server.missing}|${MISSING}|${ spaced }",
		"items":  []any{"${server.host}", 7, []any{"${DB_USER}"}},
		"spaced": "ok",
	}
	env := map[string]string{"DB_USER": "admin"}

	got, err := Interpolate(context.Background(), data, env, Options{})
	if err != nil {
		t.Fatalf("Interpolate() error = %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{key: "url", want: "postgres://admin@db.local:5432"},
		{key: "flags", want: "true/0.25"},
		{key: "json", want: `["a",1]`},
		{key: "obj", want: "||ok"},
		{key: "items", want: []any{"db.local", 7, []any{"admin"}}},
	}
	for _, tt := range tests {
		if !reflect.DeepEqual(got[tt.key], tt.want) {
			t.Errorf("%s = %#v, want %#v", tt.key, got[tt.key], tt.want)
		}
	}
}

func TestInterpolate_Fallback(t *testing.T) {
	data := map[string]any{
		"port": "${PORT:-8080}",
		"host": "${HOST:-localhost}",
		"path": "${missing.path:-/var/lib}",
	}
	env := map[string]string{"HOST": "example.com"}

	got, err := Interpolate(context.Background(), data, env, Options{})
	if err != nil {
		t.Fatalf("Interpolate() error = %v", err)
	}
	want := map[string]any{"port": "8080", "host": "example.com", "path": "/var/lib"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Interpolate() = %v, want %v", got, want)
	}
}

func TestResolutionOrder(t *testing.T) {
	data := map[string]any{
		"HOST":   "from-path",
		"name":   "from-path",
		"db_url": "from-path",
		"only":   map[string]any{"path": "from-path"},
	}
	env := map[string]string{
		"HOST":   "from-env",
		"name":   "from-env",
		"db_url": "from-env",
		"ONLY":   "from-env",
	}
	e := New(data, env, Options{})

	tests := []struct {
		in   string
		want string
	}{
		// upper-case: env first
		{in: "${HOST}", want: "from-env"},
		// lower-case without underscore: path first
		{in: "${name}", want: "from-path"},
		// underscore: env first even in lower case
		{in: "${db_url}", want: "from-env"},
		// path-like falls back to env and vice versa
		{in: "${ONLY}", want: "from-env"},
		{in: "${only.path}", want: "from-path"},
	}
	for _, tt := range tests {
		got, err := e.Expand(context.Background(), tt.in)
		if err != nil {
			t.Fatalf("Expand(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsEnvLike(t *testing.T) {
	tests := map[string]bool{
		"HOME":        true,
		"DB_URL":      true,
		"db_url":      true,
		"server.port": false,
		"Server":      false,
		"A1":          true,
		"123":         false,
		"server.HOST": false,
	}
	for id, want := range tests {
		if got := IsEnvLike(id); got != want {
			t.Errorf("IsEnvLike(%q) = %v, want %v", id, got, want)
		}
	}
}

type secretMap map[string]string

func (s secretMap) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := s[name]
	if !ok {
		return "", fmt.Errorf("secret %q not found", name)
	}
	return v, nil
}

func TestInterpolate_Secrets(t *testing.T) {
	opts := Options{Secrets: secretMap{"db-password": "hunter2"}}

	got, err := Interpolate(context.Background(), map[string]any{"dsn": "user:${secret:db-password}@db"}, nil, opts)
	if err != nil {
		t.Fatalf("Interpolate() error = %v", err)
	}
	if got["dsn"] != "user:hunter2@db" {
		t.Errorf("dsn = %v, want user:hunter2@db", got["dsn"])
	}

	_, err = Interpolate(context.Background(), map[string]any{"dsn": "${secret:missing}"}, nil, opts)
	var se *SecretError
	if !errors.As(err, &se) {
		t.Fatalf("Interpolate() error = %v, want *SecretError", err)
	}
	if se.Name != "missing" {
		t.Errorf("Name = %q, want missing", se.Name)
	}
}
