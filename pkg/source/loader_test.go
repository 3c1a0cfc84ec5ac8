package source

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type stubPlugin struct {
	name string
	data map[string]any
	err  error
	got  map[string]any
}

func (p *stubPlugin) Name() string { return p.name }

func (p *stubPlugin) Load(_ context.Context, options map[string]any, _ LoadContext) (map[string]any, error) {
	p.got = options
	return p.data, p.err
}

type stubProvider map[string]Plugin

func (s stubProvider) Get(name string) (Plugin, bool) {
	p, ok := s[name]
	return p, ok
}

func TestObjectLoader_Normalizes(t *testing.T) {
	src := Object(map[string]any{"tags": []string{"a"}})

	got, err := ObjectLoader{}.Load(context.Background(), src, LoadContext{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]any{"tags": []any{"a"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %#v, want %#v", got, want)
	}
}

func TestPluginLoader(t *testing.T) {
	p := &stubPlugin{name: "vault", data: map[string]any{"token": "t"}}
	loader := PluginLoader{Plugins: stubProvider{"vault": p}}

	opts := map[string]any{"path": "secret/app"}
	got, err := loader.Load(context.Background(), PluginSource("vault", opts), LoadContext{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got["token"] != "t" {
		t.Errorf("token = %v, want t", got["token"])
	}
	if !reflect.DeepEqual(p.got, opts) {
		t.Errorf("plugin options = %v, want %v", p.got, opts)
	}
}

func TestPluginLoader_NotFound(t *testing.T) {
	loader := PluginLoader{Plugins: stubProvider{}}

	_, err := loader.Load(context.Background(), PluginSource("missing", nil), LoadContext{})

	var nf *PluginNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Load() error = %v, want *PluginNotFoundError", err)
	}
	if nf.Name != "missing" {
		t.Errorf("Name = %q, want missing", nf.Name)
	}
	if !errors.Is(err, ErrPluginNotFound) {
		t.Error("errors.Is(err, ErrPluginNotFound) = false")
	}
}

func TestPluginLoader_WrapsPluginError(t *testing.T) {
	cause := errors.New("backend down")
	loader := PluginLoader{Plugins: stubProvider{"x": &stubPlugin{name: "x", err: cause}}}

	_, err := loader.Load(context.Background(), PluginSource("x", nil), LoadContext{})
	if !errors.Is(err, cause) {
		t.Errorf("Load() error = %v, want wrapping %v", err, cause)
	}
}

func TestSourceValidate(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		wantErr bool
	}{
		{name: "env", src: Env("APP_")},
		{name: "file", src: File("a.json")},
		{name: "file without path", src: Source{Kind: KindFile}, wantErr: true},
		{name: "file bad format", src: File("a").WithFormat("toml"), wantErr: true},
		{name: "plugin without name", src: Source{Kind: KindPlugin}, wantErr: true},
		{name: "missing kind", src: Source{}, wantErr: true},
		{name: "unknown kind", src: Source{Kind: "http"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSourceLabel(t *testing.T) {
	lc := LoadContext{Profile: "prod"}
	tests := []struct {
		src  Source
		want string
	}{
		{src: Env("APP_"), want: "env"},
		{src: Object(nil), want: "object"},
		{src: File("cfg.${PROFILE}.json").Resolve(lc), want: "file:cfg.prod.json"},
		{src: PluginSource("vault", nil), want: "plugin:vault"},
	}
	for _, tt := range tests {
		if got := tt.src.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}
