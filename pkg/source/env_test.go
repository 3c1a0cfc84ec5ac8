package source

import (
	"context"
	"reflect"
	"testing"
)

func TestEnvLoader_KeyTranslation(t *testing.T) {
	lc := LoadContext{Env: map[string]string{
		"APP_DATABASE__POOL_SIZE": "10",
		"APP_SERVER__HOST":        "localhost",
		"APP_DEBUG":               "TRUE",
		"app_lower__case_key":     "x",
		"OTHER_VALUE":             "ignored",
	}}

	got, err := EnvLoader{}.Load(context.Background(), Env("APP_"), lc)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := map[string]any{
		"database": map[string]any{"poolSize": 10},
		"server":   map[string]any{"host": "localhost"},
		"debug":    true,
		"lower":    map[string]any{"caseKey": "x"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %#v, want %#v", got, want)
	}
}

func TestEnvLoader_CollidingKeysAreStable(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want map[string]any
	}{
		{
			name: "scalar and nested",
			env:  map[string]string{"APP_DB": "x", "APP_DB__HOST": "h"},
			want: map[string]any{"db": map[string]any{"host": "h"}},
		},
		{
			name: "case variants",
			env:  map[string]string{"APP_DB_HOST": "upper", "APP_db_host": "lower"},
			want: map[string]any{"dbHost": "lower"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				got, err := EnvLoader{}.Load(context.Background(), Env("APP_"), LoadContext{Env: tt.env})
				if err != nil {
					t.Fatalf("Load() error = %v", err)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Fatalf("Load() #%d = %#v, want %#v", i, got, tt.want)
				}
			}
		})
	}
}

func TestEnvLoader_NoPrefixSelectsAll(t *testing.T) {
	lc := LoadContext{Env: map[string]string{"PORT": "8080", "LOG_LEVEL": "debug"}}

	got, err := EnvLoader{}.Load(context.Background(), Env(""), lc)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := map[string]any{"port": 8080, "logLevel": "debug"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %#v, want %#v", got, want)
	}
}

func TestEnvLoader_CustomSeparator(t *testing.T) {
	lc := LoadContext{Env: map[string]string{"APP_DB.MAX_CONNS": "5"}}

	got, err := EnvLoader{}.Load(context.Background(), Env("APP_").WithSeparator("."), lc)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := map[string]any{"db": map[string]any{"maxConns": 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %#v, want %#v", got, want)
	}
}

func TestKeyToPath(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "DATABASE__POOL_SIZE", want: "database.poolSize"},
		{key: "SERVER", want: "server"},
		{key: "A__B__C_D_E", want: "a.b.cDE"},
		{key: "__LEADING", want: "leading"},
		{key: "DOUBLE___UNDERSCORE", want: "double.underscore"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := KeyToPath(tt.key, DefaultSeparator); got != tt.want {
				t.Errorf("KeyToPath(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: "10", want: 10},
		{in: "-3", want: -3},
		{in: "3.14", want: 3.14},
		{in: "true", want: true},
		{in: "False", want: false},
		{in: `["a","b"]`, want: []any{"a", "b"}},
		{in: `{"a":1}`, want: map[string]any{"a": 1}},
		{in: `[not json`, want: `[not json`},
		{in: "1.2.3", want: "1.2.3"},
		{in: "yes", want: "yes"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Coerce(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Coerce(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
