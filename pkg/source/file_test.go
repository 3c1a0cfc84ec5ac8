package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileLoader_Formats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"server":{"port":8080,"ratio":0.5,"tags":["x"]}}`)
	writeFile(t, dir, "a.yaml", "server:\n  port: 8080\n  ratio: 0.5\n  tags: [x]\n")
	writeFile(t, dir, "a.env", "SERVER__PORT=8080\n")
	writeFile(t, dir, "a.conf", `{"server":{"port":8080}}`)

	lc := LoadContext{Cwd: dir}

	tests := []struct {
		name string
		src  Source
		want map[string]any
	}{
		{
			name: "json",
			src:  File("a.json"),
			want: map[string]any{"server": map[string]any{"port": 8080, "ratio": 0.5, "tags": []any{"x"}}},
		},
		{
			name: "yaml",
			src:  File("a.yaml"),
			want: map[string]any{"server": map[string]any{"port": 8080, "ratio": 0.5, "tags": []any{"x"}}},
		},
		{
			name: "dotenv",
			src:  File("a.env"),
			want: map[string]any{"SERVER": map[string]any{"PORT": "8080"}},
		},
		{
			name: "unknown extension defaults to json",
			src:  File("a.conf"),
			want: map[string]any{"server": map[string]any{"port": 8080}},
		},
		{
			name: "explicit format overrides extension",
			src:  File("a.yaml").WithFormat(FormatYAML),
			want: map[string]any{"server": map[string]any{"port": 8080, "ratio": 0.5, "tags": []any{"x"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileLoader{}.Load(context.Background(), tt.src, lc)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Load() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFileLoader_ProfilePlaceholder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.production.json", `{"env":"prod"}`)

	lc := LoadContext{Cwd: dir, Profile: "production"}
	got, err := FileLoader{}.Load(context.Background(), File("config.${PROFILE}.json"), lc)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got["env"] != "prod" {
		t.Errorf("env = %v, want prod", got["env"])
	}
}

func TestFileLoader_Missing(t *testing.T) {
	dir := t.TempDir()
	lc := LoadContext{Cwd: dir}

	got, err := FileLoader{}.Load(context.Background(), OptionalFile("missing.json"), lc)
	if err != nil {
		t.Fatalf("optional Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("optional Load() = %v, want empty", got)
	}

	_, err = FileLoader{}.Load(context.Background(), File("missing.json"), lc)
	var nf *FileNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("required Load() error = %v, want *FileNotFoundError", err)
	}
	if nf.Path != filepath.Join(dir, "missing.json") {
		t.Errorf("FileNotFoundError.Path = %q, want absolute path", nf.Path)
	}
	if !errors.Is(err, ErrFileNotFound) {
		t.Error("errors.Is(err, ErrFileNotFound) = false")
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		t.Error("not-found error must not be a *ParseError")
	}
}

func TestFileLoader_ParseErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{"a":`)
	writeFile(t, dir, "trailing.json", `{"a":1} {"b":2}`)
	writeFile(t, dir, "array.json", `[1,2]`)
	writeFile(t, dir, "bad.yaml", "a: [unclosed\n")
	writeFile(t, dir, "scalar.yaml", "just a string\n")

	lc := LoadContext{Cwd: dir}
	for _, name := range []string{"bad.json", "trailing.json", "array.json", "bad.yaml", "scalar.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := FileLoader{}.Load(context.Background(), File(name), lc)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Load() error = %v, want *ParseError", err)
			}
			if pe.Path != filepath.Join(dir, name) {
				t.Errorf("ParseError.Path = %q, want %q", pe.Path, filepath.Join(dir, name))
			}
			if pe.Cause == nil {
				t.Error("ParseError.Cause is nil")
			}
		})
	}
}

func TestFileLoader_EmptyYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.yaml", "")

	got, err := FileLoader{}.Load(context.Background(), File("empty.yaml"), LoadContext{Cwd: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"config.json":  FormatJSON,
		"config.YAML":  FormatYAML,
		"config.yml":   FormatYAML,
		".env":         FormatDotenv,
		".env.local":   FormatDotenv,
		"prod.env":     FormatDotenv,
		"config.toml":  FormatJSON,
		"no-extension": FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
