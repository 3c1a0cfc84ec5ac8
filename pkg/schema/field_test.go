package schema

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func serverSchema() *Field {
	return Object(map[string]*Field{
		"server": Object(map[string]*Field{
			"host": String().Default("localhost"),
			"port": Number().Default(3000),
		}),
	})
}

func TestParse_Defaults(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "missing object gets defaults",
			in:   map[string]any{},
			want: map[string]any{"server": map[string]any{"host": "localhost", "port": 3000}},
		},
		{
			name: "partial object",
			in:   map[string]any{"server": map[string]any{"port": 8080}},
			want: map[string]any{"server": map[string]any{"host": "localhost", "port": 8080}},
		},
		{
			name: "null takes default",
			in:   map[string]any{"server": map[string]any{"host": nil}},
			want: map[string]any{"server": map[string]any{"host": "localhost", "port": 3000}},
		},
		{
			name: "unknown keys are stripped",
			in:   map[string]any{"extra": true, "server": map[string]any{"port": 1, "x": 2}},
			want: map[string]any{"server": map[string]any{"host": "localhost", "port": 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := serverSchema().Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_TypeMismatch(t *testing.T) {
	s := Object(map[string]*Field{"port": Number()})

	_, err := s.Parse(map[string]any{"port": "abc"})

	var ie *IssuesError
	if !errors.As(err, &ie) {
		t.Fatalf("Parse() error = %v, want *IssuesError", err)
	}
	if len(ie.Issues) != 1 {
		t.Fatalf("issues = %v, want 1", ie.Issues)
	}
	got := ie.Issues[0]
	want := Issue{
		Path:        "port",
		Message:     "Expected number, received string",
		Expected:    "number",
		Received:    "abc",
		HasReceived: true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("issue = %+v, want %+v", got, want)
	}
}

func TestCheck_Constraints(t *testing.T) {
	s := Object(map[string]*Field{
		"name":     String().Min(2).Max(5),
		"port":     Integer().Min(1).Max(65535),
		"level":    String().OneOf("debug", "info"),
		"id":       String().Pattern(`^[a-z]+$`),
		"endpoint": URL(),
		"timeout":  Duration(),
		"tags":     Array(String()).Max(2),
		"required": Bool(),
		"ratio":    Integer(),
	})

	issues := s.Check(map[string]any{
		"name":     "x",
		"port":     70000,
		"level":    "trace",
		"id":       "ABC",
		"endpoint": "not a url",
		"timeout":  "soon",
		"tags":     []any{"a", 1, "c"},
		"ratio":    1.5,
	})

	paths := make(map[string]bool)
	for _, issue := range issues {
		paths[issue.Path] = true
	}
	for _, want := range []string{"name", "port", "level", "id", "endpoint", "timeout", "tags", "tags.1", "required", "ratio"} {
		if !paths[want] {
			t.Errorf("missing issue for %q in %v", want, issues)
		}
	}

	for _, issue := range issues {
		if issue.Path == "required" && issue.HasReceived {
			t.Error("missing field reported a received value")
		}
	}
}

func TestParse_Conversions(t *testing.T) {
	s := Object(map[string]*Field{
		"timeout": Duration().Default("5s"),
		"count":   Integer(),
		"opt":     String().Optional(),
		"raw":     Any(),
		"meta":    Object(nil).Passthrough(),
	})

	got, err := s.Parse(map[string]any{
		"count": 3.0,
		"raw":   []any{1, "x"},
		"meta":  map[string]any{"a": 1},
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := map[string]any{
		"timeout": 5 * time.Second,
		"count":   3,
		"raw":     []any{1, "x"},
		"meta":    map[string]any{"a": 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %#v, want %#v", got, want)
	}
}

func TestParse_DoesNotAliasInput(t *testing.T) {
	in := map[string]any{"raw": map[string]any{"a": 1}}
	s := Object(map[string]*Field{"raw": Any()})

	got, err := s.Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	got["raw"].(map[string]any)["a"] = 2
	if in["raw"].(map[string]any)["a"] != 1 {
		t.Error("output shares structure with input")
	}
}

func TestBuildersCopy(t *testing.T) {
	base := String()
	withDefault := base.Default("x")
	if base.hasDefault {
		t.Error("Default() modified the receiver")
	}
	if !withDefault.hasDefault {
		t.Error("Default() result has no default")
	}
}

func TestRootMustBeObject(t *testing.T) {
	issues := String().Check(map[string]any{})
	if len(issues) != 1 || issues[0].Path != "" {
		t.Errorf("Check() = %v, want one root issue", issues)
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{map[string]any{}, "object"},
		{[]any{}, "array"},
		{"s", "string"},
		{true, "boolean"},
		{1, "number"},
		{1.5, "number"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.in); got != tt.want {
			t.Errorf("TypeName(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
