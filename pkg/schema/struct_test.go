package schema

import (
	"errors"
	"testing"
	"time"
)

type testServer struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
}

type testConfig struct {
	Server  testServer    `mapstructure:"server"`
	Timeout time.Duration `mapstructure:"timeout"`
	Tags    []string      `mapstructure:"tags" validate:"dive,required"`
}

func defaults() testConfig {
	return testConfig{
		Server:  testServer{Host: "localhost", Port: 3000},
		Timeout: 5 * time.Second,
	}
}

func TestStruct_Decode(t *testing.T) {
	s := Struct(defaults())

	got, issues := s.Decode(map[string]any{
		"server":  map[string]any{"port": 8080},
		"timeout": "1m",
		"tags":    []any{"a", "b"},
	})
	if len(issues) != 0 {
		t.Fatalf("Decode() issues = %v", issues)
	}
	if got.Server.Host != "localhost" || got.Server.Port != 8080 {
		t.Errorf("Server = %+v", got.Server)
	}
	if got.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want 1m", got.Timeout)
	}
}

func TestStruct_Parse(t *testing.T) {
	got, err := Struct(defaults()).Parse(map[string]any{"server": map[string]any{"port": 8080}})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	server, ok := got["server"].(map[string]any)
	if !ok {
		t.Fatalf("server = %#v, want map", got["server"])
	}
	if server["host"] != "localhost" || server["port"] != 8080 {
		t.Errorf("server = %v", server)
	}
}

func TestStruct_DecodeErrors(t *testing.T) {
	_, err := Struct(defaults()).Parse(map[string]any{"server": map[string]any{"port": "abc"}})

	var ie *IssuesError
	if !errors.As(err, &ie) {
		t.Fatalf("Parse() error = %v, want *IssuesError", err)
	}
	issue := ie.Issues[0]
	if issue.Path != "server.port" {
		t.Errorf("Path = %q, want server.port", issue.Path)
	}
	if issue.Expected != "int" {
		t.Errorf("Expected = %q, want int", issue.Expected)
	}
	if !issue.HasReceived || issue.Received != "abc" {
		t.Errorf("Received = %v (%v), want abc", issue.Received, issue.HasReceived)
	}
}

func TestStruct_ValidationErrors(t *testing.T) {
	issues := Struct(defaults()).Check(map[string]any{
		"server": map[string]any{"port": 70000},
		"tags":   []any{"ok", ""},
	})

	byPath := make(map[string]Issue)
	for _, issue := range issues {
		byPath[issue.Path] = issue
	}
	if got, ok := byPath["server.port"]; !ok || got.Expected != "max=65535" {
		t.Errorf("server.port issue = %+v, present %v", got, ok)
	}
	if _, ok := byPath["tags.1"]; !ok {
		t.Errorf("missing tags.1 issue in %v", issues)
	}
}
