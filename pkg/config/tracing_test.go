package config

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/confkit/pkg/source"
)

func spanAttr(span sdktrace.ReadOnlySpan, key string) attribute.Value {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestLoad_Spans(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "db:\n  password: hunter2\n  port: 5432\n")

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	mustLoad(t, Options{
		Cwd:     dir,
		Env:     map[string]string{"APP_NAME": "svc"},
		Profile: "staging",
		Tracer:  provider.Tracer("test"),
		Sources: []source.Source{source.File("base.yaml"), source.Env("APP_")},
	})

	spans := recorder.Ended()
	if len(spans) != 3 {
		t.Fatalf("recorded %d spans, want 3", len(spans))
	}

	load := spans[len(spans)-1]
	if load.Name() != "confkit.load" {
		t.Fatalf("last span = %q, want confkit.load", load.Name())
	}
	if got := spanAttr(load, "confkit.profile").AsString(); got != "staging" {
		t.Errorf("confkit.profile = %q", got)
	}
	if got := spanAttr(load, "confkit.values").AsInt64(); got != 3 {
		t.Errorf("confkit.values = %d, want 3", got)
	}

	want := []string{"file:base.yaml", "env"}
	for i, span := range spans[:2] {
		if span.Name() != "confkit.source" {
			t.Errorf("span %d = %q", i, span.Name())
		}
		if span.Parent().SpanID() != load.SpanContext().SpanID() {
			t.Errorf("span %d is not a child of the load span", i)
		}
		if got := spanAttr(span, "confkit.source").AsString(); got != want[i] {
			t.Errorf("span %d source = %q, want %q", i, got, want[i])
		}
		for _, kv := range span.Attributes() {
			if kv.Value.AsString() == "hunter2" {
				t.Errorf("span %d leaks a value in %s", i, kv.Key)
			}
		}
	}
}

func TestLoad_SpanRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, err := Load(context.Background(), Options{
		Cwd:     t.TempDir(),
		Env:     map[string]string{},
		Tracer:  provider.Tracer("test"),
		Sources: []source.Source{source.File("missing.yaml")},
	})
	if err == nil {
		t.Fatal("Load() should fail")
	}

	for _, span := range recorder.Ended() {
		if span.Status().Code != codes.Error {
			t.Errorf("%s status = %v, want Error", span.Name(), span.Status().Code)
		}
	}
}
