package plugins

import (
	"reflect"
	"strings"
	"testing"

	"mercator-hq/confkit/pkg/plugin"
)

func TestNames(t *testing.T) {
	want := []string{"git", "nats", "s3", "sqlite", "viper"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if !IsBuiltin("git") || IsBuiltin("vault") {
		t.Error("IsBuiltin() returned unexpected result")
	}
}

func TestRegister(t *testing.T) {
	reg := plugin.NewRegistry(nil)
	if err := Register(reg, nil, "sqlite", "viper"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if got, want := reg.List(), []string{"sqlite", "viper"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	err := Register(reg, nil, "vault")
	if err == nil || !strings.Contains(err.Error(), "unknown built-in plugin") {
		t.Errorf("Register(vault) error = %v", err)
	}
}
