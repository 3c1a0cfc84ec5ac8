package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/confkit/pkg/source"
)

// initRepo creates a repository with two commits of config.yaml and tags
// the first one v1.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}

	commit := func(content, msg string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add("config.yaml"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		_, err := wt.Commit(msg, &gogit.CommitOptions{
			Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
		})
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
	}

	commit("server:\n  port: 8080\n", "initial")
	head, err := repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateTag("v1", head.Hash(), nil); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	commit("server:\n  port: 9090\n  host: example.com\n", "bump port")

	return dir
}

func TestPlugin_LoadRevisions(t *testing.T) {
	dir := initRepo(t)

	tests := []struct {
		ref  string
		want map[string]any
	}{
		{"", map[string]any{"server": map[string]any{"port": 9090, "host": "example.com"}}},
		{"HEAD~1", map[string]any{"server": map[string]any{"port": 8080}}},
		{"v1", map[string]any{"server": map[string]any{"port": 8080}}},
	}

	for _, tt := range tests {
		t.Run("ref="+tt.ref, func(t *testing.T) {
			opts := map[string]any{"repository": dir, "file": "config.yaml"}
			if tt.ref != "" {
				opts["ref"] = tt.ref
			}
			got, err := New().Load(context.Background(), opts, source.LoadContext{})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Load() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPlugin_RelativeRepository(t *testing.T) {
	dir := initRepo(t)

	got, err := New().Load(context.Background(),
		map[string]any{"repository": filepath.Base(dir), "file": "config.yaml"},
		source.LoadContext{Cwd: filepath.Dir(dir)},
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := got["server"]; !ok {
		t.Errorf("Load() = %v, want server key", got)
	}
}

func TestPlugin_Errors(t *testing.T) {
	dir := initRepo(t)

	tests := []struct {
		name    string
		options map[string]any
		check   func(error) bool
	}{
		{
			name:    "missing repository",
			options: map[string]any{"file": "config.yaml"},
			check:   func(err error) bool { return strings.Contains(err.Error(), "repository is required") },
		},
		{
			name:    "missing file option",
			options: map[string]any{"repository": dir},
			check:   func(err error) bool { return strings.Contains(err.Error(), "file is required") },
		},
		{
			name:    "file not in commit",
			options: map[string]any{"repository": dir, "file": "missing.yaml"},
			check:   func(err error) bool { return errors.Is(err, source.ErrFileNotFound) },
		},
		{
			name:    "unknown ref",
			options: map[string]any{"repository": dir, "file": "config.yaml", "ref": "nope"},
			check:   func(err error) bool { return strings.Contains(err.Error(), "failed to resolve ref") },
		},
		{
			name:    "wrong format",
			options: map[string]any{"repository": dir, "file": "config.yaml", "format": "json"},
			check: func(err error) bool {
				var pe *source.ParseError
				return errors.As(err, &pe) && strings.Contains(pe.Path, "config.yaml@")
			},
		},
		{
			name:    "not a repository",
			options: map[string]any{"repository": t.TempDir(), "file": "config.yaml"},
			check:   func(err error) bool { return strings.Contains(err.Error(), "failed to open repository") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Load(context.Background(), tt.options, source.LoadContext{})
			if err == nil || !tt.check(err) {
				t.Errorf("Load() error = %v", err)
			}
		})
	}
}

func TestAuthMethod(t *testing.T) {
	lc := source.LoadContext{Env: map[string]string{"GIT_TOKEN": "from-env"}}

	auth, err := authMethod(Options{TokenEnv: "GIT_TOKEN"}, lc)
	if err != nil {
		t.Fatalf("authMethod() error = %v", err)
	}
	if auth == nil || auth.Name() != "http-basic-auth" {
		t.Errorf("authMethod() = %v, want basic auth", auth)
	}

	auth, err = authMethod(Options{}, lc)
	if err != nil || auth != nil {
		t.Errorf("authMethod() = %v, %v; want nil, nil", auth, err)
	}

	key := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(key, []byte("not a key"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := authMethod(Options{SSHKey: key}, lc); err == nil || !strings.Contains(err.Error(), "too open") {
		t.Errorf("authMethod() error = %v, want permissions error", err)
	}
}

func TestIsRemote(t *testing.T) {
	for repo, want := range map[string]bool{
		"https://github.com/org/repo.git": true,
		"git@github.com:org/repo.git":     true,
		"ssh://git@host/repo":             true,
		"./configs":                       false,
		"/srv/configs":                    false,
	} {
		if got := isRemote(repo); got != want {
			t.Errorf("isRemote(%q) = %v, want %v", repo, got, want)
		}
	}
}
