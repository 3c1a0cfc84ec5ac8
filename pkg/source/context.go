package source

import (
	"os"

	"github.com/caarlos0/env/v11"
)

// LoadContext carries the per-run values shared by every loader. It is
// built once per pipeline run and loaders must treat it as read-only.
type LoadContext struct {
	// Profile is the active profile name.
	Profile string

	// Cwd is the directory relative file paths are resolved against.
	Cwd string

	// Env is a snapshot of the environment variables.
	Env map[string]string
}

// NewLoadContext builds a context from the process environment and working
// directory.
func NewLoadContext(profile string) (LoadContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return LoadContext{}, err
	}
	return LoadContext{
		Profile: profile,
		Cwd:     cwd,
		Env:     EnvironSnapshot(),
	}, nil
}

// EnvironSnapshot returns a copy of the process environment.
func EnvironSnapshot() map[string]string {
	return env.ToMap(os.Environ())
}

// Lookup returns the environment variable name from the snapshot.
func (lc LoadContext) Lookup(name string) (string, bool) {
	v, ok := lc.Env[name]
	return v, ok
}
