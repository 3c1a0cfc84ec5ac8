package interpolate

import (
	"strings"
	"unicode"

	"mercator-hq/confkit/pkg/tree"
)

// Resolver is one lookup strategy for a placeholder identifier.
type Resolver interface {
	// Name identifies the strategy in logs and tests.
	Name() string

	// Resolve returns the value for id and whether it was found.
	Resolve(id string) (any, bool)
}

// EnvResolver looks identifiers up in an environment snapshot.
type EnvResolver struct {
	Env map[string]string
}

// Name implements Resolver.
func (EnvResolver) Name() string { return "env" }

// Resolve implements Resolver.
func (r EnvResolver) Resolve(id string) (any, bool) {
	v, ok := r.Env[id]
	return v, ok
}

// PathResolver looks identifiers up as dot-paths in a configuration tree.
type PathResolver struct {
	Root map[string]any
}

// Name implements Resolver.
func (PathResolver) Name() string { return "path" }

// Resolve implements Resolver.
func (r PathResolver) Resolve(id string) (any, bool) {
	if id == "" {
		return nil, false
	}
	return tree.Get(r.Root, id)
}

// IsEnvLike reports whether id should be tried as an environment variable
// before being tried as a path: it contains an underscore, or it has at
// least one letter and no lower-case letters.
func IsEnvLike(id string) bool {
	if strings.Contains(id, "_") {
		return true
	}
	hasLetter := false
	for _, r := range id {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// Order returns the strategies to try for id, in order.
func Order(id string, env EnvResolver, path PathResolver) []Resolver {
	if IsEnvLike(id) {
		return []Resolver{env, path}
	}
	return []Resolver{path, env}
}
