package interpolate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// DefaultMaxDepth bounds nested expansion when Options.MaxDepth is zero.
const DefaultMaxDepth = 10

const (
	fallbackSep  = ":-"
	secretPrefix = "secret:"
)

// placeholderRegex matches ${identifier} tokens.
var placeholderRegex = regexp.MustCompile(`\$\{([^}]*)\}`)

// SecretLookup resolves ${secret:name} placeholders.
type SecretLookup interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Options configures an Engine.
type Options struct {
	// MaxDepth bounds nested expansion. Zero means DefaultMaxDepth.
	MaxDepth int

	// Secrets resolves ${secret:name} placeholders. When nil those
	// placeholders are treated like any other identifier.
	Secrets SecretLookup
}

// Engine expands placeholders against one configuration tree and one
// environment snapshot.
type Engine struct {
	env      EnvResolver
	path     PathResolver
	secrets  SecretLookup
	maxDepth int
}

// New creates an engine that resolves paths against root and environment
// variables against env. root is read, never modified.
func New(root map[string]any, env map[string]string, opts Options) *Engine {
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	return &Engine{
		env:      EnvResolver{Env: env},
		path:     PathResolver{Root: root},
		secrets:  opts.Secrets,
		maxDepth: depth,
	}
}

// Interpolate returns a copy of data with every string leaf expanded,
// including strings inside arrays.
func Interpolate(ctx context.Context, data map[string]any, env map[string]string, opts Options) (map[string]any, error) {
	return New(data, env, opts).Tree(ctx)
}

// Tree expands every string leaf of the engine's root and returns the
// result as a new tree.
func (e *Engine) Tree(ctx context.Context) (map[string]any, error) {
	out, err := e.walk(ctx, e.path.Root)
	if err != nil {
		return nil, err
	}
	m, _ := out.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func (e *Engine) walk(ctx context.Context, v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			r, err := e.walk(ctx, child)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			r, err := e.walk(ctx, child)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case string:
		return e.Expand(ctx, t)
	default:
		return v, nil
	}
}

// Expand resolves the placeholders in s.
// An identifier joins the resolving stack only once its value is itself
// expanded, so "${DATABASE_URL}" stored under DATABASE_URL passes the
// environment value through.
func (e *Engine) Expand(ctx context.Context, s string) (string, error) {
	return e.expand(ctx, s, nil, 0)
}

func (e *Engine) expand(ctx context.Context, s string, stack []string, depth int) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	var firstErr error
	out := placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		inner := match[2 : len(match)-1]
		value, err := e.resolveToken(ctx, inner, stack, depth)
		if err != nil {
			firstErr = err
			return match
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (e *Engine) resolveToken(ctx context.Context, inner string, stack []string, depth int) (string, error) {
	id, fallback, hasFallback := strings.Cut(inner, fallbackSep)
	id = strings.TrimSpace(id)

	for _, seen := range stack {
		if seen == id {
			chain := append(append([]string{}, stack...), id)
			return "", &CircularReferenceError{Chain: chain}
		}
	}
	if depth >= e.maxDepth {
		return "", &DepthExceededError{Identifier: id, MaxDepth: e.maxDepth}
	}

	value, found, err := e.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if !found {
		if !hasFallback {
			return "", nil
		}
		value = fallback
	}

	text := stringify(value)
	if !strings.Contains(text, "${") {
		return text, nil
	}
	next := append(append(make([]string, 0, len(stack)+1), stack...), id)
	return e.expand(ctx, text, next, depth+1)
}

func (e *Engine) lookup(ctx context.Context, id string) (any, bool, error) {
	if e.secrets != nil && strings.HasPrefix(id, secretPrefix) {
		name := strings.TrimSpace(strings.TrimPrefix(id, secretPrefix))
		v, err := e.secrets.GetSecret(ctx, name)
		if err != nil {
			return nil, false, &SecretError{Name: name, Cause: err}
		}
		return v, true, nil
	}
	for _, r := range Order(id, e.env, e.path) {
		if v, ok := r.Resolve(id); ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// stringify renders a resolved value for substitution. Maps and slices are
// rendered as JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
