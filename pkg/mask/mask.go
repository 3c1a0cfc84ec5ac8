package mask

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mercator-hq/confkit/pkg/tree"
)

// Placeholder replaces fully masked values.
const Placeholder = "***"

// Built-in value pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternURLPassword = "url_password"
	PatternPrivateKey  = "private_key"
)

// DefaultSensitiveKeys are matched case-insensitively as substrings of a
// key name. Separators are ignored, so "apiKey", "api_key" and "API-KEY"
// all match "apikey".
var DefaultSensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "apikey",
	"auth", "credential",
	"privatekey", "encryptionkey",
}

// Pattern is a named value rewrite.
type Pattern struct {
	Name        string `yaml:"name" json:"name"`
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

type compiledPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Masker redacts sensitive keys and values. It is safe for concurrent use
// once built.
type Masker struct {
	keys     []string
	patterns []compiledPattern
}

// Option configures a Masker.
type Option func(*Masker) error

// WithSensitiveKeys adds key fragments to the default set.
func WithSensitiveKeys(keys ...string) Option {
	return func(m *Masker) error {
		for _, k := range keys {
			if k = normalizeKey(k); k != "" {
				m.keys = append(m.keys, k)
			}
		}
		return nil
	}
}

// WithPatterns adds value patterns applied after the built-in ones.
func WithPatterns(patterns ...Pattern) Option {
	return func(m *Masker) error {
		for _, p := range patterns {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return fmt.Errorf("invalid mask pattern %q: %w", p.Name, err)
			}
			m.patterns = append(m.patterns, compiledPattern{name: p.Name, regex: re, replacement: p.Replacement})
		}
		return nil
	}
}

// New returns a Masker with the default keys and patterns. It panics only
// if an option fails; use NewMasker to handle option errors.
func New(opts ...Option) *Masker {
	m, err := NewMasker(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMasker returns a Masker with the default keys and patterns plus the
// given options.
func NewMasker(opts ...Option) (*Masker, error) {
	m := &Masker{}
	for _, k := range DefaultSensitiveKeys {
		m.keys = append(m.keys, normalizeKey(k))
	}
	m.addDefaultPatterns()
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Masker) addDefaultPatterns() {
	defaults := []struct {
		name        string
		regex       string
		replacement string
	}{
		{PatternPrivateKey, `-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`, "-----PRIVATE KEY " + Placeholder + "-----"},
		{PatternURLPassword, `([a-zA-Z][a-zA-Z0-9+.-]*://[^:/@\s]+:)[^@/\s]+@`, "${1}" + Placeholder + "@"},
		{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer " + Placeholder},
		{PatternAPIKey, `\b(sk|pk|rk)-[a-zA-Z0-9_-]{8,}`, "${1}-" + Placeholder},
		{PatternPassword, `(?i)(password|passwd|pwd)[:=]\s*[^\s&;]+`, "${1}=" + Placeholder},
	}
	for _, p := range defaults {
		m.patterns = append(m.patterns, compiledPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
}

// IsSensitiveKey reports whether a key name looks like it holds a secret.
func (m *Masker) IsSensitiveKey(key string) bool {
	k := normalizeKey(key)
	if k == "" {
		return false
	}
	for _, s := range m.keys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// String rewrites the secret-looking parts of s.
func (m *Masker) String(s string) string {
	if s == "" {
		return s
	}
	for _, p := range m.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// Value hides v entirely. Long strings keep a short prefix.
func Value(v any) any {
	s, ok := v.(string)
	if !ok {
		return Placeholder
	}
	if len(s) <= 8 {
		return Placeholder
	}
	return s[:2] + Placeholder
}

// Tree returns a copy of data with sensitive values hidden. A value is
// hidden when its own key, or the key of any enclosing map, is sensitive,
// or when its dot path or an ancestor path is listed in paths. Remaining
// strings are rewritten with String.
func (m *Masker) Tree(data map[string]any, paths []string) map[string]any {
	forced := make(map[string]bool, len(paths))
	for _, p := range paths {
		forced[p] = true
	}
	out, _ := m.mask(data, nil, false, forced).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

func (m *Masker) mask(v any, segs []string, hide bool, forced map[string]bool) any {
	if !hide && len(segs) > 0 && forced[tree.Join(segs...)] {
		hide = true
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = m.mask(child, append(segs, k), hide || m.IsSensitiveKey(k), forced)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = m.mask(child, append(segs, strconv.Itoa(i)), hide, forced)
		}
		return out
	case nil:
		return nil
	case string:
		if hide {
			return Value(t)
		}
		return m.String(t)
	default:
		if hide {
			return Placeholder
		}
		return v
	}
}

// Args redacts slog-style key/value pairs: values under sensitive keys are
// hidden and remaining strings are rewritten.
func (m *Masker) Args(args ...any) []any {
	out := make([]any, len(args))
	copy(out, args)
	for i := 1; i < len(out); i += 2 {
		if key, ok := out[i-1].(string); ok && m.IsSensitiveKey(key) {
			out[i] = Value(out[i])
			continue
		}
		if s, ok := out[i].(string); ok {
			out[i] = m.String(s)
		}
	}
	return out
}

// PatternNames returns the sorted names of the active value patterns.
func (m *Masker) PatternNames() []string {
	names := make([]string, 0, len(m.patterns))
	for _, p := range m.patterns {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(k) {
		if r == '_' || r == '-' || r == '.' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
