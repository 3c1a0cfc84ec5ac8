package source

import (
	"bytes"
	"context"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"

	"mercator-hq/confkit/pkg/tree"
)

var (
	intPattern   = regexp.MustCompile(`^-?\d+$`)
	floatPattern = regexp.MustCompile(`^-?\d+\.\d+$`)
)

// EnvLoader maps environment variables from the load context to a tree.
type EnvLoader struct{}

// Name implements Loader.
func (EnvLoader) Name() string { return string(KindEnv) }

// Load implements Loader.
func (EnvLoader) Load(_ context.Context, src Source, lc LoadContext) (map[string]any, error) {
	sep := src.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	prefix := strings.ToUpper(src.Prefix)

	// Sorted so keys that collide after translation always resolve the same
	// way: the later key in byte order wins.
	out := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(lc.Env)) {
		value := lc.Env[key]
		if !strings.HasPrefix(strings.ToUpper(key), prefix) {
			continue
		}
		segments := KeyToSegments(key[len(prefix):], sep)
		if len(segments) == 0 {
			continue
		}
		tree.SetPath(out, segments, Coerce(value))
	}
	return out, nil
}

// KeyToSegments converts an environment key (without prefix) to path
// segments. sep separates nesting levels; inside a segment single
// underscores become camelCase word breaks. Empty segments are dropped.
func KeyToSegments(key, sep string) []string {
	var segments []string
	for _, raw := range strings.Split(key, sep) {
		if seg := camelCase(raw); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// KeyToPath is KeyToSegments joined with dots.
func KeyToPath(key, sep string) string {
	return strings.Join(KeyToSegments(key, sep), tree.Separator)
}

// PathToKey is the inverse of KeyToPath: camelCase segments become
// upper-case words joined by "_" and nesting levels are joined by sep.
func PathToKey(path, sep string) string {
	segments := tree.Split(path)
	for i, seg := range segments {
		var b strings.Builder
		for j, r := range seg {
			if j > 0 && unicode.IsUpper(r) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToUpper(r))
		}
		segments[i] = b.String()
	}
	return strings.Join(segments, sep)
}

func camelCase(segment string) string {
	var b strings.Builder
	for _, word := range strings.Split(segment, "_") {
		if word == "" {
			continue
		}
		word = strings.ToLower(word)
		if b.Len() == 0 {
			b.WriteString(word)
			continue
		}
		r := []rune(word)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// Coerce converts an environment string to the most specific value it
// represents: int, float64, bool, a decoded JSON array or object, or the
// string itself.
func Coerce(value string) any {
	switch {
	case intPattern.MatchString(value):
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case floatPattern.MatchString(value):
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case strings.EqualFold(value, "true"):
		return true
	case strings.EqualFold(value, "false"):
		return false
	}

	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if v, err := decodeJSON([]byte(trimmed)); err == nil {
			return v
		}
	}
	return value
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errTrailingData
	}
	return normalizeNumbers(v), nil
}
