package source

import (
	"bufio"
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"mercator-hq/confkit/pkg/tree"
)

// DotenvNestSeparator splits dotenv keys into nested paths.
const DotenvNestSeparator = "__"

// ParseDotenv parses KEY=value lines. Blank lines and lines starting with #
// are skipped, an optional leading "export " is ignored, the value is
// everything after the first '=' with surrounding quotes removed. Escape
// sequences \n \r \t \" \\ \$ \! and \` are expanded only inside double
// quotes. Values are never expanded, ${...} is left to the interpolation
// stage.
func ParseDotenv(data []byte) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		text = strings.TrimPrefix(text, "export ")

		key, value, ok := strings.Cut(text, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &ParseError{
				Format: FormatDotenv,
				Line:   line,
				Cause:  fmt.Errorf("expected KEY=value, got %q", text),
			}
		}
		out[key] = unquote(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Format: FormatDotenv, Cause: err}
	}
	return out, nil
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	switch {
	case first == '"' && last == '"':
		return unescape(value[1 : len(value)-1])
	case first == '\'' && last == '\'':
		return value[1 : len(value)-1]
	default:
		return value
	}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\', '$', '!', '`':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// NestDotenv converts flat dotenv keys into a tree, splitting keys on "__".
// Key segments are kept verbatim. Keys are applied in sorted order.
func NestDotenv(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		value := values[key]
		var segments []string
		for _, seg := range strings.Split(key, DotenvNestSeparator) {
			if seg != "" {
				segments = append(segments, seg)
			}
		}
		tree.SetPath(out, segments, value)
	}
	return out
}

// MarshalDotenv renders leaves, a map of dot paths to values, as
// environment assignments that EnvLoader with the same prefix reads back.
// Lines are sorted.
func MarshalDotenv(leaves map[string]any, prefix string) (string, error) {
	env := make(map[string]string, len(leaves))
	for path, value := range leaves {
		text, err := dotenvValue(value)
		if err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", path, err)
		}
		env[prefix+PathToKey(path, DefaultSeparator)] = text
	}
	out, err := godotenv.Marshal(env)
	if err != nil {
		return "", err
	}
	if out != "" {
		out += "\n"
	}
	return out, nil
}

func dotenvValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
