package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies the loader responsible for a Source.
type Kind string

const (
	// KindEnv reads environment variables.
	KindEnv Kind = "env"
	// KindFile reads a JSON, YAML or dotenv file.
	KindFile Kind = "file"
	// KindObject returns an in-memory map.
	KindObject Kind = "object"
	// KindPlugin delegates to a registered plugin.
	KindPlugin Kind = "plugin"
)

// Format is a file encoding understood by the file loader.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatDotenv Format = "dotenv"
)

// ProfilePlaceholder is replaced by the active profile in file paths.
const ProfilePlaceholder = "${PROFILE}"

// DefaultSeparator is the env loader nesting delimiter.
const DefaultSeparator = "__"

// Source describes one origin of configuration data. Only the fields that
// belong to its Kind are meaningful.
type Source struct {
	Kind Kind `yaml:"kind" json:"kind"`

	// Env
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Separator string `yaml:"separator,omitempty" json:"separator,omitempty"`

	// File
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Format   Format `yaml:"format,omitempty" json:"format,omitempty"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`

	// Object
	Data map[string]any `yaml:"data,omitempty" json:"data,omitempty"`

	// Plugin
	Name    string         `yaml:"name,omitempty" json:"name,omitempty"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// Env returns an environment source. An empty prefix selects every variable.
func Env(prefix string) Source {
	return Source{Kind: KindEnv, Prefix: prefix}
}

// File returns a required file source.
func File(path string) Source {
	return Source{Kind: KindFile, Path: path}
}

// OptionalFile returns a file source that yields an empty tree when the file
// does not exist.
func OptionalFile(path string) Source {
	return Source{Kind: KindFile, Path: path, Optional: true}
}

// Object returns a source that yields data.
func Object(data map[string]any) Source {
	return Source{Kind: KindObject, Data: data}
}

// PluginSource returns a source served by the named plugin.
func PluginSource(name string, options map[string]any) Source {
	return Source{Kind: KindPlugin, Name: name, Options: options}
}

// WithFormat returns a copy of s with an explicit file format.
func (s Source) WithFormat(f Format) Source {
	s.Format = f
	return s
}

// WithSeparator returns a copy of s with a custom env nesting separator.
func (s Source) WithSeparator(sep string) Source {
	s.Separator = sep
	return s
}

// Validate checks that the fields required by the Kind are present.
func (s Source) Validate() error {
	switch s.Kind {
	case KindEnv, KindObject:
		return nil
	case KindFile:
		if s.Path == "" {
			return fmt.Errorf("file source requires a path")
		}
		switch s.Format {
		case "", FormatJSON, FormatYAML, FormatDotenv:
			return nil
		default:
			return fmt.Errorf("unsupported file format %q", s.Format)
		}
	case KindPlugin:
		if s.Name == "" {
			return fmt.Errorf("plugin source requires a name")
		}
		return nil
	case "":
		return fmt.Errorf("source kind is required")
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}
}

// Resolve returns a copy of s with the profile placeholder in a file path
// substituted. Other kinds are returned unchanged.
func (s Source) Resolve(lc LoadContext) Source {
	if s.Kind == KindFile {
		s.Path = strings.ReplaceAll(s.Path, ProfilePlaceholder, lc.Profile)
	}
	return s
}

// Label returns the human-readable name recorded in provenance.
func (s Source) Label() string {
	switch s.Kind {
	case KindFile:
		return "file:" + s.Path
	case KindPlugin:
		return "plugin:" + s.Name
	default:
		return string(s.Kind)
	}
}

// IsFile reports whether s is backed by a file and can be watched.
func (s Source) IsFile() bool {
	return s.Kind == KindFile
}

// AbsPath resolves a file source path against the working directory of lc
// after substituting the profile.
func (s Source) AbsPath(lc LoadContext) (string, error) {
	p := s.Resolve(lc).Path
	if !filepath.IsAbs(p) && lc.Cwd != "" {
		p = filepath.Join(lc.Cwd, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", p, err)
	}
	return abs, nil
}

// DetectFormat returns the explicit format of s or the one implied by the
// file extension. Unknown extensions are treated as JSON.
func (s Source) DetectFormat() Format {
	if s.Format != "" {
		return s.Format
	}
	return FormatFromPath(s.Path)
}

// FormatFromPath infers a format from a file name.
func FormatFromPath(path string) Format {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ".yaml"), strings.HasSuffix(base, ".yml"):
		return FormatYAML
	case strings.HasSuffix(base, ".env"), strings.HasPrefix(base, ".env."):
		return FormatDotenv
	default:
		return FormatJSON
	}
}
