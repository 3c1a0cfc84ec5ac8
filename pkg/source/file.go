package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileLoader reads JSON, YAML and dotenv files.
type FileLoader struct{}

// Name implements Loader.
func (FileLoader) Name() string { return string(KindFile) }

// Load implements Loader. A missing optional file yields an empty tree; a
// missing required file yields *FileNotFoundError. Decoding failures yield
// *ParseError carrying the absolute path.
func (FileLoader) Load(ctx context.Context, src Source, lc LoadContext) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := src.AbsPath(lc)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the caller's source list
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if src.Optional {
				return map[string]any{}, nil
			}
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	format := src.Resolve(lc).DetectFormat()
	m, err := Parse(data, format)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Format: format, Cause: err}
	}
	return m, nil
}
