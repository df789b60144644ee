package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

// Resolve turns a file name or glob pattern into an existing path.
//
// Lookup order: name as given, name inside each dir, then the glob name matched
// inside each dir, where the most recently modified match wins. Office lock files
// (containing "~") are never returned.
func Resolve(name string, dirs []string, logger *zap.Logger) (string, error) {
	if name == "" {
		return "", fmt.Errorf("no filename provided: %w", apperrors.ErrSourceNotFound)
	}
	if fileExists(name) {
		logger.Debug("resolved file", zap.String("name", name), zap.String("path", name))
		return name, nil
	}
	for _, d := range dirs {
		p := filepath.Join(d, name)
		if fileExists(p) {
			logger.Debug("resolved file", zap.String("name", name), zap.String("path", p))
			return p, nil
		}
	}

	patterns := []string{name}
	for _, d := range dirs {
		patterns = append(patterns, filepath.Join(d, name))
	}

	var (
		best    string
		bestMod int64
	)
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return "", fmt.Errorf("bad pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if strings.Contains(filepath.Base(m), "~") {
				continue
			}
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if mod := info.ModTime().UnixNano(); best == "" || mod > bestMod {
				best, bestMod = m, mod
			}
		}
	}
	if best == "" {
		return "", fmt.Errorf("%s not found in %v: %w", name, dirs, apperrors.ErrSourceNotFound)
	}
	logger.Debug("resolved file", zap.String("name", name), zap.String("path", best))
	return best, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// ResolveSource resolves name like Resolve, but accepts a sheet id when no
// local file matches.
func ResolveSource(name string, dirs []string, logger *zap.Logger) (string, error) {
	path, err := Resolve(name, dirs, logger)
	if errors.Is(err, apperrors.ErrSourceNotFound) && IsSheetID(name) {
		logger.Debug("no local file, using sheet id", zap.String("name", name))
		return name, nil
	}
	return path, err
}
