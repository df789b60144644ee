package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

// ReadManifest loads the list of generated files.
func ReadManifest(path string) (*model.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("manifest %s: %w", path, apperrors.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m model.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if m.Files == nil {
		m.Files = map[string][]string{}
	}
	return &m, nil
}

// WriteManifest writes m as indented JSON, creating the directory if needed.
func WriteManifest(path string, m *model.Manifest) error {
	if m.Files == nil {
		m.Files = map[string][]string{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
