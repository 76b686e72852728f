package docconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Save validates and writes the template configuration to path. The format
// follows the file extension, matching Load. The write is atomic: content
// goes to a temp file in the target directory and is renamed into place.
func Save(path string, tpl *Template) error {
	if err := tpl.Validate(); err != nil {
		return err
	}
	raw, err := encode(path, tpl)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write template config %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write template config %s: %w", path, err)
	}
	return nil
}

func encode(path string, tpl *Template) ([]byte, error) {
	if isYAMLPath(path) {
		raw, err := yaml.Marshal(tpl)
		if err != nil {
			return nil, fmt.Errorf("failed to encode template config: %w", err)
		}
		return raw, nil
	}
	raw, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode template config: %w", err)
	}
	return append(raw, '\n'), nil
}
