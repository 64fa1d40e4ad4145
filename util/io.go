package util

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

func FileExists(file string) bool {
	_, err := os.Stat(file)
	return !errors.Is(err, os.ErrNotExist)
}

func ReadJSONFromFile[T any](file string) (T, error) {
	var value T
	data, err := os.ReadFile(file)
	if err != nil {
		return value, eris.Wrapf(err, "util: read %s", file)
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, eris.Wrapf(err, "util: decode %s", file)
	}
	return value, nil
}

// Writes value as indented json, parent directories are created if missing.
func WriteJSONToFile[T any](value T, file string) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "util: encode %s", file)
	}
	return WriteBytesToFile(data, file)
}

func WriteBytesToFile(data []byte, file string) error {
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "util: create directory %s", dir)
		}
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return eris.Wrapf(err, "util: write %s", file)
	}
	return nil
}
