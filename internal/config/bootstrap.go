package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// EnsureUserConfig makes sure a config.yml exists in the data dir: it copies
// the packaged default when present, otherwise writes the built-in defaults.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if err == nil {
		defer src.Close()
		dst, err := os.Create(userPath)
		if err != nil {
			return "", err
		}
		defer dst.Close()
		if _, err := io.Copy(dst, src); err != nil {
			return "", err
		}
		return userPath, nil
	}

	// No packaged default shipped next to the binary: write builtins.
	if err := SaveAtomic(userPath, Defaults()); err != nil {
		return "", err
	}
	return userPath, nil
}
