package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the configuration file looked up in the search path.
const FileName = "tgnotify.yaml"

// ErrNotFound is returned when no configuration file exists in the search
// path and no explicit path was given.
var ErrNotFound = errors.New("config: no configuration file found")

// SearchPaths returns the candidate configuration files in lookup order:
// $XDG_CONFIG_HOME/tgnotify (or ~/.config/tgnotify), then the working
// directory.
func SearchPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "tgnotify", FileName))
	}
	return append(paths, FileName)
}

// ResolvePath returns explicit when set, otherwise the first existing file
// from SearchPaths.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNotFound
}

// LoadOrEnv loads the resolved configuration file. When no file exists and
// none was requested explicitly, it falls back to FromEnv.
func LoadOrEnv(explicit string) (*Config, string, error) {
	path, err := ResolvePath(explicit)
	if errors.Is(err, ErrNotFound) {
		cfg, envErr := FromEnv()
		if envErr != nil {
			return nil, "", fmt.Errorf("%w: %w", err, envErr)
		}
		return cfg, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		if explicit == "" && errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return cfg, path, nil
}
