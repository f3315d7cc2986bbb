// Package home manages the invox home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the invox home directory.
	DefaultDirName = ".invox"

	// GridsDirName is the subdirectory for saved text grids.
	GridsDirName = "grids"

	// ResultsDirName is the subdirectory for extraction results.
	ResultsDirName = "results"

	// TmpDirName is the subdirectory for uploaded files being processed.
	TmpDirName = "tmp"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the invox home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.invox).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// GridsDir returns the directory for saved text grids.
func (d *Dir) GridsDir() string {
	return filepath.Join(d.path, GridsDirName)
}

// GridPath returns the debug grid path for a document, keyed by content hash.
func (d *Dir) GridPath(contentHash string) string {
	return filepath.Join(d.GridsDir(), contentHash+".txt")
}

// ResultsDir returns the directory for extraction result files.
func (d *Dir) ResultsDir() string {
	return filepath.Join(d.path, ResultsDirName)
}

// ResultPath returns the result path for a document, keyed by content hash.
func (d *Dir) ResultPath(contentHash string) string {
	return filepath.Join(d.ResultsDir(), contentHash+".json")
}

// TmpDir returns the directory for in-flight uploads.
func (d *Dir) TmpDir() string {
	return filepath.Join(d.path, TmpDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.GridsDir(), d.ResultsDir(), d.TmpDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
