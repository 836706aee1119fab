package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrEngineNotFound is wrapped by every failure to locate or start the engine.
var ErrEngineNotFound = errors.New("engine not found")

// ResolveEnginePath joins a relative engine path onto installDir (the
// directory of the running executable when empty) and cleans the result.
// Absolute paths are returned cleaned but otherwise unchanged.
func ResolveEnginePath(path, installDir string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: engine path is empty", ErrEngineNotFound)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if installDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("%w: cannot determine install dir: %v", ErrEngineNotFound, err)
		}
		installDir = filepath.Dir(exe)
	}
	return filepath.Clean(filepath.Join(installDir, path)), nil
}

// locate checks that path names an existing regular file, trying the ".exe"
// suffix on Windows when the bare name is missing.
func locate(path string) (string, error) {
	candidates := []string{path}
	if runtime.GOOS == "windows" && filepath.Ext(path) == "" {
		candidates = append(candidates, path+".exe")
	}
	for _, c := range candidates {
		fi, err := os.Stat(c)
		if err != nil {
			continue
		}
		if fi.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrEngineNotFound, c)
		}
		return c, nil
	}
	return "", fmt.Errorf("%w: %s", ErrEngineNotFound, path)
}
