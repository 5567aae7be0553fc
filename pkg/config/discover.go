package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileNames are the rules file names [Discover] looks for.
var FileNames = []string{".patsub.yaml", ".patsub.yml"}

// UserPath returns the path of the user's rules file, in $XDG_CONFIG_HOME
// or ~/.config. It returns an empty string when neither is known.
func UserPath() string {
	if xdgHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgHome != "" {
		return filepath.Join(xdgHome, "patsub", "config.yaml")
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".config", "patsub", "config.yaml")
	}

	return ""
}

// Discover returns the first of [FileNames] found in dir or one of its
// parents. When there is none, it returns [UserPath] if that file exists,
// and otherwise an empty string.
func Discover(dir string) (string, error) {
	searchDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(searchDir, name)

			ok, err := isFile(path)
			if err != nil {
				return "", err
			}
			if ok {
				return path, nil
			}
		}

		parent := filepath.Dir(searchDir)
		if parent == searchDir {
			break
		}

		searchDir = parent
	}

	userPath := UserPath()
	if userPath == "" {
		return "", nil
	}

	ok, err := isFile(userPath)
	if err != nil || !ok {
		return "", err
	}

	return userPath, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	return info.Mode().IsRegular(), nil
}
