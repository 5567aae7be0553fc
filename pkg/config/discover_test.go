package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/patsub/pkg/config"
)

//nolint:paralleltest // We need to set environment variables, so run tests sequentially.
func TestUserPath(t *testing.T) {
	tcs := map[string]struct {
		setupEnv func(t *testing.T)
		want     string
	}{
		"XDG_CONFIG_HOME is set": {
			setupEnv: func(t *testing.T) {
				t.Helper()
				t.Setenv("XDG_CONFIG_HOME", "/custom/config")
			},
			want: "/custom/config/patsub/config.yaml",
		},
		"XDG_CONFIG_HOME is empty and HOME is set": {
			setupEnv: func(t *testing.T) {
				t.Helper()
				t.Setenv("XDG_CONFIG_HOME", "")
				t.Setenv("HOME", "/test/home")
			},
			want: "/test/home/.config/patsub/config.yaml",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			tc.setupEnv(t)

			assert.Equal(t, tc.want, config.UserPath())
		})
	}
}

//nolint:paralleltest // We need to set environment variables, so run tests sequentially.
func TestDiscover(t *testing.T) {
	write := func(t *testing.T, path string) {
		t.Helper()

		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte("kind: Configuration\n"), 0o600))
	}

	t.Run("found in parent directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		root := t.TempDir()
		want := filepath.Join(root, ".patsub.yml")
		write(t, want)

		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0o700))

		got, err := config.Discover(nested)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("nearest file wins", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		root := t.TempDir()
		write(t, filepath.Join(root, ".patsub.yaml"))

		want := filepath.Join(root, "a", ".patsub.yaml")
		write(t, want)

		got, err := config.Discover(filepath.Join(root, "a"))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("falls back to user path", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)

		want := filepath.Join(xdg, "patsub", "config.yaml")
		write(t, want)

		got, err := config.Discover(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		got, err := config.Discover(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
