package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err, "should get home directory")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "no tilde", input: "/absolute/path", expected: "/absolute/path"},
		{name: "relative path without tilde", input: "relative/path", expected: "relative/path"},
		{name: "tilde only", input: "~", expected: homeDir},
		{name: "tilde with slash", input: "~/.platconn/config.yaml", expected: filepath.Join(homeDir, ".platconn", "config.yaml")},
		{name: "tilde username is not expanded", input: "~bob/config", expected: "~bob/config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGetConfigFile(t *testing.T) {
	t.Run("env var takes precedence", func(t *testing.T) {
		t.Setenv("PLATCONN_CONFIG", "/etc/platconn/config.yaml")
		path, err := GetConfigFile()
		require.NoError(t, err)
		assert.Equal(t, "/etc/platconn/config.yaml", path)
	})

	t.Run("defaults under home", func(t *testing.T) {
		t.Setenv("PLATCONN_CONFIG", "")
		path, err := GetConfigFile()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(".platconn", "config.yaml"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
	})
}
