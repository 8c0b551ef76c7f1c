package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"pages", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--log-level", "error"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "especies")
	assert.Contains(t, out.String(), "top_nacional")
	assert.Equal(t, "error", cfg.Logging.Level)
}
