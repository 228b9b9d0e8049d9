package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRenderedCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "q1", "gap_matrix.md")
	require.NoError(t, writeRendered(path, "# Salesforce SBS Gap Matrix\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Salesforce SBS Gap Matrix\n", string(data))
}
