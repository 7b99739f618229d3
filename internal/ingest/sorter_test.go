package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSorterMovesExports(t *testing.T) {
	sourceDir := t.TempDir()
	dataDir := filepath.Join(t.TempDir(), "transactions")

	writeFile(t, sourceDir, "activity.csv", "amex data")
	writeFile(t, sourceDir, "Chase6708_Activity_20250314.CSV", "checking data")
	writeFile(t, sourceDir, "Chase6031_Activity_20250314.CSV", "savings data")
	writeFile(t, sourceDir, "unrelated.txt", "leave me alone")

	sorter := NewSorter(sourceDir, dataDir, DefaultSortRules())
	moved, err := sorter.Sort()
	require.NoError(t, err)
	assert.Len(t, moved, 3)

	assertFileContent(t, filepath.Join(dataDir, "amex.csv"), "amex data")
	assertFileContent(t, filepath.Join(dataDir, "chase-checking.csv"), "checking data")
	assertFileContent(t, filepath.Join(dataDir, "chase-savings.csv"), "savings data")

	// Sources are gone, unmatched files stay put.
	assert.NoFileExists(t, filepath.Join(sourceDir, "activity.csv"))
	assert.FileExists(t, filepath.Join(sourceDir, "unrelated.txt"))
}

func TestSorterOverwritesExistingTarget(t *testing.T) {
	sourceDir := t.TempDir()
	dataDir := t.TempDir()

	writeFile(t, dataDir, "amex.csv", "stale download")
	writeFile(t, sourceDir, "activity.csv", "fresh download")

	sorter := NewSorter(sourceDir, dataDir, DefaultSortRules())
	_, err := sorter.Sort()
	require.NoError(t, err)

	assertFileContent(t, filepath.Join(dataDir, "amex.csv"), "fresh download")
}

func TestSorterEmptySourceDirectory(t *testing.T) {
	sorter := NewSorter(t.TempDir(), t.TempDir(), DefaultSortRules())

	moved, err := sorter.Sort()
	require.NoError(t, err)
	assert.Empty(t, moved)
}

func TestSorterMissingSourceDirectory(t *testing.T) {
	sorter := NewSorter("/nonexistent/downloads", t.TempDir(), DefaultSortRules())

	_, err := sorter.Sort()
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func assertFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}
