package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("# test\n"), 0644))
}

func TestFindTestFiles_SingleFileTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_login.py")
	writeFile(t, path)

	files, err := FindTestFiles(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFindTestFiles_MissingTarget(t *testing.T) {
	_, err := FindTestFiles(filepath.Join(t.TempDir(), "missing"), nil, nil)
	assert.Error(t, err)
}

func TestFindTestFiles_DefaultPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "test_auth.py"))
	writeFile(t, filepath.Join(dir, "auth_test.py"))
	writeFile(t, filepath.Join(dir, "sub", "test_db.py"))
	writeFile(t, filepath.Join(dir, "helpers.py"))
	writeFile(t, filepath.Join(dir, "app.spec.js"))

	files, err := FindTestFiles(dir, nil, nil)
	require.NoError(t, err)

	assert.Contains(t, files, filepath.Join(dir, "test_auth.py"))
	assert.Contains(t, files, filepath.Join(dir, "auth_test.py"))
	assert.Contains(t, files, filepath.Join(dir, "sub", "test_db.py"))
	assert.Contains(t, files, filepath.Join(dir, "app.spec.js"))
	assert.NotContains(t, files, filepath.Join(dir, "helpers.py"))
}

func TestFindTestFiles_ExcludesDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "test_real.py"))
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "test_vendored.py"))
	writeFile(t, filepath.Join(dir, "__pycache__", "test_cached.py"))

	files, err := FindTestFiles(dir, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "test_real.py")}, files)
}

func TestFindTestFiles_SortedAndDeduplicated(t *testing.T) {
	dir := t.TempDir()
	// Matches both **/test_*.py and **/tests/**/*.py.
	writeFile(t, filepath.Join(dir, "tests", "test_a.py"))
	writeFile(t, filepath.Join(dir, "tests", "test_b.py"))

	files, err := FindTestFiles(dir, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "tests", "test_a.py"),
		filepath.Join(dir, "tests", "test_b.py"),
	}, files)
}

func TestFindTestFiles_CustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "check_auth.py"))
	writeFile(t, filepath.Join(dir, "test_auth.py"))

	files, err := FindTestFiles(dir, []string{"**/check_*.py"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "check_auth.py")}, files)
}
