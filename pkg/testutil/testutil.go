package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateFile writes content to dir/name, creating parent directories
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "create parent of %s", path)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "write %s", path)
	return path
}

// CreateDir creates parent/name and returns its path
func CreateDir(t *testing.T, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(path, 0755), "create %s", path)
	return path
}

// CreateSymlink makes link point at target
func CreateSymlink(t *testing.T, target, link string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0755))
	require.NoError(t, os.Symlink(target, link), "symlink %s -> %s", link, target)
}

// ReadFile returns the content of path
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "read %s", path)
	return string(data)
}

// IsSymlink reports whether path is a symbolic link
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// AssertSymlink checks that link exists and points at target
func AssertSymlink(t *testing.T, link, target string) {
	t.Helper()

	got, err := os.Readlink(link)
	require.NoError(t, err, "%s is not a symlink", link)
	require.Equal(t, target, got, "symlink %s", link)
}

// AssertNoPath checks that nothing exists at path
func AssertNoPath(t *testing.T, path string) {
	t.Helper()

	_, err := os.Lstat(path)
	require.True(t, os.IsNotExist(err), "expected %s to be absent", path)
}

// RequireNonRoot skips tests that rely on permission checks root bypasses
func RequireNonRoot(t *testing.T) {
	t.Helper()

	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed when running as root")
	}
}

// Setenv sets an environment variable for the duration of the test
func Setenv(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
}
