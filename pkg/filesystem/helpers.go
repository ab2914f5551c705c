package filesystem

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/gamelink/pkg/types"
)

// IsDir reports whether path exists (following symlinks) and is a directory
func IsDir(fsys types.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}

// IsNonEmptyDir reports whether path is a directory holding at least one entry
func IsNonEmptyDir(fsys types.FS, path string) bool {
	if !IsDir(fsys, path) {
		return false
	}
	entries, err := fsys.ReadDir(path)
	return err == nil && len(entries) > 0
}

// Exists reports whether anything, including a dangling symlink, is at path
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Lstat(path)
	return err == nil
}

// SubDirs returns the names of the immediate subdirectories of dir, following
// symlinks. Unreadable directories yield no names.
func SubDirs(fsys types.FS, dir string) []string {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
			continue
		}
		if e.Type()&os.ModeSymlink != 0 && IsDir(fsys, filepath.Join(dir, e.Name())) {
			names = append(names, e.Name())
		}
	}
	return names
}
