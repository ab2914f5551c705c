package testutil

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/types"
)

// Op names an FS method for error injection
type Op string

const (
	OpStat      Op = "stat"
	OpReadFile  Op = "readfile"
	OpWriteFile Op = "writefile"
	OpOpen      Op = "open"
	OpCreate    Op = "create"
	OpMkdirAll  Op = "mkdirall"
	OpReadDir   Op = "readdir"
	OpSymlink   Op = "symlink"
	OpReadlink  Op = "readlink"
	OpRemove    Op = "remove"
	OpRemoveAll Op = "removeall"
	OpRename    Op = "rename"
	OpChmod     Op = "chmod"
	OpLstat     Op = "lstat"
)

// FaultyFS delegates to the real filesystem unless an error was injected
// for the operation and path. Injections keyed with an empty path apply to
// every path. Every call is recorded.
type FaultyFS struct {
	base types.FS

	mu     sync.Mutex
	faults map[string]error
	calls  []string
}

// NewFaultyFS wraps the OS filesystem
func NewFaultyFS() *FaultyFS {
	return &FaultyFS{base: filesystem.NewOS(), faults: make(map[string]error)}
}

// Fail makes op on path return err
func (f *FaultyFS) Fail(op Op, path string, err error) *FaultyFS {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[faultKey(op, path)] = err
	return f
}

// FailAll makes op return err for every path
func (f *FaultyFS) FailAll(op Op, err error) *FaultyFS {
	return f.Fail(op, "", err)
}

// Calls returns the recorded "op path" strings
func (f *FaultyFS) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Called reports whether op was invoked on path
func (f *FaultyFS) Called(op Op, path string) bool {
	want := fmt.Sprintf("%s %s", op, filepath.Clean(path))
	for _, c := range f.Calls() {
		if c == want {
			return true
		}
	}
	return false
}

func faultKey(op Op, path string) string {
	if path == "" {
		return string(op)
	}
	return string(op) + " " + filepath.Clean(path)
}

func (f *FaultyFS) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s %s", op, filepath.Clean(path)))
	if err, ok := f.faults[faultKey(op, path)]; ok {
		return &fs.PathError{Op: string(op), Path: path, Err: err}
	}
	if err, ok := f.faults[string(op)]; ok {
		return &fs.PathError{Op: string(op), Path: path, Err: err}
	}
	return nil
}

func (f *FaultyFS) Stat(name string) (fs.FileInfo, error) {
	if err := f.check(OpStat, name); err != nil {
		return nil, err
	}
	return f.base.Stat(name)
}

func (f *FaultyFS) ReadFile(name string) ([]byte, error) {
	if err := f.check(OpReadFile, name); err != nil {
		return nil, err
	}
	return f.base.ReadFile(name)
}

func (f *FaultyFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := f.check(OpWriteFile, name); err != nil {
		return err
	}
	return f.base.WriteFile(name, data, perm)
}

func (f *FaultyFS) Open(name string) (io.ReadCloser, error) {
	if err := f.check(OpOpen, name); err != nil {
		return nil, err
	}
	return f.base.Open(name)
}

func (f *FaultyFS) Create(name string, perm fs.FileMode) (io.WriteCloser, error) {
	if err := f.check(OpCreate, name); err != nil {
		return nil, err
	}
	return f.base.Create(name, perm)
}

func (f *FaultyFS) MkdirAll(path string, perm fs.FileMode) error {
	if err := f.check(OpMkdirAll, path); err != nil {
		return err
	}
	return f.base.MkdirAll(path, perm)
}

func (f *FaultyFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.check(OpReadDir, name); err != nil {
		return nil, err
	}
	return f.base.ReadDir(name)
}

func (f *FaultyFS) Symlink(oldname, newname string) error {
	if err := f.check(OpSymlink, newname); err != nil {
		return err
	}
	return f.base.Symlink(oldname, newname)
}

func (f *FaultyFS) Readlink(name string) (string, error) {
	if err := f.check(OpReadlink, name); err != nil {
		return "", err
	}
	return f.base.Readlink(name)
}

func (f *FaultyFS) Remove(name string) error {
	if err := f.check(OpRemove, name); err != nil {
		return err
	}
	return f.base.Remove(name)
}

func (f *FaultyFS) RemoveAll(path string) error {
	if err := f.check(OpRemoveAll, path); err != nil {
		return err
	}
	return f.base.RemoveAll(path)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if err := f.check(OpRename, newpath); err != nil {
		return err
	}
	return f.base.Rename(oldpath, newpath)
}

func (f *FaultyFS) Chmod(name string, mode fs.FileMode) error {
	if err := f.check(OpChmod, name); err != nil {
		return err
	}
	return f.base.Chmod(name, mode)
}

func (f *FaultyFS) Lstat(name string) (fs.FileInfo, error) {
	if err := f.check(OpLstat, name); err != nil {
		return nil, err
	}
	return f.base.Lstat(name)
}

var _ types.FS = (*FaultyFS)(nil)
