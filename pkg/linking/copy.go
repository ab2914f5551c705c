package linking

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/types"
)

// CopyTree copies src to dst recursively. File modes are preserved and
// symlinks inside the tree are recreated rather than followed. The context
// is checked before every entry.
func CopyTree(ctx context.Context, fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "%s is not a directory", src)
	}
	return copyDir(ctx, fsys, src, dst, info.Mode().Perm())
}

func copyDir(ctx context.Context, fsys types.FS, src, dst string, perm os.FileMode) error {
	if err := fsys.MkdirAll(dst, perm|0700); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dst)
	}
	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", src)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCanceled, "copy interrupted")
		}
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())

		info, err := fsys.Lstat(from)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", from)
		}
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			link, err := fsys.Readlink(from)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", from)
			}
			if err := fsys.Symlink(link, to); err != nil {
				return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to recreate link %s", to)
			}
		case info.IsDir():
			if err := copyDir(ctx, fsys, from, to, info.Mode().Perm()); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := copyFile(fsys, from, to, info.Mode().Perm()); err != nil {
				return err
			}
		}
	}

	if err := fsys.Chmod(dst, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to set mode on %s", dst)
	}
	return nil
}

func copyFile(fsys types.FS, from, to string, perm os.FileMode) error {
	in, err := fsys.Open(from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", from)
	}
	defer func() { _ = in.Close() }()

	out, err := fsys.Create(to, perm)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", to)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to copy %s", from)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", to)
	}
	return fsys.Chmod(to, perm)
}
