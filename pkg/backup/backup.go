// Package backup snapshots the paths a link run is about to replace into a
// timestamped .tar.gz archive. Symlinks are archived as links, never
// followed, so backing up an old link does not pull in the game it pointed
// at.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/rs/zerolog"
)

const timestampLayout = "20060102-150405"

// Archiver writes backup archives into a directory
type Archiver struct {
	fs     types.FS
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

// New returns an archiver storing archives in dir
func New(fsys types.FS, dir string) *Archiver {
	return &Archiver{fs: fsys, dir: dir, now: time.Now, logger: logging.GetLogger("backup")}
}

// ArchivePath returns the archive name an invocation at t would use
func (a *Archiver) ArchivePath(t time.Time) string {
	return filepath.Join(a.dir, fmt.Sprintf("gamelink-%s.tar.gz", t.Format(timestampLayout)))
}

// Backup archives every existing path in paths and returns the archive
// location. Missing paths are skipped; when none exist no archive is written
// and the returned path is empty. Any failure removes the partial archive
// and returns ErrBackupFailed.
func (a *Archiver) Backup(paths []string) (string, error) {
	existing := a.existing(paths)
	if len(existing) == 0 {
		a.logger.Debug().Msg("Nothing to back up")
		return "", nil
	}

	if err := a.fs.MkdirAll(a.dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrBackupFailed, "cannot create backup directory %s", a.dir)
	}
	archive := a.uniquePath()

	if err := a.write(archive, existing); err != nil {
		_ = a.fs.Remove(archive)
		return "", errors.Wrapf(err, errors.ErrBackupFailed, "backup to %s failed", archive).
			WithDetail("paths", existing)
	}
	a.logger.Info().Str("archive", archive).Int("paths", len(existing)).Msg("Backup written")
	return archive, nil
}

func (a *Archiver) existing(paths []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		p = filepath.Clean(p)
		if seen[p] || !filesystem.Exists(a.fs, p) {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (a *Archiver) uniquePath() string {
	base := a.ArchivePath(a.now())
	p := base
	for i := 1; filesystem.Exists(a.fs, p); i++ {
		p = strings.TrimSuffix(base, ".tar.gz") + fmt.Sprintf("-%d.tar.gz", i)
	}
	return p
}

func (a *Archiver) write(archive string, paths []string) error {
	f, err := a.fs.Create(archive, 0644)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	var werr error
	for _, p := range paths {
		if werr = a.add(tw, p); werr != nil {
			break
		}
	}
	if err := tw.Close(); werr == nil {
		werr = err
	}
	if err := gz.Close(); werr == nil {
		werr = err
	}
	if err := f.Close(); werr == nil {
		werr = err
	}
	return werr
}

// entryName turns an absolute path into a relative archive name
func entryName(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "/")
}

func (a *Archiver) add(tw *tar.Writer, path string) error {
	info, err := a.fs.Lstat(path)
	if err != nil {
		return err
	}

	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = a.fs.Readlink(path); err != nil {
			return err
		}
	}
	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = entryName(path)
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	switch {
	case info.Mode().IsRegular():
		r, err := a.fs.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, r)
		_ = r.Close()
		return err
	case info.IsDir():
		entries, err := a.fs.ReadDir(path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := a.add(tw, filepath.Join(path, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
