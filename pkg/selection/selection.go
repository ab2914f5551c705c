// Package selection persists the ids the operator chose to link.
//
// The store is an append-only text file with one id per line. Reading it
// back yields the ids in first-seen order with duplicates, blank lines and
// # comments dropped. The file is not locked; concurrent runs sharing one
// store are unsupported.
package selection

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/rs/zerolog"
)

// Store reads and appends to the selection log
type Store struct {
	fs     types.FS
	path   string
	logger zerolog.Logger
}

// NewStore returns a store backed by path
func NewStore(fsys types.FS, path string) *Store {
	return &Store{fs: fsys, path: path, logger: logging.GetLogger("selection")}
}

// Path returns the log file location
func (s *Store) Path() string {
	return s.path
}

// Load returns the recorded ids, deduplicated, in the order first recorded.
// A missing file is an empty selection.
func (s *Store) Load() ([]string, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read selection %s", s.path)
	}
	return Parse(data), nil
}

// Parse reconstructs the ordered set from log content
func Parse(data []byte) []string {
	var ids []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		ids = append(ids, line)
	}
	return ids
}

// Append records the ids not already in the log and returns the ones added
func (s *Store) Append(ids ...string) ([]string, error) {
	current, err := s.fs.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read selection %s", s.path)
	}
	existing := Parse(current)
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}

	var added []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		added = append(added, id)
	}
	if len(added) == 0 {
		return nil, nil
	}

	// types.FS has no append mode; the log is tiny so it is rewritten whole
	if len(current) > 0 && current[len(current)-1] != '\n' {
		current = append(current, '\n')
	}
	current = append(current, []byte(strings.Join(added, "\n")+"\n")...)

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(s.path))
	}
	if err := s.fs.WriteFile(s.path, current, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to write selection %s", s.path)
	}
	s.logger.Debug().Strs("ids", added).Msg("Recorded selection")
	return added, nil
}

// Reset empties the selection
func (s *Store) Reset() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to reset selection %s", s.path)
	}
	s.logger.Debug().Str("path", s.path).Msg("Selection reset")
	return nil
}
