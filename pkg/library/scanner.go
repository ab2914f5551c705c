package library

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/arthur-debert/gamelink/pkg/vdf"
	"github.com/rs/zerolog"
)

const (
	steamappsDir = "steamapps"
	indexFile    = "libraryfolders.vdf"
)

var (
	manifestPattern = regexp.MustCompile(`^appmanifest_(.+)\.acf$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
)

// ScanResult is the deduplicated view of every reachable library
type ScanResult struct {
	Items     map[string]*types.Item
	Order     []string
	RootsUsed []string
}

// Ordered returns the items in discovery order
func (r *ScanResult) Ordered() []*types.Item {
	items := make([]*types.Item, 0, len(r.Order))
	for _, id := range r.Order {
		items = append(items, r.Items[id])
	}
	return items
}

// Scanner walks library roots through an FS
type Scanner struct {
	fs       types.FS
	reserved map[string]bool
	resolve  func(string) (string, error)
	logger   zerolog.Logger
}

// NewScanner returns a scanner that skips the given reserved ids
func NewScanner(fsys types.FS, reservedIDs []string) *Scanner {
	reserved := make(map[string]bool, len(reservedIDs))
	for _, id := range reservedIDs {
		reserved[strings.TrimSpace(id)] = true
	}
	return &Scanner{
		fs:       fsys,
		reserved: reserved,
		resolve:  filepath.EvalSymlinks,
		logger:   logging.GetLogger("library.scanner"),
	}
}

// Scan discovers every root reachable from roots and collects their items.
// It fails with ErrNoLibraryFound when none of the roots exists and with
// ErrNoItemsFound when the reachable roots register nothing.
func (s *Scanner) Scan(roots []string) (*ScanResult, error) {
	done := logging.LogOperationStart(s.logger, "scan")
	defer done()

	result := &ScanResult{Items: make(map[string]*types.Item)}
	visited := make(map[string]bool)
	queue := make([]string, 0, len(roots))
	for _, r := range roots {
		if r = strings.TrimSpace(r); r != "" {
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		root := queue[0]
		queue = queue[1:]

		key := s.canonical(root)
		if visited[key] {
			continue
		}
		visited[key] = true

		if !filesystem.IsDir(s.fs, filepath.Join(root, steamappsDir)) {
			s.logger.Debug().Str("root", root).Msg("Skipping root without steamapps")
			continue
		}
		result.RootsUsed = append(result.RootsUsed, root)
		s.logger.Debug().Str("root", root).Msg("Scanning library root")

		queue = append(queue, s.indexedRoots(root)...)
		s.collectItems(root, result)
	}

	if len(result.RootsUsed) == 0 {
		return nil, errors.New(errors.ErrNoLibraryFound, "no library root found").
			WithDetail("roots", roots)
	}
	if len(result.Order) == 0 {
		return nil, errors.New(errors.ErrNoItemsFound, "no installed items found").
			WithDetail("roots", result.RootsUsed)
	}

	s.logger.Info().
		Int("roots", len(result.RootsUsed)).
		Int("items", len(result.Order)).
		Msg("Library scan complete")
	return result, nil
}

// canonical gives the visited-set key for a root
func (s *Scanner) canonical(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	if resolved, err := s.resolve(abs); err == nil {
		return resolved
	}
	return abs
}

// indexedRoots reads the roots named by a root's index files
func (s *Scanner) indexedRoots(root string) []string {
	var found []string
	for _, idx := range []string{
		filepath.Join(root, steamappsDir, indexFile),
		filepath.Join(root, "config", indexFile),
	} {
		data, err := s.fs.ReadFile(idx)
		if err != nil {
			continue
		}
		doc, err := vdf.ParseString(string(data))
		if err != nil {
			s.logger.Debug().Err(err).Str("file", idx).Msg("Ignoring unparseable library index")
			continue
		}
		found = append(found, RootsFromIndex(doc)...)
	}
	return found
}

// RootsFromIndex extracts library paths from a parsed libraryfolders
// document. It understands both the current form, where each numbered block
// carries a "path" attribute, and the legacy form, where the numbered key
// maps directly to a path.
func RootsFromIndex(doc *vdf.Node) []string {
	var roots []string
	doc.Walk(func(n *vdf.Node) {
		if n.IsBlock {
			return
		}
		switch {
		case strings.EqualFold(n.Key, "path"):
			roots = append(roots, n.Value)
		case digitsPattern.MatchString(n.Key) && filepath.IsAbs(n.Value):
			roots = append(roots, n.Value)
		}
	})
	return roots
}

// collectItems records every manifest under root
func (s *Scanner) collectItems(root string, result *ScanResult) {
	dir := filepath.Join(root, steamappsDir)
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		s.logger.Debug().Err(err).Str("dir", dir).Msg("Cannot list steamapps")
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := manifestPattern.FindStringSubmatch(e.Name())
		if m == nil || !digitsPattern.MatchString(m[1]) {
			continue
		}
		id := m[1]
		if s.reserved[id] {
			s.logger.Debug().Str("id", id).Msg("Skipping reserved id")
			continue
		}

		record := s.readManifest(id, root, filepath.Join(dir, e.Name()))
		item, ok := result.Items[id]
		if !ok {
			item = &types.Item{ID: id}
			result.Items[id] = item
			result.Order = append(result.Order, id)
		}
		item.Records = append(item.Records, record)
		if !containsString(item.Roots, root) {
			item.Roots = append(item.Roots, root)
		}
	}
}

// readManifest builds a record; an unreadable body leaves the declared
// fields empty
func (s *Scanner) readManifest(id, root, path string) types.ItemRecord {
	record := types.ItemRecord{ID: id, ManifestPath: path, Root: root}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		s.logger.Debug().Err(err).Str("manifest", path).Msg("Cannot read manifest")
		return record
	}
	doc, err := vdf.ParseString(string(data))
	if err != nil {
		s.logger.Debug().Err(err).Str("manifest", path).Msg("Cannot parse manifest")
		return record
	}

	state := doc.Get("AppState")
	if state == nil {
		state = doc
	}
	record.InstallDir, _ = state.String("installdir")
	record.Name, _ = state.String("name")
	if declared, ok := state.String("appid"); ok && declared != id {
		s.logger.Debug().
			Str("file_id", id).
			Str("declared_id", declared).
			Msg("Manifest appid differs from filename, using filename")
	}
	return record
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
