package locate

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/arthur-debert/gamelink/pkg/ui/choice"
	"github.com/rs/zerolog"
)

// step is one matcher of the chain. It returns candidate directory paths
// under searchRoot, best first.
type step struct {
	strategy types.MatchStrategy
	match    func(l *Locator, searchRoot string, item *types.Item, displayName string) []string
}

var chain = []step{
	{types.MatchDeclaredInstallDir, (*Locator).declared},
	{types.MatchExactName, (*Locator).exactName},
	{types.MatchCaseInsensitiveName, (*Locator).caseInsensitiveName},
	{types.MatchNormalizedName, (*Locator).normalizedName},
	{types.MatchEmbeddedID, (*Locator).embeddedID},
}

// Locator runs the matcher chain
type Locator struct {
	fs         types.FS
	provider   choice.Provider
	extraRoots []string
	logger     zerolog.Logger
}

// NewLocator returns a locator. extraRoots are searched after each item's
// own steamapps/common directories; provider may be nil, which disables the
// operator fallback.
func NewLocator(fsys types.FS, provider choice.Provider, extraRoots []string) *Locator {
	return &Locator{
		fs:         fsys,
		provider:   provider,
		extraRoots: extraRoots,
		logger:     logging.GetLogger("locate"),
	}
}

// SearchRoots lists the existing directories searched for item, in order
func (l *Locator) SearchRoots(item *types.Item) []string {
	var roots []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if seen[p] || !filesystem.IsDir(l.fs, p) {
			return
		}
		seen[p] = true
		roots = append(roots, p)
	}
	for _, r := range item.Roots {
		add(filepath.Join(r, "steamapps", "common"))
	}
	for _, r := range l.extraRoots {
		if r != "" {
			add(r)
		}
	}
	return roots
}

// Locate resolves the payload directory for item
func (l *Locator) Locate(item *types.Item, displayName string) (types.ResolvedDirectory, error) {
	roots := l.SearchRoots(item)
	log := l.logger.With().Str("id", item.ID).Str("name", displayName).Logger()

	for _, s := range chain {
		for _, root := range roots {
			for _, cand := range s.match(l, root, item, displayName) {
				if !filesystem.IsNonEmptyDir(l.fs, cand) {
					log.Trace().Str("candidate", cand).Str("step", string(s.strategy)).Msg("Rejected candidate")
					continue
				}
				log.Debug().Str("path", cand).Str("step", string(s.strategy)).Msg("Located payload")
				return types.ResolvedDirectory{
					ItemID:     item.ID,
					Path:       cand,
					SearchRoot: root,
					Strategy:   s.strategy,
				}, nil
			}
		}
	}

	return l.askOperator(item, displayName, roots)
}

func (l *Locator) askOperator(item *types.Item, displayName string, roots []string) (types.ResolvedDirectory, error) {
	notFound := errors.Newf(errors.ErrDirectoryNotFound, "no payload directory found for %s (%s)", displayName, item.ID).
		WithDetail("id", item.ID).
		WithDetail("searchRoots", roots)

	if l.provider == nil {
		return types.ResolvedDirectory{}, notFound
	}

	type option struct{ root, path string }
	var options []option
	var labels []string
	for _, root := range roots {
		for _, name := range sortedSubDirs(l.fs, root) {
			options = append(options, option{root, filepath.Join(root, name)})
			labels = append(labels, fmt.Sprintf("%s  [%s]", name, root))
		}
	}
	if len(options) == 0 {
		return types.ResolvedDirectory{}, notFound
	}

	prompt := fmt.Sprintf("Select the directory of %s (%s)", displayName, item.ID)
	idx, err := l.provider.Choose(prompt, labels)
	if err != nil {
		return types.ResolvedDirectory{}, errors.Wrapf(err, errors.ErrDirectoryNotFound, "selection for %s failed", item.ID)
	}
	if idx == choice.Skip {
		return types.ResolvedDirectory{}, notFound.WithDetail("skipped", true)
	}

	picked := options[idx]
	if !filesystem.IsNonEmptyDir(l.fs, picked.path) {
		return types.ResolvedDirectory{}, errors.Newf(errors.ErrDirectoryNotFound, "selected directory %s is empty", picked.path).
			WithDetail("id", item.ID)
	}
	return types.ResolvedDirectory{
		ItemID:     item.ID,
		Path:       picked.path,
		SearchRoot: picked.root,
		Strategy:   types.MatchOperatorChoice,
	}, nil
}

// usableName reports whether displayName can drive the name matchers
func usableName(item *types.Item, displayName string) bool {
	return displayName != "" && displayName != types.UnknownName(item.ID)
}

// childPath joins a single path element under root
func childPath(root, name string) (string, bool) {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) {
		return "", false
	}
	return filepath.Join(root, name), true
}

func (l *Locator) declared(root string, item *types.Item, _ string) []string {
	var out []string
	for _, dir := range item.InstallDirs() {
		if p, ok := childPath(root, dir); ok {
			out = append(out, p)
		}
	}
	return out
}

func (l *Locator) exactName(root string, item *types.Item, displayName string) []string {
	if !usableName(item, displayName) {
		return nil
	}
	if p, ok := childPath(root, displayName); ok {
		return []string{p}
	}
	return nil
}

func (l *Locator) caseInsensitiveName(root string, item *types.Item, displayName string) []string {
	if !usableName(item, displayName) {
		return nil
	}
	var out []string
	for _, name := range sortedSubDirs(l.fs, root) {
		if strings.EqualFold(name, displayName) {
			out = append(out, filepath.Join(root, name))
		}
	}
	return out
}

func (l *Locator) normalizedName(root string, item *types.Item, displayName string) []string {
	if !usableName(item, displayName) {
		return nil
	}
	var out []string
	for _, name := range rankNormalized(sortedSubDirs(l.fs, root), displayName) {
		out = append(out, filepath.Join(root, name))
	}
	return out
}

func (l *Locator) embeddedID(root string, item *types.Item, _ string) []string {
	var out []string
	for _, name := range sortedSubDirs(l.fs, root) {
		if strings.Contains(name, item.ID) {
			out = append(out, filepath.Join(root, name))
		}
	}
	return out
}

func sortedSubDirs(fsys types.FS, dir string) []string {
	names := filesystem.SubDirs(fsys, dir)
	sort.Strings(names)
	return names
}
