package linking

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
)

// auxSources maps each auxiliary kind to its directory under the native
// per-item prefix's steamuser profile
var auxSources = []struct {
	kind types.AuxKind
	dir  string
}{
	{types.AuxDocuments, "Documents"},
	{types.AuxAppData, "AppData"},
}

// AuxSource returns the native directory of kind for id under root
func AuxSource(root, id string, kind types.AuxKind) string {
	for _, s := range auxSources {
		if s.kind == kind {
			return filepath.Join(root, "steamapps", "compatdata", id, "pfx", "drive_c", "users", "steamuser", s.dir)
		}
	}
	return ""
}

// AuxTarget returns where kind is linked for id
func AuxTarget(auxRoot, id string, kind types.AuxKind) string {
	return filepath.Join(auxRoot, id, string(kind))
}

// AuxLinker links the per-item Documents and AppData directories
type AuxLinker struct {
	fs     types.FS
	linker *Linker
	root   string
}

// NewAuxLinker links under auxRoot using linker's strategy chain
func NewAuxLinker(fsys types.FS, linker *Linker, auxRoot string) *AuxLinker {
	return &AuxLinker{fs: fsys, linker: linker, root: auxRoot}
}

// Link links each auxiliary directory of item found under any of its roots.
// Missing sources produce no result; failures are recorded as warnings.
func (a *AuxLinker) Link(ctx context.Context, item *types.Item) []types.AuxResult {
	logger := logging.GetLogger("linking.aux")
	var results []types.AuxResult

	for _, s := range auxSources {
		source := ""
		for _, root := range item.Roots {
			if cand := AuxSource(root, item.ID, s.kind); filesystem.IsDir(a.fs, cand) {
				source = cand
				break
			}
		}
		if source == "" {
			continue
		}

		target := AuxTarget(a.root, item.ID, s.kind)
		res, err := a.linker.Link(ctx, source, filepath.Dir(target), filepath.Base(target))
		aux := types.AuxResult{
			Kind:       s.kind,
			SourcePath: source,
			TargetPath: target,
			Strategy:   res.Strategy,
			Operations: res.Operations,
		}
		if err != nil {
			aux.Warning = err.Error()
			logger.Warn().Err(err).Str("id", item.ID).Str("kind", string(s.kind)).Msg("Auxiliary link failed")
		}
		results = append(results, aux)
	}
	return results
}

// PendingMutations lists existing auxiliary targets that would be replaced
func (a *AuxLinker) PendingMutations(item *types.Item) []string {
	var paths []string
	for _, s := range auxSources {
		for _, root := range item.Roots {
			source := AuxSource(root, item.ID, s.kind)
			if filesystem.IsDir(a.fs, source) {
				paths = append(paths, a.linker.PendingMutations(source, AuxTarget(a.root, item.ID, s.kind))...)
				break
			}
		}
	}
	return paths
}
