package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/gamelink/pkg/backup"
	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/library"
	"github.com/arthur-debert/gamelink/pkg/linking"
	"github.com/arthur-debert/gamelink/pkg/locate"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/metadata"
	"github.com/arthur-debert/gamelink/pkg/selection"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/arthur-debert/gamelink/pkg/ui/choice"
	"github.com/arthur-debert/gamelink/pkg/verify"
	"github.com/rs/zerolog"
)

// Deps are the collaborators an Engine drives
type Deps struct {
	FS       types.FS
	Scanner  *library.Scanner
	Resolver *metadata.Resolver
	Locator  *locate.Locator
	Store    *selection.Store
	Linker   *linking.Linker
	// Aux is nil when auxiliary linking is disabled
	Aux      *linking.AuxLinker
	Verifier *verify.Verifier
	Archiver *backup.Archiver
	Provider choice.Provider
}

// Options are the per-run choices
type Options struct {
	Roots     []string
	TargetDir string
	// Select overrides every other selection source
	Select   []string
	All      bool
	Reselect bool
	DryRun   bool
	Backup   bool
}

// Engine orchestrates one run
type Engine struct {
	deps   Deps
	logger zerolog.Logger
}

// New returns an engine over deps
func New(deps Deps) *Engine {
	if deps.Provider == nil {
		deps.Provider = choice.FailClosed{}
	}
	return &Engine{deps: deps, logger: logging.GetLogger("engine")}
}

// Entry is one scanned item with its resolved name
type Entry struct {
	Item *types.Item
	Meta types.ItemMetadata
}

// Inventory scans the libraries and resolves every name
func (e *Engine) Inventory(ctx context.Context, roots []string) ([]Entry, *library.ScanResult, error) {
	scan, err := e.deps.Scanner.Scan(roots)
	if err != nil {
		return nil, nil, err
	}
	items := scan.Ordered()
	metas, err := e.deps.Resolver.ResolveAll(ctx, items)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]Entry, len(items))
	for i := range items {
		entries[i] = Entry{Item: items[i], Meta: metas[i]}
	}
	return entries, scan, nil
}

// planned is one selected item carried through the run
type planned struct {
	row    types.ItemReport
	item   *types.Item
	dir    types.ResolvedDirectory
	target string
}

// Run performs the full pass. The report is returned even when a batch
// level error aborts the run after selection.
func (e *Engine) Run(ctx context.Context, opts Options) (*types.RunReport, error) {
	done := logging.LogOperationStart(e.logger, "run")
	defer done()

	report := &types.RunReport{DryRun: opts.DryRun, TargetDir: opts.TargetDir, Items: []types.ItemReport{}}

	entries, scan, err := e.Inventory(ctx, opts.Roots)
	if err != nil {
		return report, err
	}
	report.RootsUsed = scan.RootsUsed

	selected, err := e.selectItems(entries, opts)
	if err != nil {
		return report, err
	}
	if len(selected) == 0 {
		e.logger.Info().Msg("No items selected")
		return report, nil
	}

	byID := make(map[string]Entry, len(entries))
	for _, en := range entries {
		byID[en.Item.ID] = en
	}

	index := locate.NewIndex(e.deps.Locator)
	var plan []*planned
	for _, id := range selected {
		en, ok := byID[id]
		if !ok {
			plan = append(plan, &planned{row: notInstalled(id)})
			continue
		}
		p := &planned{
			item: en.Item,
			row:  types.ItemReport{ID: id, Name: en.Meta.DisplayName, NameSource: en.Meta.Source},
		}
		dir, err := index.Resolve(en.Item, en.Meta.DisplayName)
		if err != nil {
			p.row.Status = types.StatusSkipped
			p.row.ErrorCode = string(errors.GetErrorCode(err))
			p.row.Detail = err.Error()
			e.logger.Warn().Str("id", id).Err(err).Msg("Payload directory not found")
		} else {
			p.dir = dir
			p.row.Directory = &dir
			p.target = filepath.Join(opts.TargetDir, filepath.Base(dir.Path))
		}
		plan = append(plan, p)
	}

	if opts.Backup {
		report.BackupPaths = e.pendingMutations(plan)
		if !opts.DryRun {
			archive, err := e.deps.Archiver.Backup(report.BackupPaths)
			if err != nil {
				return report, err
			}
			report.BackupArchive = archive
		}
	}

	for i, p := range plan {
		if err := ctx.Err(); err != nil {
			for _, rest := range plan[i:] {
				if rest.row.Status == "" {
					rest.row.Status = types.StatusSkipped
					rest.row.ErrorCode = string(errors.ErrCanceled)
					rest.row.Detail = "run interrupted"
				}
				report.Items = append(report.Items, rest.row)
			}
			report.Summarize()
			return report, errors.Wrap(err, errors.ErrCanceled, "run interrupted")
		}
		if p.row.Status == "" {
			e.linkOne(ctx, p, opts)
		}
		report.Items = append(report.Items, p.row)
	}

	report.Summarize()
	return report, nil
}

func (e *Engine) pendingMutations(plan []*planned) []string {
	var paths []string
	for _, p := range plan {
		if p.target == "" {
			continue
		}
		paths = append(paths, e.deps.Linker.PendingMutations(p.dir.Path, p.target)...)
		if e.deps.Aux != nil {
			paths = append(paths, e.deps.Aux.PendingMutations(p.item)...)
		}
	}
	return paths
}

// linkOne links, aux-links and verifies one located item
func (e *Engine) linkOne(ctx context.Context, p *planned, opts Options) {
	log := e.logger.With().Str("id", p.item.ID).Logger()

	res, err := e.deps.Linker.Link(ctx, p.dir.Path, filepath.Dir(p.target), filepath.Base(p.target))
	res.ItemID = p.item.ID
	p.row.Link = &res
	if err != nil {
		p.row.Status = types.StatusFailed
		p.row.ErrorCode = string(errors.GetErrorCode(err))
		p.row.Detail = err.Error()
		log.Error().Err(err).Msg("Link failed")
		return
	}

	if e.deps.Aux != nil {
		res.Aux = e.deps.Aux.Link(ctx, p.item)
		p.row.Link = &res
	}

	if opts.DryRun {
		p.row.Status = types.StatusPlanned
		p.row.Detail = res.Detail
		return
	}

	report, err := e.deps.Verifier.Verify(ctx, p.target)
	res.Verification = report
	res.Verified = err == nil
	p.row.Link = &res
	if err != nil {
		p.row.Status = types.StatusDegraded
		p.row.ErrorCode = string(errors.ErrVerificationFailed)
		p.row.Detail = fmt.Sprintf("linked but not usable: %v", report.Problems)
		log.Warn().Strs("problems", report.Problems).Msg("Verification failed")
		return
	}
	p.row.Status = types.StatusLinked
	p.row.Detail = res.Detail
}

func notInstalled(id string) types.ItemReport {
	return types.ItemReport{
		ID:        id,
		Name:      types.UnknownName(id),
		Status:    types.StatusSkipped,
		ErrorCode: string(errors.ErrNotFound),
		Detail:    "not installed in any scanned library",
	}
}
