package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/locate"
	"github.com/arthur-debert/gamelink/pkg/types"
)

// VerifyOnly re-checks the links of the stored selection without changing
// anything. Items whose target is missing are reported as failed.
func (e *Engine) VerifyOnly(ctx context.Context, opts Options) (*types.RunReport, error) {
	report := &types.RunReport{TargetDir: opts.TargetDir, Items: []types.ItemReport{}}

	entries, scan, err := e.Inventory(ctx, opts.Roots)
	if err != nil {
		return report, err
	}
	report.RootsUsed = scan.RootsUsed

	ids := dedupe(opts.Select)
	if len(ids) == 0 {
		if ids, err = e.deps.Store.Load(); err != nil {
			return report, err
		}
	}

	byID := make(map[string]Entry, len(entries))
	for _, en := range entries {
		byID[en.Item.ID] = en
	}
	index := locate.NewIndex(e.deps.Locator)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			report.Summarize()
			return report, errors.Wrap(err, errors.ErrCanceled, "verification interrupted")
		}
		en, ok := byID[id]
		if !ok {
			report.Items = append(report.Items, notInstalled(id))
			continue
		}
		row := types.ItemReport{ID: id, Name: en.Meta.DisplayName, NameSource: en.Meta.Source}

		dir, err := index.Resolve(en.Item, en.Meta.DisplayName)
		if err != nil {
			row.Status = types.StatusSkipped
			row.ErrorCode = string(errors.GetErrorCode(err))
			row.Detail = err.Error()
			report.Items = append(report.Items, row)
			continue
		}
		row.Directory = &dir
		target := filepath.Join(opts.TargetDir, filepath.Base(dir.Path))
		link := &types.LinkResult{ItemID: id, SourcePath: dir.Path, TargetPath: target, Operations: []types.Operation{}}
		row.Link = link

		if !filesystem.Exists(e.deps.FS, target) {
			row.Status = types.StatusFailed
			row.ErrorCode = string(errors.ErrNotFound)
			row.Detail = fmt.Sprintf("%s is not linked", target)
			report.Items = append(report.Items, row)
			continue
		}

		vr, err := e.deps.Verifier.Verify(ctx, target)
		link.Verification = vr
		link.Verified = err == nil
		if err != nil {
			row.Status = types.StatusDegraded
			row.ErrorCode = string(errors.ErrVerificationFailed)
			row.Detail = fmt.Sprintf("not usable: %v", vr.Problems)
		} else {
			row.Status = types.StatusLinked
		}
		report.Items = append(report.Items, row)
	}

	report.Summarize()
	return report, nil
}
