package linking

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/rs/zerolog"
)

// Linker runs a strategy chain
type Linker struct {
	fs         types.FS
	strategies []Strategy
	dryRun     bool
	force      bool
	// planned holds directories a dry run has already reported creating
	planned map[string]bool
	logger  zerolog.Logger
}

// Options controls how a Linker mutates the filesystem
type Options struct {
	DryRun bool
	// Force replaces a target even when it already links to the source
	Force bool
}

// NewLinker returns a linker trying strategies in order
func NewLinker(fsys types.FS, strategies []Strategy, opts Options) *Linker {
	return &Linker{
		fs:         fsys,
		strategies: strategies,
		dryRun:     opts.DryRun,
		force:      opts.Force,
		planned:    make(map[string]bool),
		logger:     logging.GetLogger("linking"),
	}
}

// DryRun reports whether the linker only plans
func (l *Linker) DryRun() bool {
	return l.dryRun
}

// Link makes source reachable at targetParent/basename. The returned result
// is filled in even on failure; the error is ErrLinkStrategyExhausted when
// no strategy succeeded or the old target could not be removed, and
// ErrInvalidInput when the target overlaps the source. Nothing is touched
// in the overlap case.
func (l *Linker) Link(ctx context.Context, source, targetParent, basename string) (types.LinkResult, error) {
	target := filepath.Join(targetParent, basename)
	result := types.LinkResult{SourcePath: source, TargetPath: target, Operations: []types.Operation{}}
	log := l.logger.With().Str("source", source).Str("target", target).Logger()

	if l.linksTo(target, source) && !l.force {
		log.Debug().Msg("Target already links to source")
		result.Strategy = types.StrategySymlink
		result.Detail = "already linked"
		return result, nil
	}

	if overlaps(source, target) {
		log.Error().Msg("Target overlaps the source, refusing to touch it")
		return result, errors.Newf(errors.ErrInvalidInput, "target %s overlaps source %s", target, source).
			WithDetail("source", source).
			WithDetail("target", target)
	}

	if !filesystem.IsDir(l.fs, targetParent) && !l.planned[targetParent] {
		result.Operations = append(result.Operations, types.Operation{Type: types.OperationMkdir, Target: targetParent})
		if l.dryRun {
			l.planned[targetParent] = true
		} else {
			if err := l.fs.MkdirAll(targetParent, 0755); err != nil {
				return result, errors.Wrapf(err, errors.ErrLinkStrategyExhausted, "cannot create %s", targetParent)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return result, errors.Wrap(err, errors.ErrCanceled, "link canceled")
	}

	if filesystem.Exists(l.fs, target) {
		result.Operations = append(result.Operations, types.Operation{Type: types.OperationRemove, Target: target})
		if !l.dryRun {
			if err := l.remove(target); err != nil {
				return result, errors.Wrapf(err, errors.ErrLinkStrategyExhausted, "cannot remove existing %s", target)
			}
		}
	}

	if l.dryRun {
		for _, s := range l.strategies {
			if s.Applicable(source, target) {
				result.Strategy = s.Name()
				result.Operations = append(result.Operations, s.Operation(source, target))
				result.Degraded = s.Name() == types.StrategyCopy
				log.Info().Str("plan", s.Describe(source, target)).Msg("Dry run")
				return result, nil
			}
			result.Attempts = append(result.Attempts, attemptRecord(s, OutcomeInapplicable, nil))
		}
		return result, exhausted(result.Attempts, target)
	}

	for _, s := range l.strategies {
		if !s.Applicable(source, target) {
			result.Attempts = append(result.Attempts, attemptRecord(s, OutcomeInapplicable, nil))
			log.Debug().Str("strategy", string(s.Name())).Msg("Strategy not applicable")
			continue
		}
		outcome, err := s.Attempt(ctx, source, target)
		result.Attempts = append(result.Attempts, attemptRecord(s, outcome, err))
		if outcome != OutcomeOK {
			log.Debug().Err(err).Str("strategy", string(s.Name())).Str("outcome", outcome.String()).Msg("Strategy did not link")
			if errors.IsErrorCode(err, errors.ErrCanceled) {
				return result, err
			}
			continue
		}

		result.Strategy = s.Name()
		result.Operations = append(result.Operations, s.Operation(source, target))
		if s.Name() == types.StrategyCopy {
			result.Degraded = true
			result.Detail = "copied; changes to the source will not be reflected"
			log.Warn().Msg("Linked by copying, the target is a snapshot")
		} else {
			log.Info().Str("strategy", string(s.Name())).Msg("Linked")
		}
		return result, nil
	}

	return result, exhausted(result.Attempts, target)
}

// linksTo reports whether target is a symlink resolving to source
func (l *Linker) linksTo(target, source string) bool {
	info, err := l.fs.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	dest, err := l.fs.Readlink(target)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(target), dest)
	}
	return filepath.Clean(dest) == filepath.Clean(source)
}

// remove deletes whatever is at target without following links
func (l *Linker) remove(target string) error {
	info, err := l.fs.Lstat(target)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
		return l.fs.Remove(target)
	}
	return l.fs.RemoveAll(target)
}

// PendingMutations lists the existing paths Link would remove or replace
func (l *Linker) PendingMutations(source, target string) []string {
	if !filesystem.Exists(l.fs, target) || overlaps(source, target) {
		return nil
	}
	if l.linksTo(target, source) && !l.force {
		return nil
	}
	return []string{target}
}

// overlaps reports whether target is source or one contains the other.
// The target itself is not followed: an existing link there is replaced,
// not written through.
func overlaps(source, target string) bool {
	src := resolvePath(source)
	dst := filepath.Join(resolvePath(filepath.Dir(target)), filepath.Base(target))
	return src == dst || within(src, dst) || within(dst, src)
}

// resolvePath evaluates symlinks in the longest existing prefix of p
func resolvePath(p string) string {
	p = filepath.Clean(p)
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p
	}
	return filepath.Join(resolvePath(parent), filepath.Base(p))
}

func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
