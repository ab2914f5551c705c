package linking

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/arthur-debert/gamelink/pkg/config"
	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/types"
	"golang.org/x/sys/unix"
)

// Outcome is the result of one strategy attempt
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeInapplicable
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInapplicable:
		return "inapplicable"
	default:
		return "failed"
	}
}

// Strategy is one way of making source reachable at target. Attempt is only
// called when target does not exist.
type Strategy interface {
	Name() types.StrategyName
	Applicable(source, target string) bool
	Operation(source, target string) types.Operation
	Describe(source, target string) string
	Attempt(ctx context.Context, source, target string) (Outcome, error)
}

// JunctionMaker creates directory junctions through the compatibility runtime
type JunctionMaker interface {
	Available() bool
	CreateJunction(ctx context.Context, target, source string) error
	// DescribeJunction returns the command CreateJunction runs
	DescribeJunction(target, source string) string
}

// NewStrategies builds the chain named by names, in order
func NewStrategies(names []string, fsys types.FS, junctions JunctionMaker, followsSymlinks bool) ([]Strategy, error) {
	var chain []Strategy
	for _, n := range names {
		switch n {
		case config.StrategySymlink:
			chain = append(chain, &SymlinkStrategy{fs: fsys, followsSymlinks: followsSymlinks})
		case config.StrategyJunction:
			chain = append(chain, &JunctionStrategy{fs: fsys, maker: junctions})
		case config.StrategyCopy:
			chain = append(chain, &CopyStrategy{fs: fsys})
		default:
			return nil, errors.Newf(errors.ErrConfigValid, "unknown link strategy %q", n)
		}
	}
	if len(chain) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "no link strategies configured")
	}
	return chain, nil
}

// SymlinkStrategy creates a native symbolic link
type SymlinkStrategy struct {
	fs              types.FS
	followsSymlinks bool
}

func (s *SymlinkStrategy) Name() types.StrategyName { return types.StrategySymlink }

// Applicable is false when the runtime is known not to follow host symlinks
func (s *SymlinkStrategy) Applicable(source, target string) bool {
	return s.followsSymlinks
}

func (s *SymlinkStrategy) Operation(source, target string) types.Operation {
	return types.Operation{Type: types.OperationSymlink, Source: source, Target: target}
}

func (s *SymlinkStrategy) Describe(source, target string) string {
	return s.Operation(source, target).Describe()
}

func (s *SymlinkStrategy) Attempt(ctx context.Context, source, target string) (Outcome, error) {
	if err := s.fs.Symlink(source, target); err != nil {
		return OutcomeFailed, classifySymlinkError(err, target)
	}
	if !filesystem.IsDir(s.fs, target) {
		_ = s.fs.Remove(target)
		return OutcomeFailed, errors.Newf(errors.ErrSymlinkCreate, "symlink %s does not resolve to a directory", target)
	}
	return OutcomeOK, nil
}

func classifySymlinkError(err error, target string) error {
	switch {
	case stderrors.Is(err, unix.EXDEV):
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cross-device link refused for %s", target)
	case stderrors.Is(err, unix.EPERM), stderrors.Is(err, unix.EACCES):
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "not permitted to create symlink %s", target)
	default:
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create symlink %s", target)
	}
}

// JunctionStrategy asks Wine to create a directory junction
type JunctionStrategy struct {
	fs    types.FS
	maker JunctionMaker
}

func (s *JunctionStrategy) Name() types.StrategyName { return types.StrategyJunction }

// Applicable is false without a usable runtime
func (s *JunctionStrategy) Applicable(source, target string) bool {
	return s.maker != nil && s.maker.Available()
}

func (s *JunctionStrategy) Operation(source, target string) types.Operation {
	op := types.Operation{Type: types.OperationJunction, Source: source, Target: target}
	if s.maker != nil {
		op.Command = s.maker.DescribeJunction(target, source)
	}
	return op
}

func (s *JunctionStrategy) Describe(source, target string) string {
	return s.Operation(source, target).Describe()
}

func (s *JunctionStrategy) Attempt(ctx context.Context, source, target string) (Outcome, error) {
	if s.maker == nil {
		return OutcomeInapplicable, nil
	}
	if err := s.maker.CreateJunction(ctx, target, source); err != nil {
		if filesystem.Exists(s.fs, target) {
			_ = s.fs.Remove(target)
		}
		return OutcomeFailed, errors.Wrapf(err, errors.ErrRuntimeExec, "junction %s failed", target)
	}
	if !filesystem.IsDir(s.fs, target) {
		_ = s.fs.Remove(target)
		return OutcomeFailed, errors.Newf(errors.ErrRuntimeExec, "junction %s does not resolve to a directory", target)
	}
	return OutcomeOK, nil
}

// CopyStrategy copies the tree; the result is a snapshot
type CopyStrategy struct {
	fs types.FS
}

func (s *CopyStrategy) Name() types.StrategyName { return types.StrategyCopy }

func (s *CopyStrategy) Applicable(source, target string) bool { return true }

func (s *CopyStrategy) Operation(source, target string) types.Operation {
	return types.Operation{Type: types.OperationCopy, Source: source, Target: target}
}

func (s *CopyStrategy) Describe(source, target string) string {
	return s.Operation(source, target).Describe()
}

// partialSuffix marks a copy still in progress
const partialSuffix = ".gamelink-partial"

func (s *CopyStrategy) Attempt(ctx context.Context, source, target string) (Outcome, error) {
	partial := target + partialSuffix
	if err := s.fs.RemoveAll(partial); err != nil {
		return OutcomeFailed, errors.Wrapf(err, errors.ErrFileWrite, "failed to clear %s", partial)
	}
	if err := CopyTree(ctx, s.fs, source, partial); err != nil {
		_ = s.fs.RemoveAll(partial)
		return OutcomeFailed, err
	}
	if err := s.fs.Rename(partial, target); err != nil {
		_ = s.fs.RemoveAll(partial)
		return OutcomeFailed, errors.Wrapf(err, errors.ErrFileWrite, "failed to move copy into %s", target)
	}
	return OutcomeOK, nil
}

func attemptRecord(s Strategy, o Outcome, err error) types.StrategyAttempt {
	a := types.StrategyAttempt{Strategy: s.Name(), Outcome: o.String()}
	if err != nil {
		a.Error = err.Error()
	}
	return a
}

func exhausted(attempts []types.StrategyAttempt, target string) error {
	msg := fmt.Sprintf("every link strategy failed for %s", target)
	return errors.New(errors.ErrLinkStrategyExhausted, msg).WithDetail("attempts", attempts)
}
