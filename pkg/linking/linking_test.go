package linking

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/testutil"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type stubJunction struct {
	available bool
	err       error
	calls     int
}

func (s *stubJunction) Available() bool { return s.available }

func (s *stubJunction) CreateJunction(_ context.Context, target, source string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return os.Symlink(source, target)
}

func (s *stubJunction) DescribeJunction(target, source string) string {
	return fmt.Sprintf("wine cmd /c mklink /J %q %q", target, source)
}

var defaultChain = []string{"symlink", "junction", "copy"}

func chain(t *testing.T, fsys types.FS, j JunctionMaker) []Strategy {
	s, err := NewStrategies(defaultChain, fsys, j, true)
	require.NoError(t, err)
	return s
}

func payload(t *testing.T) string {
	src := filepath.Join(t.TempDir(), "Example Game")
	testutil.CreateFile(t, src, "game.exe", "binary")
	testutil.CreateFile(t, src, "data/level1.pak", "level")
	return src
}

func TestLink_Symlink(t *testing.T) {
	fsys := filesystem.NewOS()
	src := payload(t)
	parent := filepath.Join(t.TempDir(), "prefix", "common")

	res, err := NewLinker(fsys, chain(t, fsys, nil), Options{}).
		Link(context.Background(), src, parent, "Example Game")
	require.NoError(t, err)

	target := filepath.Join(parent, "Example Game")
	assert.Equal(t, types.StrategySymlink, res.Strategy)
	assert.Equal(t, target, res.TargetPath)
	assert.False(t, res.Degraded)
	testutil.AssertSymlink(t, target, src)
	assert.Equal(t, []types.Operation{
		{Type: types.OperationMkdir, Target: parent},
		{Type: types.OperationSymlink, Source: src, Target: target},
	}, res.Operations)
}

func TestLink_DryRunThenApply(t *testing.T) {
	fsys := filesystem.NewOS()
	src := payload(t)
	parent := t.TempDir()
	target := filepath.Join(parent, "Example Game")
	testutil.CreateFile(t, target, "stale.txt", "old")

	dry := NewLinker(fsys, chain(t, fsys, nil), Options{DryRun: true})
	planned, err := dry.Link(context.Background(), src, parent, "Example Game")
	require.NoError(t, err)

	again, err := dry.Link(context.Background(), src, parent, "Example Game")
	require.NoError(t, err)
	assert.Equal(t, describe(planned.Operations), describe(again.Operations), "dry runs must be identical")
	assert.Equal(t, []string{
		`remove "` + target + `"`,
		`symlink "` + target + `" -> "` + src + `"`,
	}, describe(planned.Operations))

	// nothing touched
	assert.False(t, testutil.IsSymlink(target))
	assert.FileExists(t, filepath.Join(target, "stale.txt"))

	applied, err := NewLinker(fsys, chain(t, fsys, nil), Options{}).
		Link(context.Background(), src, parent, "Example Game")
	require.NoError(t, err)
	assert.Equal(t, describe(planned.Operations), describe(applied.Operations))
	testutil.AssertSymlink(t, target, src)
}

func describe(ops []types.Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Describe()
	}
	return out
}

func TestLink_FallbackToCopy(t *testing.T) {
	fsys := testutil.NewFaultyFS()
	src := payload(t)
	parent := t.TempDir()
	target := filepath.Join(parent, "Example Game")
	fsys.Fail(testutil.OpSymlink, target, unix.EXDEV)
	junction := &stubJunction{available: true, err: errors.New(errors.ErrRuntimeExec, "mklink failed")}

	res, err := NewLinker(fsys, chain(t, fsys, junction), Options{}).
		Link(context.Background(), src, parent, "Example Game")
	require.NoError(t, err)

	assert.Equal(t, types.StrategyCopy, res.Strategy)
	assert.True(t, res.Degraded)
	assert.Equal(t, 1, junction.calls, "junction attempted after symlink failed")
	require.Len(t, res.Attempts, 3)
	assert.Equal(t, "failed", res.Attempts[0].Outcome)
	assert.Contains(t, res.Attempts[0].Error, "cross-device")
	assert.Equal(t, "failed", res.Attempts[1].Outcome)
	assert.Equal(t, "ok", res.Attempts[2].Outcome)

	assert.False(t, testutil.IsSymlink(target))
	assert.Equal(t, "binary", testutil.ReadFile(t, filepath.Join(target, "game.exe")))
	assert.Equal(t, "level", testutil.ReadFile(t, filepath.Join(target, "data", "level1.pak")))
	testutil.AssertNoPath(t, target+partialSuffix)
}

func TestLink_JunctionWhenSymlinksNotFollowed(t *testing.T) {
	fsys := filesystem.NewOS()
	src := payload(t)
	parent := t.TempDir()
	junction := &stubJunction{available: true}
	strategies, err := NewStrategies(defaultChain, fsys, junction, false)
	require.NoError(t, err)

	res, err := NewLinker(fsys, strategies, Options{}).Link(context.Background(), src, parent, "g")
	require.NoError(t, err)
	assert.Equal(t, types.StrategyJunction, res.Strategy)
	assert.Equal(t, "inapplicable", res.Attempts[0].Outcome)
}

func TestLink_JunctionDryRunMatchesApply(t *testing.T) {
	fsys := filesystem.NewOS()
	src := payload(t)
	parent := t.TempDir()
	target := filepath.Join(parent, "Example Game")
	junction := &stubJunction{available: true}
	strategies, err := NewStrategies(defaultChain, fsys, junction, false)
	require.NoError(t, err)

	planned, err := NewLinker(fsys, strategies, Options{DryRun: true}).
		Link(context.Background(), src, parent, "Example Game")
	require.NoError(t, err)
	assert.Equal(t, types.StrategyJunction, planned.Strategy)
	assert.Zero(t, junction.calls)
	assert.Equal(t, []string{
		fmt.Sprintf("wine cmd /c mklink /J %q %q", target, src),
	}, describe(planned.Operations))
	testutil.AssertNoPath(t, target)

	applied, err := NewLinker(fsys, strategies, Options{}).
		Link(context.Background(), src, parent, "Example Game")
	require.NoError(t, err)
	assert.Equal(t, 1, junction.calls)
	assert.Equal(t, planned.Operations, applied.Operations)
}

func TestLink_RefusesOverlappingTarget(t *testing.T) {
	tests := []struct {
		name   string
		parent func(src string) string
		base   func(src string) string
	}{
		{
			name:   "target is the source",
			parent: filepath.Dir,
			base:   filepath.Base,
		},
		{
			name:   "target inside the source",
			parent: func(src string) string { return filepath.Join(src, "data") },
			base:   func(string) string { return "Example Game" },
		},
		{
			name:   "target contains the source",
			parent: func(src string) string { return filepath.Dir(filepath.Dir(src)) },
			base:   func(src string) string { return filepath.Base(filepath.Dir(src)) },
		},
		{
			name: "target reached through a symlinked parent",
			parent: func(src string) string {
				alias := filepath.Join(filepath.Dir(src), "alias")
				if _, err := os.Lstat(alias); err != nil {
					_ = os.Symlink(filepath.Dir(src), alias)
				}
				return alias
			},
			base: filepath.Base,
		},
	}

	for _, tt := range tests {
		for _, dryRun := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s dry-run=%v", tt.name, dryRun), func(t *testing.T) {
				fsys := testutil.NewFaultyFS()
				src := payload(t)
				parent, base := tt.parent(src), tt.base(src)
				linker := NewLinker(fsys, chain(t, fsys, nil), Options{DryRun: dryRun})

				res, err := linker.Link(context.Background(), src, parent, base)
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				assert.Empty(t, res.Operations)
				assert.Empty(t, linker.PendingMutations(src, filepath.Join(parent, base)))

				assert.Equal(t, "binary", testutil.ReadFile(t, filepath.Join(src, "game.exe")))
				assert.Equal(t, "level", testutil.ReadFile(t, filepath.Join(src, "data", "level1.pak")))
				assert.False(t, fsys.Called(testutil.OpRemoveAll, filepath.Join(parent, base)))
				assert.False(t, fsys.Called(testutil.OpRemove, filepath.Join(parent, base)))
			})
		}
	}
}

func TestLink_Exhausted(t *testing.T) {
	fsys := testutil.NewFaultyFS()
	src := payload(t)
	parent := t.TempDir()
	fsys.FailAll(testutil.OpSymlink, unix.EPERM)
	fsys.FailAll(testutil.OpMkdirAll, unix.EACCES)

	res, err := NewLinker(fsys, chain(t, fsys, nil), Options{}).
		Link(context.Background(), src, parent, "g")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkStrategyExhausted))
	assert.Equal(t, types.StrategyNone, res.Strategy)
	require.Len(t, res.Attempts, 3)
	assert.Equal(t, "inapplicable", res.Attempts[1].Outcome)
	testutil.AssertNoPath(t, filepath.Join(parent, "g"))
	testutil.AssertNoPath(t, filepath.Join(parent, "g"+partialSuffix))
}

func TestLink_AlreadyLinkedIsLeftAlone(t *testing.T) {
	fsys := testutil.NewFaultyFS()
	src := payload(t)
	parent := t.TempDir()
	target := filepath.Join(parent, "g")
	testutil.CreateSymlink(t, src, target)

	res, err := NewLinker(fsys, chain(t, fsys, nil), Options{}).Link(context.Background(), src, parent, "g")
	require.NoError(t, err)
	assert.Equal(t, types.StrategySymlink, res.Strategy)
	assert.Empty(t, res.Operations)
	assert.False(t, fsys.Called(testutil.OpRemove, target))

	res, err = NewLinker(fsys, chain(t, fsys, nil), Options{Force: true}).Link(context.Background(), src, parent, "g")
	require.NoError(t, err)
	assert.Equal(t, types.OperationRemove, res.Operations[0].Type)
	assert.True(t, fsys.Called(testutil.OpRemove, target))
	testutil.AssertSymlink(t, target, src)
}

func TestLink_ReplacesWrongLink(t *testing.T) {
	fsys := filesystem.NewOS()
	src := payload(t)
	other := payload(t)
	parent := t.TempDir()
	target := filepath.Join(parent, "g")
	testutil.CreateSymlink(t, other, target)

	linker := NewLinker(fsys, chain(t, fsys, nil), Options{})
	assert.Equal(t, []string{target}, linker.PendingMutations(src, target))

	_, err := linker.Link(context.Background(), src, parent, "g")
	require.NoError(t, err)
	testutil.AssertSymlink(t, target, src)
	// the previous link target is untouched
	assert.FileExists(t, filepath.Join(other, "game.exe"))
	assert.Empty(t, linker.PendingMutations(src, target))
}

func TestLink_RemoveFailure(t *testing.T) {
	fsys := testutil.NewFaultyFS()
	src := payload(t)
	parent := t.TempDir()
	target := filepath.Join(parent, "g")
	testutil.CreateFile(t, target, "x", "x")
	fsys.Fail(testutil.OpRemoveAll, target, unix.EBUSY)

	_, err := NewLinker(fsys, chain(t, fsys, nil), Options{}).Link(context.Background(), src, parent, "g")
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkStrategyExhausted))
}

func TestCopyTree(t *testing.T) {
	fsys := filesystem.NewOS()
	src := payload(t)
	script := testutil.CreateFile(t, src, "run.sh", "#!/bin/sh\n")
	require.NoError(t, os.Chmod(script, 0755))
	testutil.CreateSymlink(t, "game.exe", filepath.Join(src, "alias.exe"))
	dst := filepath.Join(t.TempDir(), "copy")

	require.NoError(t, CopyTree(context.Background(), fsys, src, dst))

	info, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	testutil.AssertSymlink(t, filepath.Join(dst, "alias.exe"), "game.exe")
	assert.Equal(t, "level", testutil.ReadFile(t, filepath.Join(dst, "data", "level1.pak")))
}

func TestCopy_CanceledRemovesPartial(t *testing.T) {
	fsys := filesystem.NewOS()
	src := payload(t)
	target := filepath.Join(t.TempDir(), "g")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := (&CopyStrategy{fs: fsys}).Attempt(ctx, src, target)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanceled))
	testutil.AssertNoPath(t, target)
	testutil.AssertNoPath(t, target+partialSuffix)
}

func TestNewStrategies(t *testing.T) {
	fsys := filesystem.NewOS()

	s, err := NewStrategies([]string{"copy", "symlink"}, fsys, nil, true)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, types.StrategyCopy, s[0].Name())

	_, err = NewStrategies([]string{"hardlink"}, fsys, nil, true)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	_, err = NewStrategies(nil, fsys, nil, true)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestAuxLinker(t *testing.T) {
	fsys := filesystem.NewOS()
	a := testutil.NewSteamLibrary(t, "a")
	b := testutil.NewSteamLibrary(t, "b").CompatData("440", true, false)
	auxRoot := filepath.Join(t.TempDir(), "aux")
	item := &types.Item{ID: "440", Roots: []string{a.Root, b.Root}}

	aux := NewAuxLinker(fsys, NewLinker(fsys, chain(t, fsys, nil), Options{}), auxRoot)
	assert.Empty(t, aux.PendingMutations(item))

	results := aux.Link(context.Background(), item)
	require.Len(t, results, 1, "missing AppData is skipped silently")
	assert.Equal(t, types.AuxDocuments, results[0].Kind)
	assert.Empty(t, results[0].Warning)
	testutil.AssertSymlink(t, filepath.Join(auxRoot, "440", "documents"), AuxSource(b.Root, "440", types.AuxDocuments))
}

func TestAuxLinker_FailureIsWarning(t *testing.T) {
	fsys := testutil.NewFaultyFS()
	lib := testutil.NewSteamLibrary(t, "lib").CompatData("440", true, true)
	auxRoot := filepath.Join(t.TempDir(), "aux")
	fsys.Fail(testutil.OpMkdirAll, filepath.Join(auxRoot, "440"), unix.EACCES)

	results := NewAuxLinker(fsys, NewLinker(fsys, chain(t, fsys, nil), Options{}), auxRoot).
		Link(context.Background(), &types.Item{ID: "440", Roots: []string{lib.Root}})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEmpty(t, r.Warning)
	}
}
