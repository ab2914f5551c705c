package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/gamelink/pkg/backup"
	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/library"
	"github.com/arthur-debert/gamelink/pkg/linking"
	"github.com/arthur-debert/gamelink/pkg/locate"
	"github.com/arthur-debert/gamelink/pkg/metadata"
	"github.com/arthur-debert/gamelink/pkg/selection"
	"github.com/arthur-debert/gamelink/pkg/testutil"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/arthur-debert/gamelink/pkg/ui/choice"
	"github.com/arthur-debert/gamelink/pkg/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type env struct {
	t         *testing.T
	fs        types.FS
	lib       *testutil.SteamLibrary
	state     string
	targetDir string
	auxRoot   string
	provider  choice.Provider
	junction  linking.JunctionMaker

	// false makes the chain skip plain symlinks
	followsSymlinks bool
}

// fakeJunction stands in for wine's mklink with a plain symlink
type fakeJunction struct {
	calls int
}

func (f *fakeJunction) Available() bool { return true }

func (f *fakeJunction) CreateJunction(_ context.Context, target, source string) error {
	f.calls++
	return os.Symlink(source, target)
}

func (f *fakeJunction) DescribeJunction(target, source string) string {
	return fmt.Sprintf("wine cmd /c mklink /J %q %q", target, source)
}

func newEnv(t *testing.T) *env {
	lib := testutil.NewSteamLibrary(t, "steam").
		Manifest("440", "Example Game", "Example Game").
		Payload("Example Game", "game.exe", "data/base.pak").
		Manifest("620", "Example: Sequel!", "").
		Payload("examplesequel").
		CompatData("440", true, true)
	prefix := testutil.Prefix(t)
	return &env{
		t:         t,
		fs:        filesystem.NewOS(),
		lib:       lib,
		state:     t.TempDir(),
		targetDir: filepath.Join(prefix, "drive_c", "Program Files (x86)", "Steam", "steamapps", "common"),
		auxRoot:   filepath.Join(prefix, "drive_c", "users", "Public", "gamelink"),
		provider:  choice.FailClosed{},

		followsSymlinks: true,
	}
}

func (e *env) engine(dryRun bool) *Engine {
	strategies, err := linking.NewStrategies([]string{"symlink", "junction", "copy"}, e.fs, e.junction, e.followsSymlinks)
	require.NoError(e.t, err)
	linker := linking.NewLinker(e.fs, strategies, linking.Options{DryRun: dryRun})
	return New(Deps{
		FS:       e.fs,
		Scanner:  library.NewScanner(e.fs, []string{"228980"}),
		Resolver: metadata.NewResolver(metadata.NewCache(e.fs, filepath.Join(e.state, "names"), 0), metadata.WithReadOnly(dryRun)),
		Locator:  locate.NewLocator(e.fs, e.provider, nil),
		Store:    selection.NewStore(e.fs, e.selectionFile()),
		Linker:   linker,
		Aux:      linking.NewAuxLinker(e.fs, linker, e.auxRoot),
		Verifier: verify.New(e.fs, nil),
		Archiver: backup.New(e.fs, filepath.Join(e.state, "backups")),
		Provider: e.provider,
	})
}

func (e *env) selectionFile() string {
	return filepath.Join(e.state, "selection.log")
}

func (e *env) opts() Options {
	return Options{Roots: []string{e.lib.Root}, TargetDir: e.targetDir}
}

func statuses(r *types.RunReport) map[string]types.ItemStatus {
	out := map[string]types.ItemStatus{}
	for _, it := range r.Items {
		out[it.ID] = it.Status
	}
	return out
}

func TestRun_LinksSelectedItems(t *testing.T) {
	e := newEnv(t)
	opts := e.opts()
	opts.All = true

	report, err := e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, map[string]types.ItemStatus{"440": types.StatusLinked, "620": types.StatusLinked}, statuses(report))
	assert.True(t, report.Success())
	assert.Equal(t, 2, report.Summary.Linked)
	assert.Equal(t, []string{e.lib.Root}, report.RootsUsed)

	testutil.AssertSymlink(t, filepath.Join(e.targetDir, "Example Game"), filepath.Join(e.lib.Common(), "Example Game"))
	testutil.AssertSymlink(t, filepath.Join(e.targetDir, "examplesequel"), filepath.Join(e.lib.Common(), "examplesequel"))

	first := report.Items[0]
	assert.Equal(t, types.MatchDeclaredInstallDir, first.Directory.Strategy)
	assert.True(t, first.Link.Verified)
	assert.Equal(t, 2, first.Link.Verification.EntryCount)
	require.Len(t, first.Link.Aux, 2)
	assert.True(t, testutil.IsSymlink(filepath.Join(e.auxRoot, "440", "documents")))

	assert.Equal(t, types.MatchNormalizedName, report.Items[1].Directory.Strategy)

	ids, err := selection.NewStore(e.fs, e.selectionFile()).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"440", "620"}, ids)
}

func TestRun_DryRunIsStableAndMatchesApply(t *testing.T) {
	e := newEnv(t)
	opts := e.opts()
	opts.Select = []string{"440,620"}
	opts.DryRun = true

	first, err := e.engine(true).Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := e.engine(true).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, second, "dry runs over unchanged inputs must match")

	assert.Equal(t, map[string]types.ItemStatus{"440": types.StatusPlanned, "620": types.StatusPlanned}, statuses(first))
	testutil.AssertNoPath(t, e.targetDir)
	testutil.AssertNoPath(t, e.selectionFile())

	opts.DryRun = false
	applied, err := e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)
	for i := range applied.Items {
		assert.Equal(t, first.Items[i].Link.Operations, applied.Items[i].Link.Operations, applied.Items[i].ID)
	}
}

func TestRun_JunctionDryRunMatchesApply(t *testing.T) {
	e := newEnv(t)
	junction := &fakeJunction{}
	e.junction = junction
	e.followsSymlinks = false
	opts := e.opts()
	opts.Select = []string{"440"}
	opts.DryRun = true

	planned, err := e.engine(true).Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, planned.Items, 1)
	assert.Equal(t, types.StatusPlanned, planned.Items[0].Status)
	assert.Equal(t, 0, junction.calls)
	testutil.AssertNoPath(t, e.targetDir)

	target := filepath.Join(e.targetDir, "Example Game")
	source := filepath.Join(e.lib.Common(), "Example Game")
	ops := planned.Items[0].Link.Operations
	require.NotEmpty(t, ops)
	last := ops[len(ops)-1]
	assert.Equal(t, types.OperationJunction, last.Type)
	assert.Equal(t, fmt.Sprintf("wine cmd /c mklink /J %q %q", target, source), last.Describe())

	opts.DryRun = false
	applied, err := e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, applied.Items, 1)
	assert.Equal(t, types.StatusLinked, applied.Items[0].Status)
	assert.Equal(t, types.StrategyJunction, applied.Items[0].Link.Strategy)
	assert.Equal(t, ops, applied.Items[0].Link.Operations)
	testutil.AssertSymlink(t, target, source)
}

func TestRun_TargetOverlappingLibraryIsRefused(t *testing.T) {
	for _, dryRun := range []bool{true, false} {
		t.Run(fmt.Sprintf("dryRun=%v", dryRun), func(t *testing.T) {
			e := newEnv(t)
			e.targetDir = e.lib.Common()
			opts := e.opts()
			opts.Select = []string{"440"}
			opts.Backup = true
			opts.DryRun = dryRun

			report, err := e.engine(dryRun).Run(context.Background(), opts)
			require.NoError(t, err)
			require.Len(t, report.Items, 1)
			row := report.Items[0]
			assert.Equal(t, types.StatusFailed, row.Status)
			assert.Equal(t, string(errors.ErrInvalidInput), row.ErrorCode)
			assert.Empty(t, row.Link.Operations)
			assert.Empty(t, report.BackupPaths)
			assert.Empty(t, report.BackupArchive)

			payload := filepath.Join(e.lib.Common(), "Example Game")
			assert.FileExists(t, filepath.Join(payload, "game.exe"))
			assert.FileExists(t, filepath.Join(payload, "data", "base.pak"))
			assert.False(t, testutil.IsSymlink(payload))
		})
	}
}

func TestRun_RepeatedRunIsIdempotent(t *testing.T) {
	e := newEnv(t)
	opts := e.opts()
	opts.All = true
	_, err := e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)

	// second run uses the stored selection and finds everything linked
	opts.All = false
	report, err := e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, report.Success())
	for _, it := range report.Items {
		assert.Empty(t, it.Link.Operations, it.ID)
		assert.Equal(t, "already linked", it.Link.Detail)
	}
}

func TestRun_StoredSelectionSkipsPrompt(t *testing.T) {
	e := newEnv(t)
	_, err := selection.NewStore(e.fs, e.selectionFile()).Append("620")
	require.NoError(t, err)
	provider := choice.NewScripted(nil, []int{0})
	e.provider = provider

	report, err := e.engine(false).Run(context.Background(), e.opts())
	require.NoError(t, err)
	assert.Equal(t, map[string]types.ItemStatus{"620": types.StatusLinked}, statuses(report))
	assert.Empty(t, provider.Prompts)

	opts := e.opts()
	opts.Reselect = true
	report, err = e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, map[string]types.ItemStatus{"440": types.StatusLinked}, statuses(report))
	assert.Len(t, provider.Prompts, 1)

	ids, err := selection.NewStore(e.fs, e.selectionFile()).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"440"}, ids)
}

func TestRun_ReselectClearsStoreBeforePrompt(t *testing.T) {
	e := newEnv(t)
	_, err := selection.NewStore(e.fs, e.selectionFile()).Append("620")
	require.NoError(t, err)
	provider := choice.NewScripted(nil)
	e.provider = provider
	opts := e.opts()
	opts.Reselect = true

	t.Run("dry run keeps the record", func(t *testing.T) {
		dry := opts
		dry.DryRun = true
		report, err := e.engine(true).Run(context.Background(), dry)
		require.NoError(t, err)
		assert.Empty(t, report.Items)
		ids, err := selection.NewStore(e.fs, e.selectionFile()).Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"620"}, ids)
	})

	t.Run("empty pick leaves the record empty", func(t *testing.T) {
		report, err := e.engine(false).Run(context.Background(), opts)
		require.NoError(t, err)
		assert.Empty(t, report.Items)
		assert.Len(t, provider.Prompts, 2)
		ids, err := selection.NewStore(e.fs, e.selectionFile()).Load()
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestRun_NothingSelected(t *testing.T) {
	e := newEnv(t)

	report, err := e.engine(false).Run(context.Background(), e.opts())
	require.NoError(t, err)
	assert.Empty(t, report.Items)
	assert.True(t, report.Success())
	testutil.AssertNoPath(t, e.selectionFile())
}

func TestRun_PerItemFailuresDoNotAbort(t *testing.T) {
	e := newEnv(t)
	e.lib.Manifest("700", "Empty Game", "Empty Game").EmptyPayload("Empty Game")
	e.lib.Manifest("800", "Missing Game", "")
	opts := e.opts()
	opts.Select = []string{"700", "440", "800", "999"}

	report, err := e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, map[string]types.ItemStatus{
		"700": types.StatusSkipped,
		"440": types.StatusLinked,
		"800": types.StatusSkipped,
		"999": types.StatusSkipped,
	}, statuses(report))
	assert.False(t, report.Success())
	for _, it := range report.Items {
		if it.ID == "700" || it.ID == "800" {
			assert.Equal(t, string(errors.ErrDirectoryNotFound), it.ErrorCode)
		}
	}
}

func TestRun_LinkFailureIsScopedToItem(t *testing.T) {
	e := newEnv(t)
	faulty := testutil.NewFaultyFS()
	target := filepath.Join(e.targetDir, "Example Game")
	faulty.Fail(testutil.OpSymlink, target, unix.EPERM)
	faulty.Fail(testutil.OpMkdirAll, target+".gamelink-partial", unix.EACCES)
	e.fs = faulty
	opts := e.opts()
	opts.All = true

	report, err := e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, map[string]types.ItemStatus{"440": types.StatusFailed, "620": types.StatusLinked}, statuses(report))
	assert.Equal(t, string(errors.ErrLinkStrategyExhausted), report.Items[0].ErrorCode)
}

func TestRun_Backup(t *testing.T) {
	e := newEnv(t)
	stale := filepath.Join(e.targetDir, "Example Game")
	testutil.CreateFile(t, stale, "old.txt", "old")
	opts := e.opts()
	opts.Select = []string{"440"}
	opts.Backup = true

	t.Run("dry run plans the archive", func(t *testing.T) {
		dry := opts
		dry.DryRun = true
		report, err := e.engine(true).Run(context.Background(), dry)
		require.NoError(t, err)
		assert.Equal(t, []string{stale}, report.BackupPaths)
		assert.Empty(t, report.BackupArchive)
		testutil.AssertNoPath(t, filepath.Join(e.state, "backups"))
	})

	t.Run("archive written before replacing", func(t *testing.T) {
		report, err := e.engine(false).Run(context.Background(), opts)
		require.NoError(t, err)
		require.NotEmpty(t, report.BackupArchive)
		assert.FileExists(t, report.BackupArchive)
		testutil.AssertSymlink(t, stale, filepath.Join(e.lib.Common(), "Example Game"))
	})
}

func TestRun_BackupFailureAborts(t *testing.T) {
	e := newEnv(t)
	stale := filepath.Join(e.targetDir, "Example Game")
	testutil.CreateFile(t, stale, "old.txt", "old")
	faulty := testutil.NewFaultyFS()
	faulty.Fail(testutil.OpMkdirAll, filepath.Join(e.state, "backups"), unix.EROFS)
	e.fs = faulty
	opts := e.opts()
	opts.Select = []string{"440"}
	opts.Backup = true

	_, err := e.engine(false).Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupFailed))
	assert.True(t, errors.IsFatal(err))
	assert.FileExists(t, filepath.Join(stale, "old.txt"), "nothing mutated")
}

func TestRun_FatalScanErrors(t *testing.T) {
	e := newEnv(t)
	opts := e.opts()
	opts.Roots = []string{filepath.Join(t.TempDir(), "nowhere")}

	_, err := e.engine(false).Run(context.Background(), opts)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoLibraryFound))
}

func TestRun_Canceled(t *testing.T) {
	e := newEnv(t)
	opts := e.opts()
	opts.All = true
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.engine(false).Run(ctx, opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanceled))
	for _, it := range report.Items {
		assert.Equal(t, types.StatusSkipped, it.Status)
	}
	testutil.AssertNoPath(t, filepath.Join(e.targetDir, "Example Game"))
}

func TestVerifyOnly(t *testing.T) {
	e := newEnv(t)
	opts := e.opts()
	opts.All = true
	_, err := e.engine(false).Run(context.Background(), opts)
	require.NoError(t, err)

	report, err := e.engine(false).VerifyOnly(context.Background(), e.opts())
	require.NoError(t, err)
	assert.Equal(t, map[string]types.ItemStatus{"440": types.StatusLinked, "620": types.StatusLinked}, statuses(report))

	require.NoError(t, os.Remove(filepath.Join(e.targetDir, "examplesequel")))
	report, err = e.engine(false).VerifyOnly(context.Background(), e.opts())
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, statuses(report)["620"])
	assert.False(t, report.Success())
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, dedupe([]string{"1,2", " 2 ", "3,,1"}))
	assert.Nil(t, dedupe(nil))
}
