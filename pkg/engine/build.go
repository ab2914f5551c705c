package engine

import (
	"github.com/arthur-debert/gamelink/pkg/backup"
	"github.com/arthur-debert/gamelink/pkg/config"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/library"
	"github.com/arthur-debert/gamelink/pkg/linking"
	"github.com/arthur-debert/gamelink/pkg/locate"
	"github.com/arthur-debert/gamelink/pkg/metadata"
	"github.com/arthur-debert/gamelink/pkg/paths"
	"github.com/arthur-debert/gamelink/pkg/selection"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/arthur-debert/gamelink/pkg/ui/choice"
	"github.com/arthur-debert/gamelink/pkg/verify"
	"github.com/arthur-debert/gamelink/pkg/wine"
)

// BuildOptions are the switches that shape how collaborators are built
type BuildOptions struct {
	DryRun       bool
	Force        bool
	RefreshNames bool
	// Provider answers operator prompts; nil means fail closed
	Provider choice.Provider
	// FS defaults to the OS filesystem
	FS types.FS
}

// FromConfig wires every collaborator from cfg
func FromConfig(cfg *config.Config, p paths.Paths, opts BuildOptions) (*Engine, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	runtime := wine.New(fsys, wine.Options{
		Prefix:   cfg.Runtime.Prefix,
		Wine:     cfg.Runtime.Wine,
		WinePath: cfg.Runtime.Winepath,
		Timeout:  cfg.Runtime.Timeout,
	})

	strategies, err := linking.NewStrategies(cfg.Link.Strategies, fsys, runtime, cfg.Runtime.FollowsSymlinks)
	if err != nil {
		return nil, err
	}
	linker := linking.NewLinker(fsys, strategies, linking.Options{DryRun: opts.DryRun, Force: opts.Force})

	resolverOpts := []metadata.ResolverOption{
		metadata.WithRefresh(opts.RefreshNames),
		metadata.WithReadOnly(opts.DryRun),
		metadata.WithWorkers(cfg.Metadata.Workers),
	}
	if cfg.Metadata.Remote {
		resolverOpts = append(resolverOpts, metadata.WithRemote(
			metadata.NewHTTPLookup(cfg.Metadata.Endpoint, cfg.Metadata.UserAgent, cfg.Metadata.Timeout)))
	}

	var probe verify.Probe
	if cfg.Runtime.Probe && runtime.Available() {
		probe = runtime
	}

	deps := Deps{
		FS:       fsys,
		Scanner:  library.NewScanner(fsys, cfg.Scan.ReservedIDs),
		Resolver: metadata.NewResolver(metadata.NewCache(fsys, p.NameCacheDir(), cfg.Metadata.MaxAge), resolverOpts...),
		Locator:  locate.NewLocator(fsys, opts.Provider, cfg.Locate.SearchRoots),
		Store:    selection.NewStore(fsys, p.SelectionFile()),
		Linker:   linker,
		Verifier: verify.New(fsys, probe),
		Archiver: backup.New(fsys, p.BackupDir()),
		Provider: opts.Provider,
	}
	if cfg.Link.Aux {
		deps.Aux = linking.NewAuxLinker(fsys, linker, cfg.AuxRootDir())
	}
	return New(deps), nil
}

// LibraryRoots returns the configured roots followed, when enabled, by the
// standard Steam locations under home
func LibraryRoots(cfg *config.Config, home string) []string {
	roots := append([]string(nil), cfg.Scan.Roots...)
	if cfg.Scan.DefaultRoots {
		roots = append(roots, paths.DefaultLibraryRoots(home)...)
	}
	return roots
}
