package gamelink

import (
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/gamelink/internal/version"
	"github.com/arthur-debert/gamelink/pkg/config"
	"github.com/arthur-debert/gamelink/pkg/display"
	"github.com/arthur-debert/gamelink/pkg/engine"
	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/filesystem"
	"github.com/arthur-debert/gamelink/pkg/metadata"
	"github.com/arthur-debert/gamelink/pkg/paths"
	"github.com/arthur-debert/gamelink/pkg/selection"
	"github.com/arthur-debert/gamelink/pkg/ui/choice"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// scanFlags are shared by every command that scans the libraries
type scanFlags struct {
	roots          []string
	noDefaultRoots bool
}

func (s *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&s.roots, "root", nil, MsgFlagRoot)
	cmd.Flags().BoolVar(&s.noDefaultRoots, "no-default-roots", false, MsgFlagNoDefaultRoots)
}

func (s *scanFlags) overrides(into map[string]interface{}) {
	if s.noDefaultRoots {
		into["scan.default_roots"] = false
	}
}

// libraryRoots puts the flag roots before the configured ones
func (s *scanFlags) libraryRoots(cfg *config.Config) []string {
	home, _ := os.UserHomeDir()
	var roots []string
	for _, r := range s.roots {
		if abs, err := paths.NormalizePath(r); err == nil {
			roots = append(roots, abs)
		}
	}
	return append(roots, engine.LibraryRoots(cfg, home)...)
}

func newScanCmd(g *globalOptions) *cobra.Command {
	var (
		sf           scanFlags
		refreshNames bool
	)
	cmd := &cobra.Command{
		Use:     "scan",
		Short:   MsgScanShort,
		Long:    MsgScanLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			sf.overrides(overrides)
			cfg, p, err := g.loadConfig(overrides)
			if err != nil {
				return err
			}
			eng, err := engine.FromConfig(cfg, p, engine.BuildOptions{
				DryRun:       g.dryRun,
				RefreshNames: refreshNames,
			})
			if err != nil {
				return err
			}

			entries, scan, err := eng.Inventory(cmd.Context(), sf.libraryRoots(cfg))
			if err != nil {
				return err
			}

			inv := &display.Inventory{RootsUsed: scan.RootsUsed, Items: []display.InventoryItem{}}
			for _, en := range entries {
				inv.Items = append(inv.Items, display.InventoryItem{
					ID:          en.Item.ID,
					Name:        en.Meta.DisplayName,
					NameSource:  en.Meta.Source,
					InstallDirs: en.Item.InstallDirs(),
					Roots:       en.Item.Roots,
				})
			}

			w := cmd.OutOrStdout()
			format, opts, err := g.output(w)
			if err != nil {
				return err
			}
			return display.RenderInventory(w, format, inv, opts)
		},
	}
	sf.register(cmd)
	cmd.Flags().BoolVar(&refreshNames, "refresh-names", false, MsgFlagRefreshNames)
	return cmd
}

func newLinkCmd(g *globalOptions) *cobra.Command {
	var (
		sf             scanFlags
		selectIDs      []string
		all            bool
		reselect       bool
		nonInteractive bool
		refreshNames   bool
		force          bool
		backup         bool
		noAux          bool
		target         string
		prefix         string
	)
	cmd := &cobra.Command{
		Use:               "link [ids...]",
		Short:             MsgLinkShort,
		Long:              MsgLinkLong,
		Example:           MsgLinkExample,
		GroupID:           "core",
		ValidArgsFunction: itemIDCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			sf.overrides(overrides)
			if cmd.Flags().Changed("backup") {
				overrides["link.backup"] = backup
			}
			if noAux {
				overrides["link.aux"] = false
			}
			if target != "" {
				overrides["link.target"] = target
			}
			if prefix != "" {
				overrides["runtime.prefix"] = prefix
			}

			cfg, p, err := g.loadConfig(overrides)
			if err != nil {
				return err
			}
			eng, err := engine.FromConfig(cfg, p, engine.BuildOptions{
				DryRun:       g.dryRun,
				Force:        force,
				RefreshNames: refreshNames,
				Provider:     choice.Auto(nonInteractive),
			})
			if err != nil {
				return err
			}

			log.Info().
				Str("target", cfg.TargetDir()).
				Bool("dry_run", g.dryRun).
				Bool("backup", cfg.Link.Backup).
				Msg("Linking")

			report, runErr := eng.Run(cmd.Context(), engine.Options{
				Roots:     sf.libraryRoots(cfg),
				TargetDir: cfg.TargetDir(),
				Select:    append(selectIDs, args...),
				All:       all,
				Reselect:  reselect,
				DryRun:    g.dryRun,
				Backup:    cfg.Link.Backup,
			})
			if runErr != nil {
				// Rows collected before an interrupt are still worth showing;
				// a fatal error means nothing was linked
				if !errors.IsFatal(runErr) && report != nil && len(report.Items) > 0 {
					_ = g.renderReport(cmd, "link", report)
				}
				return runErr
			}
			if err := g.renderReport(cmd, "link", report); err != nil {
				return err
			}
			return reportError(report)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringSliceVar(&selectIDs, "select", nil, MsgFlagSelect)
	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	cmd.Flags().BoolVar(&reselect, "reselect", false, MsgFlagReselect)
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, MsgFlagNonInteractive)
	cmd.Flags().BoolVar(&refreshNames, "refresh-names", false, MsgFlagRefreshNames)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	cmd.Flags().BoolVar(&backup, "backup", false, MsgFlagBackup)
	cmd.Flags().BoolVar(&noAux, "no-aux", false, MsgFlagNoAux)
	cmd.Flags().StringVar(&target, "target", "", MsgFlagTarget)
	cmd.Flags().StringVar(&prefix, "prefix", "", MsgFlagPrefix)
	cmd.MarkFlagsMutuallyExclusive("select", "all")
	return cmd
}

func newVerifyCmd(g *globalOptions) *cobra.Command {
	var (
		sf        scanFlags
		selectIDs []string
		target    string
		prefix    string
	)
	cmd := &cobra.Command{
		Use:               "verify [ids...]",
		Short:             MsgVerifyShort,
		Long:              MsgVerifyLong,
		GroupID:           "core",
		ValidArgsFunction: itemIDCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			sf.overrides(overrides)
			if target != "" {
				overrides["link.target"] = target
			}
			if prefix != "" {
				overrides["runtime.prefix"] = prefix
			}
			cfg, p, err := g.loadConfig(overrides)
			if err != nil {
				return err
			}
			eng, err := engine.FromConfig(cfg, p, engine.BuildOptions{DryRun: true})
			if err != nil {
				return err
			}

			report, err := eng.VerifyOnly(cmd.Context(), engine.Options{
				Roots:     sf.libraryRoots(cfg),
				TargetDir: cfg.TargetDir(),
				Select:    append(selectIDs, args...),
			})
			if err != nil {
				return err
			}
			if err := g.renderReport(cmd, "verify", report); err != nil {
				return err
			}
			return reportError(report)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringSliceVar(&selectIDs, "select", nil, MsgFlagSelect)
	cmd.Flags().StringVar(&target, "target", "", MsgFlagTarget)
	cmd.Flags().StringVar(&prefix, "prefix", "", MsgFlagPrefix)
	return cmd
}

func newSelectionCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "selection",
		Short:   MsgSelectionShort,
		GroupID: "misc",
	}

	store := func() (*selection.Store, error) {
		p, err := paths.New()
		if err != nil {
			return nil, err
		}
		return selection.NewStore(filesystem.NewOS(), p.SelectionFile()), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgSelectionShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			ids, err := s.Load()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), MsgSelectionEmpty)
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: MsgSelectionClearShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store()
			if err != nil {
				return err
			}
			if g.dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would remove %s\n", s.Path())
				return nil
			}
			if err := s.Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgSelectionCleared, s.Path())
			return nil
		},
	})
	return cmd
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Short:   MsgCacheShort,
		Long:    MsgCacheLong,
		GroupID: "misc",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [ids...]",
		Short: MsgCacheClearShort,
		Long:  MsgCacheLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New()
			if err != nil {
				return err
			}
			cache := metadata.NewCache(filesystem.NewOS(), p.NameCacheDir(), 0)

			if len(args) == 0 {
				n, err := cache.Clear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), MsgCacheCleared, n, cache.Dir())
				return nil
			}

			removed := 0
			for _, id := range args {
				if _, ok := cache.Get(id); !ok {
					continue
				}
				if err := cache.Delete(id); err != nil {
					return err
				}
				removed++
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgCacheCleared, removed, cache.Dir())
			return nil
		},
	})
	return cmd
}

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
	}

	configPath := func() (string, error) {
		if g.configFile != "" {
			return paths.ExpandHome(g.configFile), nil
		}
		p, err := paths.New()
		if err != nil {
			return "", err
		}
		return p.ConfigFile(), nil
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, MsgFlagConfigForce)
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.loadConfig(nil)
			if err != nil {
				return err
			}
			enc := toml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndentTables(true)
			if err := enc.Encode(cfg.Raw()); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "failed to write configuration")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: MsgConfigPathShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(w)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}

// itemIDCompletion completes scanned item ids with their names. It never
// queries the remote endpoint.
func itemIDCompletion(g *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, p, err := g.loadConfig(map[string]interface{}{"metadata.remote": false})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		eng, err := engine.FromConfig(cfg, p, engine.BuildOptions{DryRun: true})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		home, _ := os.UserHomeDir()
		entries, _, err := eng.Inventory(cmd.Context(), engine.LibraryRoots(cfg, home))
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		taken := make(map[string]bool, len(args))
		for _, a := range args {
			taken[a] = true
		}
		var out []string
		for _, en := range entries {
			if taken[en.Item.ID] || !strings.HasPrefix(en.Item.ID, toComplete) {
				continue
			}
			out = append(out, en.Item.ID+"\t"+en.Meta.DisplayName)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
