package gamelink

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/arthur-debert/gamelink/internal/version"
	"github.com/arthur-debert/gamelink/pkg/cobrax/topics"
	"github.com/arthur-debert/gamelink/pkg/config"
	"github.com/arthur-debert/gamelink/pkg/display"
	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/paths"
	"github.com/arthur-debert/gamelink/pkg/style"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicsFS embed.FS

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	dryRun     bool
	configFile string
	format     string
	noColor    bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "gamelink",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts := logging.Options{
				Verbosity: g.verbosity,
				NoColor:   g.noColor || os.Getenv("NO_COLOR") != "",
			}
			if p, err := paths.New(); err == nil && os.Getenv(logging.LogFileEnv) == "" {
				opts.File = p.LogFilePath()
			}
			logging.Setup(opts)
			logging.LogCommand(cmd.CommandPath(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&g.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&g.format, "format", "f", string(display.FormatText),
		fmt.Sprintf(MsgFlagFormat, display.FormatNames()))
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, MsgFlagNoColor)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.AddCommand(newScanCmd(g))
	rootCmd.AddCommand(newLinkCmd(g))
	rootCmd.AddCommand(newVerifyCmd(g))
	rootCmd.AddCommand(newSelectionCmd(g))
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	installTopics(rootCmd)

	return rootCmd
}

// installTopics adds the embedded help topics to "gamelink help"
func installTopics(rootCmd *cobra.Command) {
	sub, err := fs.Sub(topicsFS, "topics")
	if err != nil {
		return
	}
	var renderer topics.Renderer = topics.PlainRenderer{}
	if style.ColorEnabled(os.Stdout) {
		renderer = topics.GlamourRenderer{}
	}
	tm, err := topics.Load(sub, topics.Options{Extensions: []string{".md"}, Renderer: renderer})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	tm.Install(rootCmd)
}

// loadConfig resolves the application paths and the layered configuration.
// overrides are keyed by dotted path and applied last.
func (g *globalOptions) loadConfig(overrides map[string]interface{}) (*config.Config, paths.Paths, error) {
	p, err := paths.New()
	if err != nil {
		return nil, nil, err
	}

	file, explicit := g.configFile, g.configFile != ""
	if !explicit {
		file = p.ConfigFile()
	}
	cfg, err := config.LoadConfiguration(config.LoadOptions{
		File:      paths.ExpandHome(file),
		Explicit:  explicit,
		Overrides: overrides,
	})
	if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("config", file).
		Str("prefix", cfg.Runtime.Prefix).
		Str("target", cfg.TargetDir()).
		Strs("strategies", cfg.Link.Strategies).
		Msg("Configuration loaded")
	return cfg, p, nil
}

// output returns the report format and the display options for w
func (g *globalOptions) output(w io.Writer) (display.Format, display.Options, error) {
	format, err := display.ParseFormat(g.format)
	if err != nil {
		return "", display.Options{}, err
	}
	color := false
	if f, ok := w.(*os.File); ok && !g.noColor {
		color = style.ColorEnabled(f)
	}
	return format, display.Options{Color: color}, nil
}

func (g *globalOptions) renderReport(cmd *cobra.Command, title string, report *types.RunReport) error {
	w := cmd.OutOrStdout()
	format, opts, err := g.output(w)
	if err != nil {
		return err
	}
	opts.Title = title
	return display.RenderReport(w, format, report, opts)
}

// reportError turns an incomplete report into the command error
func reportError(report *types.RunReport) error {
	if report.Success() {
		return nil
	}
	failed := 0
	for _, it := range report.Items {
		if !it.Succeeded() {
			failed++
		}
	}
	return errors.Newf(errors.ErrIncomplete, MsgErrIncomplete, failed, len(report.Items))
}
