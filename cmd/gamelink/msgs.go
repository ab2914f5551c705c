package gamelink

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort           = "Link native Steam games into a Wine prefix"
	MsgScanShort           = "List the items found in the native libraries"
	MsgLinkShort           = "Link selected games into the Wine prefix"
	MsgVerifyShort         = "Verify existing links without changing them"
	MsgSelectionShort      = "Manage the stored selection"
	MsgSelectionShowShort  = "Print the stored selection"
	MsgSelectionClearShort = "Forget the stored selection"
	MsgCacheShort          = "Manage the display name cache"
	MsgCacheClearShort     = "Remove cached display names"
	MsgConfigShort         = "Manage the configuration file"
	MsgConfigInitShort     = "Write the default configuration file"
	MsgConfigShowShort     = "Print the effective configuration"
	MsgConfigPathShort     = "Print the configuration file path"
	MsgVersionShort        = "Print version information"
	MsgCompletionShort     = "Generate shell completion script"

	// Status messages
	MsgSelectionEmpty   = "No stored selection."
	MsgSelectionCleared = "Stored selection cleared (%s)\n"
	MsgCacheCleared     = "Removed %d cached names from %s\n"
	MsgConfigWritten    = "Wrote %s\n"
	MsgVersionFormat    = "gamelink version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrIncomplete = "%d of %d selected items were not linked"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun         = "Preview changes without executing them"
	MsgFlagConfig         = "Configuration file (default $XDG_CONFIG_HOME/gamelink/config.toml)"
	MsgFlagFormat         = "Output format: %s"
	MsgFlagNoColor        = "Disable colored output"
	MsgFlagRoot           = "Native library root to scan (repeatable)"
	MsgFlagNoDefaultRoots = "Do not scan the standard Steam locations"
	MsgFlagTarget         = "Target directory inside the prefix"
	MsgFlagPrefix         = "Wine prefix"
	MsgFlagSelect         = "Comma-separated item ids to link"
	MsgFlagAll            = "Select every scanned item"
	MsgFlagReselect       = "Ignore and replace the stored selection"
	MsgFlagNonInteractive = "Never prompt; fail closed on every question"
	MsgFlagRefreshNames   = "Look names up again, ignoring the cache"
	MsgFlagForce          = "Relink items that are already linked"
	MsgFlagBackup         = "Archive existing targets before replacing them"
	MsgFlagNoAux          = "Skip the per-item Documents and AppData links"
	MsgFlagConfigForce    = "Overwrite an existing configuration file"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/link-long.txt
	msgLinkLongRaw string
	MsgLinkLong    = strings.TrimSpace(msgLinkLongRaw)

	//go:embed msgs/link-example.txt
	msgLinkExampleRaw string
	MsgLinkExample    = strings.TrimRight(msgLinkExampleRaw, "\n")

	//go:embed msgs/scan-long.txt
	msgScanLongRaw string
	MsgScanLong    = strings.TrimSpace(msgScanLongRaw)

	//go:embed msgs/verify-long.txt
	msgVerifyLongRaw string
	MsgVerifyLong    = strings.TrimSpace(msgVerifyLongRaw)

	//go:embed msgs/cache-long.txt
	msgCacheLongRaw string
	MsgCacheLong    = strings.TrimSpace(msgCacheLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
