package types

import "fmt"

// ItemRecord is one registry entry (appmanifest) found under a library root
type ItemRecord struct {
	ID           string `json:"id" yaml:"id" toml:"id"`
	InstallDir   string `json:"installDir,omitempty" yaml:"installDir,omitempty" toml:"installDir,omitempty"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	ManifestPath string `json:"manifestPath" yaml:"manifestPath" toml:"manifestPath"`
	Root         string `json:"root" yaml:"root" toml:"root"`
}

// Item is a deduplicated item together with every root it appeared under.
// Records and Roots keep discovery order.
type Item struct {
	ID      string       `json:"id" yaml:"id" toml:"id"`
	Records []ItemRecord `json:"records" yaml:"records" toml:"records"`
	Roots   []string     `json:"roots" yaml:"roots" toml:"roots"`
}

// InstallDirs returns the distinct declared install subdirectories
func (i *Item) InstallDirs() []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, r := range i.Records {
		if r.InstallDir == "" || seen[r.InstallDir] {
			continue
		}
		seen[r.InstallDir] = true
		dirs = append(dirs, r.InstallDir)
	}
	return dirs
}

// ManifestName returns the first name recorded in any manifest
func (i *Item) ManifestName() string {
	for _, r := range i.Records {
		if r.Name != "" {
			return r.Name
		}
	}
	return ""
}

// NameSource tells where a display name came from
type NameSource string

const (
	SourceCacheHit      NameSource = "cache-hit"
	SourceLocalManifest NameSource = "local-manifest"
	SourceRemoteLookup  NameSource = "remote-lookup"
	SourceUnknown       NameSource = "unknown"
)

// ItemMetadata is the resolved display name of an item
type ItemMetadata struct {
	ID          string     `json:"id" yaml:"id" toml:"id"`
	DisplayName string     `json:"displayName" yaml:"displayName" toml:"displayName"`
	Source      NameSource `json:"source" yaml:"source" toml:"source"`
}

// UnknownName is the placeholder used when a name cannot be resolved
func UnknownName(id string) string {
	return fmt.Sprintf("Unknown (%s)", id)
}

// MatchStrategy names the heuristic step that located a payload directory
type MatchStrategy string

const (
	MatchDeclaredInstallDir  MatchStrategy = "declared-installdir"
	MatchExactName           MatchStrategy = "exact-name"
	MatchCaseInsensitiveName MatchStrategy = "case-insensitive-name"
	MatchNormalizedName      MatchStrategy = "normalized-name"
	MatchEmbeddedID          MatchStrategy = "embedded-id"
	MatchOperatorChoice      MatchStrategy = "operator-choice"
)

// ResolvedDirectory is the payload directory chosen for an item
type ResolvedDirectory struct {
	ItemID     string        `json:"itemId" yaml:"itemId" toml:"itemId"`
	Path       string        `json:"path" yaml:"path" toml:"path"`
	SearchRoot string        `json:"searchRoot" yaml:"searchRoot" toml:"searchRoot"`
	Strategy   MatchStrategy `json:"strategy" yaml:"strategy" toml:"strategy"`
}
