package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// SteamLibrary builds a native library root under a temporary directory
type SteamLibrary struct {
	t    *testing.T
	Root string
}

// NewSteamLibrary creates <tmp>/<name>/steamapps and returns its builder
func NewSteamLibrary(t *testing.T, name string) *SteamLibrary {
	t.Helper()

	root := filepath.Join(t.TempDir(), name)
	CreateDir(t, root, "steamapps/common")
	return &SteamLibrary{t: t, Root: root}
}

// AtRoot creates a library at an explicit path
func AtRoot(t *testing.T, root string) *SteamLibrary {
	t.Helper()

	CreateDir(t, root, "steamapps/common")
	return &SteamLibrary{t: t, Root: root}
}

// Steamapps returns <root>/steamapps
func (l *SteamLibrary) Steamapps() string {
	return filepath.Join(l.Root, "steamapps")
}

// Common returns <root>/steamapps/common
func (l *SteamLibrary) Common() string {
	return filepath.Join(l.Root, "steamapps", "common")
}

// Manifest writes appmanifest_<id>.acf. Empty fields are omitted.
func (l *SteamLibrary) Manifest(id, name, installDir string) *SteamLibrary {
	l.t.Helper()

	var b strings.Builder
	b.WriteString("\"AppState\"\n{\n")
	fmt.Fprintf(&b, "\t\"appid\"\t\t%q\n", id)
	if name != "" {
		fmt.Fprintf(&b, "\t\"name\"\t\t%q\n", name)
	}
	if installDir != "" {
		fmt.Fprintf(&b, "\t\"installdir\"\t\t%q\n", installDir)
	}
	b.WriteString("}\n")
	CreateFile(l.t, l.Steamapps(), "appmanifest_"+id+".acf", b.String())
	return l
}

// RawManifest writes a manifest file with arbitrary content
func (l *SteamLibrary) RawManifest(filename, content string) *SteamLibrary {
	l.t.Helper()
	CreateFile(l.t, l.Steamapps(), filename, content)
	return l
}

// Payload creates a non-empty payload directory under steamapps/common
func (l *SteamLibrary) Payload(dir string, files ...string) *SteamLibrary {
	l.t.Helper()

	if len(files) == 0 {
		files = []string{"game.exe"}
	}
	for _, f := range files {
		CreateFile(l.t, filepath.Join(l.Common(), dir), f, "payload:"+f)
	}
	return l
}

// EmptyPayload creates an empty directory under steamapps/common
func (l *SteamLibrary) EmptyPayload(dir string) *SteamLibrary {
	l.t.Helper()
	CreateDir(l.t, l.Common(), dir)
	return l
}

// LibraryFolders writes steamapps/libraryfolders.vdf naming other roots
func (l *SteamLibrary) LibraryFolders(roots ...string) *SteamLibrary {
	l.t.Helper()

	var b strings.Builder
	b.WriteString("\"libraryfolders\"\n{\n")
	for i, r := range roots {
		fmt.Fprintf(&b, "\t\"%d\"\n\t{\n\t\t\"path\"\t\t%q\n\t\t\"label\"\t\t\"\"\n\t}\n", i, r)
	}
	b.WriteString("}\n")
	CreateFile(l.t, l.Steamapps(), "libraryfolders.vdf", b.String())
	return l
}

// CompatData creates the per-item user directories of the native prefix
func (l *SteamLibrary) CompatData(id string, withDocuments, withAppData bool) *SteamLibrary {
	l.t.Helper()

	user := filepath.Join(l.Steamapps(), "compatdata", id, "pfx", "drive_c", "users", "steamuser")
	if withDocuments {
		CreateFile(l.t, filepath.Join(user, "Documents"), "save.dat", "save")
	}
	if withAppData {
		CreateFile(l.t, filepath.Join(user, "AppData"), "settings.ini", "[s]")
	}
	return l
}

// Prefix creates a minimal Wine prefix and returns its path
func Prefix(t *testing.T) string {
	t.Helper()

	prefix := filepath.Join(t.TempDir(), "prefix")
	CreateDir(t, prefix, "drive_c/users/Public")
	CreateFile(t, prefix, "system.reg", "WINE REGISTRY Version 2\n")
	return prefix
}
