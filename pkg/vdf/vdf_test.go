package vdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `"AppState"
{
	"appid"		"440"
	"Universe"		"1"
	"name"		"Team Fortress 2"
	"StateFlags"		"4"
	"installdir"		"Team Fortress 2"
	"UserConfig"
	{
		"language"		"english"
	}
	// trailing comment
}
`

func TestParse_Manifest(t *testing.T) {
	root, err := Parse(strings.NewReader(manifest))
	require.NoError(t, err)

	state := root.Get("appstate")
	require.NotNil(t, state, "keys match case-insensitively")
	assert.True(t, state.IsBlock)

	name, ok := state.String("name")
	assert.True(t, ok)
	assert.Equal(t, "Team Fortress 2", name)

	dir, ok := state.String("InstallDir")
	assert.True(t, ok)
	assert.Equal(t, "Team Fortress 2", dir)

	lang := root.Find("AppState", "UserConfig", "language")
	require.NotNil(t, lang)
	assert.Equal(t, "english", lang.Value)

	_, ok = state.String("UserConfig")
	assert.False(t, ok, "blocks have no string value")
	assert.Nil(t, root.Find("AppState", "missing", "x"))
}

func TestParse_LibraryFolders(t *testing.T) {
	doc := `"libraryfolders"
{
	"0"
	{
		"path"		"/home/u/.local/share/Steam"
		"apps"
		{
			"228980"		"0"
		}
	}
	"1"
	{
		"path"		"/mnt/games/SteamLibrary"
	}
}`
	root, err := ParseString(doc)
	require.NoError(t, err)

	var paths []string
	root.Walk(func(n *Node) {
		if !n.IsBlock && strings.EqualFold(n.Key, "path") {
			paths = append(paths, n.Value)
		}
	})
	assert.Equal(t, []string{"/home/u/.local/share/Steam", "/mnt/games/SteamLibrary"}, paths)
}

func TestParse_EscapesBareTokensAndConditions(t *testing.T) {
	doc := "\ufeffroot {\n" +
		`	"quoted"	"say \"hi\"\\there"` + "\n" +
		`	"win"	"C:\Games\Foo"` + "\n" +
		`	bare	token` + "\n" +
		`	"cond"	"1"	[$WIN32]` + "\n" +
		`	"block" [$LINUX] { "k" "v" }` + "\n" +
		"}\n"

	root, err := ParseString(doc)
	require.NoError(t, err)
	r := root.Get("root")
	require.NotNil(t, r)

	v, _ := r.String("quoted")
	assert.Equal(t, `say "hi"\there`, v)
	v, _ = r.String("win")
	assert.Equal(t, `C:\Games\Foo`, v)
	v, _ = r.String("bare")
	assert.Equal(t, "token", v)
	v, _ = r.String("cond")
	assert.Equal(t, "1", v)
	assert.NotNil(t, r.Find("block", "k"))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unclosed_block", `"a" { "b" "c"`},
		{"stray_close", `"a" "b" }`},
		{"unterminated_string", `"a" "b`},
		{"missing_value", `"a" { "b" }`},
		{"block_without_key", `{ "a" "b" }`},
		{"unterminated_condition", `"a" "b" [$WIN32`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	root, err := ParseString("  // nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, root.Children)
}
