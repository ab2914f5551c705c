package display

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/beevik/etree"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport(dryRun bool) *types.RunReport {
	status := types.StatusLinked
	if dryRun {
		status = types.StatusPlanned
	}
	r := &types.RunReport{
		DryRun:    dryRun,
		TargetDir: "/prefix/drive_c/Program Files (x86)/Steam/steamapps/common",
		RootsUsed: []string{"/lib"},
		Items: []types.ItemReport{
			{
				ID:         "440",
				Name:       "Example Game",
				NameSource: types.SourceLocalManifest,
				Status:     status,
				Directory: &types.ResolvedDirectory{
					ItemID: "440", Path: "/lib/steamapps/common/Example Game",
					SearchRoot: "/lib/steamapps/common", Strategy: types.MatchDeclaredInstallDir,
				},
				Link: &types.LinkResult{
					ItemID:   "440",
					Strategy: types.StrategySymlink,
					Operations: []types.Operation{
						{Type: types.OperationSymlink, Source: "/lib/steamapps/common/Example Game", Target: "/t/Example Game"},
					},
					Aux: []types.AuxResult{{Kind: types.AuxAppData, Warning: "source missing"}},
				},
			},
			{
				ID:         "999",
				Name:       "Unknown (999)",
				NameSource: types.SourceUnknown,
				Status:     types.StatusFailed,
				ErrorCode:  "DIRECTORY_NOT_FOUND",
				Detail:     "no payload | directory",
			},
			{
				ID:     "620",
				Name:   "Example: Sequel!",
				Status: types.StatusSkipped,
				Detail: "canceled",
			},
		},
	}
	r.Summarize()
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"xml", FormatJUnit, false},
		{"md", FormatMarkdown, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "text, json, yaml, toml, junit, markdown", FormatNames())
}

func TestRenderReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, FormatText, sampleReport(true), Options{Title: "link"}))
	out := buf.String()

	assert.Contains(t, out, "Link (dry run)")
	assert.Contains(t, out, "Example Game")
	assert.Contains(t, out, "○ planned")
	assert.Contains(t, out, "✗ failed")
	assert.Contains(t, out, "Planned operations:")
	assert.Contains(t, out, `440  symlink "/t/Example Game" -> "/lib/steamapps/common/Example Game"`)
	assert.Contains(t, out, "440  appdata: source missing")
	assert.Contains(t, out, "3 items: 1 planned, 1 skipped, 1 failed")
}

func TestRenderReportTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := &types.RunReport{}
	require.NoError(t, RenderReport(&buf, FormatText, r, Options{Title: "verify"}))
	assert.Contains(t, buf.String(), "Verify")
	assert.Contains(t, buf.String(), "No items selected")
}

func TestRenderReportTextIsStable(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, RenderReport(&a, FormatText, sampleReport(true), Options{}))
	require.NoError(t, RenderReport(&b, FormatText, sampleReport(true), Options{}))
	assert.Equal(t, a.String(), b.String())
}

func TestRenderReportStructured(t *testing.T) {
	report := sampleReport(false)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderReport(&buf, FormatJSON, report, Options{}))
		var got types.RunReport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, report.Summary, got.Summary)
		assert.Equal(t, types.StatusLinked, got.Items[0].Status)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderReport(&buf, FormatYAML, report, Options{}))
		var got map[string]interface{}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		items := got["items"].([]interface{})
		require.Len(t, items, 3)
		assert.Equal(t, "linked", items[0].(map[string]interface{})["status"])
	})

	t.Run("toml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderReport(&buf, FormatTOML, report, Options{}))
		var got map[string]interface{}
		require.NoError(t, toml.Unmarshal(buf.Bytes(), &got))
		items := got["items"].([]interface{})
		require.Len(t, items, 3)
		assert.Equal(t, "DIRECTORY_NOT_FOUND", items[1].(map[string]interface{})["errorCode"])
	})
}

func TestRenderReportJUnit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, FormatJUnit, sampleReport(false), Options{Title: "link"}))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	suite := doc.SelectElement("testsuite")
	require.NotNil(t, suite)
	assert.Equal(t, "3", suite.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", suite.SelectAttrValue("failures", ""))
	assert.Equal(t, "1", suite.SelectAttrValue("skipped", ""))

	cases := suite.SelectElements("testcase")
	require.Len(t, cases, 3)
	assert.Equal(t, "Example Game (440)", cases[0].SelectAttrValue("name", ""))
	assert.Nil(t, cases[0].SelectElement("failure"))
	require.NotNil(t, cases[1].SelectElement("failure"))
	assert.Equal(t, "DIRECTORY_NOT_FOUND", cases[1].SelectElement("failure").SelectAttrValue("type", ""))
	assert.NotNil(t, cases[2].SelectElement("skipped"))
}

func TestRenderReportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, FormatMarkdown, sampleReport(false), Options{Title: "link"}))
	out := buf.String()
	assert.Contains(t, out, "# gamelink link")
	assert.Contains(t, out, "| 440 | Example Game | linked | symlink |")
	assert.Contains(t, out, `no payload \| directory`)
	assert.Contains(t, out, "## Warnings")
}

func TestRenderInventory(t *testing.T) {
	inv := &Inventory{
		RootsUsed: []string{"/lib", "/other"},
		Items: []InventoryItem{
			{ID: "440", Name: "Example Game", NameSource: types.SourceCacheHit, InstallDirs: []string{"Example Game"}, Roots: []string{"/lib", "/other"}},
		},
	}

	var text bytes.Buffer
	require.NoError(t, RenderInventory(&text, FormatText, inv, Options{}))
	assert.Contains(t, text.String(), "/other")
	assert.Contains(t, text.String(), "cache-hit")
	assert.Contains(t, text.String(), "1 items in 2 libraries")

	var js bytes.Buffer
	require.NoError(t, RenderInventory(&js, FormatJSON, inv, Options{}))
	var got Inventory
	require.NoError(t, json.Unmarshal(js.Bytes(), &got))
	assert.Equal(t, *inv, got)

	var md bytes.Buffer
	require.NoError(t, RenderInventory(&md, FormatMarkdown, inv, Options{}))
	assert.Contains(t, md.String(), "| 440 | Example Game | cache-hit | Example Game |")

	assert.Error(t, RenderInventory(&bytes.Buffer{}, FormatJUnit, inv, Options{}))
}
