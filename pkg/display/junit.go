package display

import (
	"fmt"
	"io"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/beevik/etree"
)

// renderJUnit writes the report as a junit testsuite so CI systems can
// show one testcase per item. Degraded and failed items are failures,
// skipped items are skipped.
func renderJUnit(w io.Writer, report *types.RunReport, title string) error {
	if title == "" {
		title = "link"
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suite := doc.CreateElement("testsuite")
	suite.CreateAttr("name", "gamelink."+title)
	suite.CreateAttr("tests", fmt.Sprint(report.Summary.Total))
	suite.CreateAttr("failures", fmt.Sprint(report.Summary.Failed+report.Summary.Degraded))
	suite.CreateAttr("skipped", fmt.Sprint(report.Summary.Skipped))

	if report.TargetDir != "" || report.DryRun {
		props := suite.CreateElement("properties")
		addProperty(props, "targetDir", report.TargetDir)
		addProperty(props, "dryRun", fmt.Sprint(report.DryRun))
		if report.BackupArchive != "" {
			addProperty(props, "backupArchive", report.BackupArchive)
		}
	}

	for _, it := range report.Items {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("classname", "gamelink."+title)
		tc.CreateAttr("name", fmt.Sprintf("%s (%s)", it.Name, it.ID))

		switch it.Status {
		case types.StatusFailed, types.StatusDegraded:
			f := tc.CreateElement("failure")
			f.CreateAttr("type", failureType(it))
			f.CreateAttr("message", detailCell(it))
			f.SetText(string(it.Status))
		case types.StatusSkipped:
			s := tc.CreateElement("skipped")
			s.CreateAttr("message", detailCell(it))
		}

		if it.Link != nil && len(it.Link.Operations) > 0 {
			var ops string
			for _, op := range it.Link.Operations {
				ops += op.Describe() + "\n"
			}
			tc.CreateElement("system-out").SetText(ops)
		}
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write junit output")
	}
	return nil
}

func addProperty(props *etree.Element, name, value string) {
	p := props.CreateElement("property")
	p.CreateAttr("name", name)
	p.CreateAttr("value", value)
}

func failureType(it types.ItemReport) string {
	if it.ErrorCode != "" {
		return it.ErrorCode
	}
	return string(it.Status)
}
