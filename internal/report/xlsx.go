// Package report writes reconciliation results to an XLSX worksheet so
// operators can review a batch outside the CLI.
package report

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/san-import-cli/internal/importer"
	"github.com/sells-group/san-import-cli/internal/model"
)

// Write renders a plan to an XLSX workbook at path: one sheet for aliases,
// one for zones.
func Write(path string, plan *importer.Plan) error {
	f := xlsx.NewFile()

	if err := writeAliasSheet(f, plan.Aliases); err != nil {
		return err
	}
	if err := writeZoneSheet(f, plan.Zones); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func writeAliasSheet(f *xlsx.File, aliases []model.AliasCandidate) error {
	sheet, err := f.AddSheet("Aliases")
	if err != nil {
		return eris.Wrap(err, "report: add alias sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Name", "WWPN", "VSAN", "Role", "Syntax", "Status", "Note", "Line"} {
		header.AddCell().SetString(h)
	}

	for _, a := range aliases {
		row := sheet.AddRow()
		row.AddCell().SetString(a.Name)
		row.AddCell().SetString(a.WWPN)
		row.AddCell().SetString(optInt(a.VSAN))
		row.AddCell().SetString(string(a.Role))
		row.AddCell().SetString(string(a.Syntax))
		row.AddCell().SetString(statusLabel(a.Exists))
		row.AddCell().SetString(a.ClassificationNote)
		row.AddCell().SetString(strconv.Itoa(a.OriginLine))
	}
	return nil
}

func writeZoneSheet(f *xlsx.File, zones []model.ZoneCandidate) error {
	sheet, err := f.AddSheet("Zones")
	if err != nil {
		return eris.Wrap(err, "report: add zone sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Name", "VSAN", "Type", "Members", "Unresolved", "Status", "Line"} {
		header.AddCell().SetString(h)
	}

	for _, z := range zones {
		row := sheet.AddRow()
		row.AddCell().SetString(z.Name)
		row.AddCell().SetString(optInt(z.VSAN))
		row.AddCell().SetString(z.ZoneType)
		row.AddCell().SetString(memberList(z.Members))
		row.AddCell().SetString(unresolvedList(z.Unresolved))
		row.AddCell().SetString(statusLabel(z.Exists))
		row.AddCell().SetString(strconv.Itoa(z.OriginLine))
	}
	return nil
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func statusLabel(exists bool) string {
	if exists {
		return "exists"
	}
	return "new"
}

func memberList(members []model.MemberRef) string {
	out := ""
	for i, m := range members {
		if i > 0 {
			out += ", "
		}
		out += m.Name
		if m.Kind == model.MemberInBatch {
			out += " (batch)"
		}
	}
	return out
}

func unresolvedList(unresolved []model.UnresolvedMember) string {
	out := ""
	for i, u := range unresolved {
		if i > 0 {
			out += ", "
		}
		out += u.Kind + ":" + u.RawToken
	}
	return out
}
