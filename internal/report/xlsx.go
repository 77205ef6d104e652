package report

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"pfshell/internal/model"
)

// sheetNameMax is the xlsx format's sheet-name length limit.
const sheetNameMax = 31

// sheetNameStrip holds the characters the format forbids in sheet names.
const sheetNameStrip = `\/*[]:?`

// Workbook writes finding groups to per-severity xlsx workbooks inside an
// output directory named after the audited host.
type Workbook struct {
	dir string
}

func NewWorkbook(outDir, hostname string) *Workbook {
	return &Workbook{dir: filepath.Join(outDir, "pfShell - "+hostname)}
}

// Dir returns the output directory the workbooks land in.
func (wb *Workbook) Dir() string {
	return wb.dir
}

// Write renders every non-empty criterion as a sheet of
// pfAnalysis-<Severity>.xlsx. Writing is best-effort: a group or workbook
// that fails to write is logged and skipped, and the remaining groups are
// still written. The joined failures are returned for the caller's summary.
func (wb *Workbook) Write(buckets map[model.CriterionID][]model.Finding) error {
	if err := os.MkdirAll(wb.dir, 0o755); err != nil {
		return err
	}

	var failures []error
	for _, sev := range model.Severities {
		groups := SeverityGroups(buckets, sev)
		if len(groups) == 0 {
			continue
		}

		path := filepath.Join(wb.dir, fmt.Sprintf("pfAnalysis-%s.xlsx", sev))
		f, err := excelize.OpenFile(path)
		fresh := false
		if err != nil {
			f = excelize.NewFile()
			fresh = true
		}

		for _, g := range groups {
			if err := writeGroupSheet(f, g); err != nil {
				slog.Warn("Failed to write finding group", "criterion", g.ID, "path", path, "error", err)
				failures = append(failures, err)
			}
		}
		if fresh {
			f.DeleteSheet("Sheet1")
		}
		if err := f.SaveAs(path); err != nil {
			slog.Warn("Failed to save workbook", "path", path, "error", err)
			failures = append(failures, err)
		}
		f.Close()
	}
	return errors.Join(failures...)
}

func writeGroupSheet(f *excelize.File, g Group) error {
	name := SanitizeSheetName(g.Label)
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(g.Findings)+1)
	if g.Findings[0].Rule != nil {
		rows = append(rows, []interface{}{"Line", "Interface", "Type", "Source", "Source Port", "Destination", "Destination Port", "Description"})
		for _, finding := range g.Findings {
			r := finding.Rule
			rows = append(rows, []interface{}{
				lineText(r), r.Interface, typeText(r),
				valueText(r.Source), r.Source.Port,
				valueText(r.Destination), r.Destination.Port,
				r.Description,
			})
		}
	} else {
		rows = append(rows, []interface{}{"Community", "SysLocation", "SysContact", "Poll Port"})
		for _, finding := range g.Findings {
			s := finding.Snmp
			rows = append(rows, []interface{}{s.ROCommunity, s.SysLocation, s.SysContact, s.PollPort})
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeSheetName strips the characters the xlsx format forbids in sheet
// names and truncates to the 31-character limit.
func SanitizeSheetName(label string) string {
	var b strings.Builder
	for _, c := range label {
		if strings.ContainsRune(sheetNameStrip, c) {
			continue
		}
		b.WriteRune(c)
	}
	name := b.String()
	if r := []rune(name); len(r) > sheetNameMax {
		name = string(r[:sheetNameMax])
	}
	if name == "" {
		return "Findings"
	}
	return name
}
