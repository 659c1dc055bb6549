package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"orflow/internal/analytics"
)

var kpiHeader = []string{"KPI", "Value", "Display", "Subtitle", "Target", "Target Met"}

var flagHeader = []string{"Case", "Facility", "Rule", "Label", "Metric", "Value", "Threshold", "Scope", "Severity", "Detail"}

// WriteReport writes the batch result as an Excel workbook with a KPI
// sheet and a Flags sheet.
func WriteReport(path string, result *analytics.BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeKPISheet(f, result.KPIs); err != nil {
		return err
	}
	if err := writeFlagSheet(f, result.Flags); err != nil {
		return err
	}
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %q: %w", path, err)
	}
	return nil
}

func writeKPISheet(f *excelize.File, kpis analytics.DashboardKPIs) error {
	const sheet = "KPIs"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create KPI sheet: %w", err)
	}
	f.SetActiveSheet(index)

	rows := [][]any{toAnyRow(kpiHeader)}
	for _, entry := range []struct {
		name string
		kpi  analytics.KPIResult
	}{
		{"First Case On-Time Starts", kpis.FirstCaseOnTime},
		{"Same-Room Turnover", kpis.Turnover},
		{"Flip-Room Turnover", kpis.FlipTurnover},
		{"OR Utilization", kpis.Utilization},
		{"Case Volume", kpis.Volume},
		{"Cancellation Rate", kpis.Cancellations},
		{"Cumulative Tardiness", kpis.Tardiness},
		{"Non-Operative Time", kpis.NonOperative},
		{"Surgeon Idle (Combined)", kpis.Idle.Combined},
		{"Surgeon Idle (Flip)", kpis.Idle.Flip},
		{"Surgeon Idle (Same Room)", kpis.Idle.SameRoom},
	} {
		row := []any{entry.name, entry.kpi.Value, entry.kpi.DisplayValue, entry.kpi.Subtitle}
		if entry.kpi.Target != nil {
			row = append(row, *entry.kpi.Target)
		} else {
			row = append(row, "")
		}
		if entry.kpi.TargetMet != nil {
			row = append(row, *entry.kpi.TargetMet)
		} else {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	return writeRows(f, sheet, rows)
}

func writeFlagSheet(f *excelize.File, flags []analytics.CaseFlag) error {
	const sheet = "Flags"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create flag sheet: %w", err)
	}

	rows := [][]any{toAnyRow(flagHeader)}
	for _, flag := range flags {
		ruleID := ""
		if flag.RuleID != nil {
			ruleID = *flag.RuleID
		}
		rows = append(rows, []any{
			flag.CaseID, flag.FacilityID, ruleID, flag.Label, flag.Metric,
			flag.Value, flag.Threshold, flag.Scope, flag.Severity, flag.Detail,
		})
	}

	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func toAnyRow(header []string) []any {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	return row
}
