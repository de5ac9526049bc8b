package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/talgya/task-market/internal/engine"
)

const (
	sheetDays      = "Days"
	sheetCompanies = "Companies"
	sheetPenalties = "Penalties"
)

// BuildWorkbook lays a run out as one sheet per record type.
func BuildWorkbook(run *engine.RunResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetDays); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetCompanies, sheetPenalties} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(run.Companies))
	for i, c := range run.Companies {
		ids[i] = c.ID
	}

	dayHeaders := []any{"Day", "Predicted", "True Demand", "Published", "Unmet", "Cost"}
	for _, id := range ids {
		dayHeaders = append(dayHeaders, "Cap "+id, "Alloc "+id, "Defects "+id)
	}
	dayHeaders = append(dayHeaders, "Good", "Defects", "Reduction", "Purchased", "Profit", "Expected Profit")

	rows := [][]any{dayHeaders}
	for _, d := range run.Days {
		row := []any{d.Day, d.PredictedDemand, d.TrueDemand, d.TasksPublished, d.UnmetDemand, d.AllocationCost}
		for _, id := range ids {
			row = append(row, d.Capacities[id], d.Allocation[id], d.Production[id].Defects)
		}
		row = append(row, d.TotalGoodProducts, d.DefectsToday, d.PurchaseReduction,
			d.ActualPurchase, d.ActualProfit, d.ExpectedProfit)
		rows = append(rows, row)
	}
	if err := writeRows(f, sheetDays, rows, headerStyle); err != nil {
		return nil, err
	}

	rows = [][]any{{"Company", "Name", "Quality", "Tag", "Production", "Income", "Defects", "Defect %", "Damage"}}
	for _, c := range run.Companies {
		damage, _ := c.TotalDamage.Float64()
		rows = append(rows, []any{c.ID, c.Name, c.Quality, c.Tag, c.TotalProduction, c.TotalIncome,
			c.TotalDefects, fmt.Sprintf("%.1f%%", c.DefectPercent), damage})
	}
	if err := writeRows(f, sheetCompanies, rows, headerStyle); err != nil {
		return nil, err
	}

	rows = [][]any{{"Company", "Total Damage", "Penalty", "Rate", "Damage Days"}}
	for _, id := range ids {
		p, ok := run.Penalties[id]
		if !ok {
			continue
		}
		damage, _ := p.TotalDamage.Float64()
		penalty, _ := p.PenaltyAmount.Float64()
		rate, _ := p.PenaltyRate.Float64()
		rows = append(rows, []any{id, damage, penalty, rate, p.DamageDays})
	}
	if err := writeRows(f, sheetPenalties, rows, headerStyle); err != nil {
		return nil, err
	}

	f.SetColWidth(sheetCompanies, "B", "B", 24)
	return f, nil
}

// WriteWorkbook builds the workbook and saves it to path.
func WriteWorkbook(path string, run *engine.RunResult) error {
	f, err := BuildWorkbook(run)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetRowStyle(sheet, 1, 1, headerStyle)
}
