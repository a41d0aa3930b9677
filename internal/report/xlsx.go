package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	statisticsSheet = "Statistics"
	sectorsSheet    = "Sectors"
)

// XLSX writes the statistics and sector tallies as a workbook with one
// sheet each.
func XLSX(in Input) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statisticsSheet); err != nil {
		return nil, err
	}
	rows := [][]interface{}{{"Section", "Statistic", "Value"}}
	for _, s := range in.Statistics {
		if s.Empty && isHeader(s.Name) {
			continue
		}
		var value interface{}
		switch {
		case s.Empty:
			value = ""
		case s.IsInt:
			value = int(s.Value)
		default:
			value = s.Value
		}
		rows = append(rows, []interface{}{s.Section, s.Name, value})
	}
	if err := writeRows(f, statisticsSheet, rows); err != nil {
		return nil, err
	}

	if h := in.Histogram; h != nil {
		if _, err := f.NewSheet(sectorsSheet); err != nil {
			return nil, err
		}
		rows = [][]interface{}{{"Sector", "From", "To", "Count", "Percent"}}
		for i, c := range h.Counts {
			from, to := sectorBounds(*h, i)
			rows = append(rows, []interface{}{i + 1, from, to, c, h.Percents[i]})
		}
		if err := writeRows(f, sectorsSheet, rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
