package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readWorkbook returns the first sheet's name and its rows keyed by the
// header row. Later sheets are ignored.
func readWorkbook(ext string, data []byte) (string, []map[string]any, error) {
	var (
		sheet string
		grid  [][]string
		err   error
	)
	if ext == "xls" {
		sheet, grid, err = readXLS(data)
	} else {
		sheet, grid, err = readXLSX(data)
	}
	if err != nil {
		return "", nil, err
	}
	return sheet, gridToRows(grid), nil
}

func readXLSX(data []byte) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("workbook has no sheets")
	}
	// Raw values keep numbers numeric regardless of the cell's number format.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, err
	}
	return sheets[0], rows, nil
}

func readXLS(data []byte) (sheet string, grid [][]string, err error) {
	// The legacy BIFF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", nil, err
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return "", nil, fmt.Errorf("workbook has no sheets")
	}

	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	return ws.Name, grid, nil
}

// gridToRows keys each data row by the first non-blank row. Empty cells are
// omitted and blank rows skipped.
func gridToRows(grid [][]string) []map[string]any {
	rows := []map[string]any{}

	start := -1
	for i, r := range grid {
		if !blankRow(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return rows
	}

	width := 0
	for _, r := range grid[start:] {
		if len(r) > width {
			width = len(r)
		}
	}
	raw := make([]string, width)
	copy(raw, grid[start])
	header := uniqueHeaders(raw)

	for _, r := range grid[start+1:] {
		if blankRow(r) {
			continue
		}
		row := make(map[string]any, len(r))
		for c, cell := range r {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[header[c]] = typeValue(cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
