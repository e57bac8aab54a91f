// Package catalogio reads and writes the catalog spreadsheet used for bulk import and export.
//
// Layout, first row is a header:
//
//	Title | Author | Publisher | Year | Price | Categories (comma separated)
package catalogio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Catalog"

var header = []interface{}{"Title", "Author", "Publisher", "Year", "Price", "Categories"}

// Row is one catalog line of the spreadsheet.
type Row struct {
	Line       int
	Title      string
	Author     string
	Publisher  string
	Year       *int
	Price      string
	Categories []string
}

// ReadXLSX parses the first sheet. Rows without a title or with an invalid price are skipped
// and reported by line number.
func ReadXLSX(r io.Reader) ([]Row, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	var (
		out     []Row
		skipped []int
	)
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		line := i + 1
		row, ok := parseRow(line, cells)
		if !ok {
			skipped = append(skipped, line)
			continue
		}
		out = append(out, row)
	}
	return out, skipped, nil
}

func parseRow(line int, cells []string) (Row, bool) {
	cell := func(idx int) string {
		if idx < len(cells) {
			return strings.TrimSpace(cells[idx])
		}
		return ""
	}

	row := Row{
		Line:      line,
		Title:     cell(0),
		Author:    cell(1),
		Publisher: cell(2),
		Price:     cell(4),
	}
	if row.Title == "" {
		return row, false
	}
	if _, err := model.ParsePrice(row.Price); err != nil {
		return row, false
	}
	if y := cell(3); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return row, false
		}
		row.Year = &year
	}
	for _, name := range strings.Split(cell(5), ",") {
		if name = strings.TrimSpace(name); name != "" {
			row.Categories = append(row.Categories, name)
		}
	}
	return row, true
}

// WriteXLSX writes the items in the import layout so an export can be re-imported.
func WriteXLSX(w io.Writer, items []model.CatalogItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, item := range items {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		var year interface{}
		if item.Year != nil {
			year = *item.Year
		}
		names := make([]string, 0, len(item.Categories))
		for _, c := range item.Categories {
			names = append(names, c.Name)
		}

		values := []interface{}{item.Title, item.Author, item.Publisher, year, item.Price, strings.Join(names, ", ")}
		if err := f.SetSheetRow(SheetName, cellName, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}
