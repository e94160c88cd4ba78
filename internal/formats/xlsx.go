package formats

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func init() { Register(".xlsx", XLSX{}) }

// XLSX reads the first sheet unless Sheet is set. Export always writes the
// workbook's first sheet.
type XLSX struct {
	Sheet string
}

func (x XLSX) Import(_ context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return importRows(rows)
}

func (x XLSX) Export(_ context.Context, w io.Writer, qs []model.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &columns); err != nil {
		return err
	}
	for i, q := range qs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := record(q)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
