package formats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func init() { Register(".csv", CSV{}) }

type CSV struct{}

func (CSV) Import(_ context.Context, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return importRows(rows)
}

func (CSV) Export(_ context.Context, w io.Writer, qs []model.Question) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, q := range qs {
		if err := cw.Write(record(q)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
