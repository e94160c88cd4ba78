package formats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func init() { Register(".json", JSON{}) }

// JSON reads an array of questions in the API's own shape, or an object
// with an "items" array (a saved list page).
type JSON struct{}

func (JSON) Import(_ context.Context, r io.Reader) (*ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var qs []model.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		var page model.Pagination[model.Question]
		if perr := json.Unmarshal(raw, &page); perr != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		qs = page.Items
	}
	res := &ImportResult{}
	for i := range qs {
		res.TotalProcessed++
		q := qs[i]
		if err := checkQuestion(&q); err != nil {
			res.reject(i+1, err)
			continue
		}
		res.Questions = append(res.Questions, q)
	}
	return res, nil
}

func (JSON) Export(_ context.Context, w io.Writer, qs []model.Question) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if qs == nil {
		qs = []model.Question{}
	}
	return enc.Encode(qs)
}
