package formats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

// Tabular layout shared by csv and xlsx. Columns are found by header name;
// "id" is optional.
var columns = []string{"id", "competency", "level", "text", "options", "correct"}

// questionNS derives stable ids for rows that carry none, so re-importing the
// same file yields the same questions.
var questionNS = uuid.MustParse("6f1c2a8e-4b7d-4e0a-9c3f-2d5e8b1a7c40")

type header map[string]int

func parseHeader(row []string) (header, error) {
	h := header{}
	for i, c := range row {
		h[strings.ToLower(strings.TrimSpace(c))] = i
	}
	for _, c := range columns[1:] {
		if _, ok := h[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return h, nil
}

func (h header) cell(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseOptions reads "a=Yes|b=No".
func ParseOptions(s string) ([]model.QuestionOption, error) {
	var out []model.QuestionOption
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("option %q is not key=value", part)
		}
		out = append(out, model.QuestionOption{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
	}
	return out, nil
}

func formatOptions(opts []model.QuestionOption) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = o.Key + "=" + o.Value
	}
	return strings.Join(parts, "|")
}

func (h header) question(row []string) (model.Question, error) {
	lvl, err := model.ParseLevel(h.cell(row, "level"))
	if err != nil {
		return model.Question{}, err
	}
	opts, err := ParseOptions(h.cell(row, "options"))
	if err != nil {
		return model.Question{}, err
	}
	q := model.Question{
		ID:               h.cell(row, "id"),
		Competency:       h.cell(row, "competency"),
		Level:            lvl,
		Text:             h.cell(row, "text"),
		Options:          opts,
		CorrectOptionKey: h.cell(row, "correct"),
	}
	return q, checkQuestion(&q)
}

// checkQuestion validates q and fills a derived id when it has none.
func checkQuestion(q *model.Question) error {
	switch {
	case q.Text == "":
		return errors.New("text is empty")
	case q.Competency == "":
		return errors.New("competency is empty")
	case len(q.Options) < 2:
		return errors.New("need at least two options")
	case q.CorrectOptionKey == "":
		return errors.New("correct key is empty")
	case !q.HasOption(q.CorrectOptionKey):
		return fmt.Errorf("correct key %q is not an option", q.CorrectOptionKey)
	}
	if _, err := model.ParseLevel(string(q.Level)); err != nil {
		return err
	}
	if q.ID == "" {
		q.ID = uuid.NewSHA1(questionNS, []byte(string(q.Level)+"\x00"+q.Competency+"\x00"+q.Text)).String()
	}
	return nil
}

func record(q model.Question) []string {
	return []string{q.ID, q.Competency, string(q.Level), q.Text, formatOptions(q.Options), q.CorrectOptionKey}
}

// importRows feeds a header row plus data rows into a result. Row numbers
// are 1-based, the header being row 1.
func importRows(rows [][]string) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty file")
	}
	h, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}
	res := &ImportResult{}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		res.TotalProcessed++
		q, err := h.question(row)
		if err != nil {
			res.reject(i+2, err)
			continue
		}
		res.Questions = append(res.Questions, q)
	}
	return res, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
