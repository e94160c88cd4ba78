package api

import (
	"context"
	"net/http"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func (c *Client) ListQuestions(ctx context.Context, q model.QuestionListQuery) (*model.Pagination[model.Question], error) {
	v := pageQuery(q.Page, q.Limit)
	if q.Level != "" {
		v.Set("level", string(q.Level))
	}
	if q.Competency != "" {
		v.Set("competency", q.Competency)
	}
	var out model.Pagination[model.Question]
	if err := c.query(ctx, "/admin/questions", v, &out, TagQuestions); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	p, err := idPath("/admin/questions", id)
	if err != nil {
		return nil, err
	}
	var out model.QuestionEnvelope
	if err := c.query(ctx, p, nil, &out, TagQuestions); err != nil {
		return nil, err
	}
	return &out.Question, nil
}

func checkQuestion(q model.Question) error {
	if q.Text == "" {
		return invalid("question text is required")
	}
	if len(q.Options) < 2 {
		return invalid("question %q needs at least two options", q.Text)
	}
	if q.CorrectOptionKey != "" && !q.HasOption(q.CorrectOptionKey) {
		return invalid("question %q: correct key %q is not an option", q.Text, q.CorrectOptionKey)
	}
	return nil
}

func (c *Client) CreateQuestion(ctx context.Context, q model.Question) (*model.Question, error) {
	if err := checkQuestion(q); err != nil {
		return nil, err
	}
	var out model.QuestionEnvelope
	if err := c.mutate(ctx, http.MethodPost, "/admin/questions", q, &out, TagQuestions); err != nil {
		return nil, err
	}
	return &out.Question, nil
}

// UpdateQuestion sends a partial document; only the set fields are changed.
func (c *Client) UpdateQuestion(ctx context.Context, id string, fields map[string]any) (*model.Question, error) {
	p, err := idPath("/admin/questions", id)
	if err != nil {
		return nil, err
	}
	var out model.QuestionEnvelope
	if err := c.mutate(ctx, http.MethodPut, p, fields, &out, TagQuestions); err != nil {
		return nil, err
	}
	return &out.Question, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, id string) (*model.MessageResponse, error) {
	p, err := idPath("/admin/questions", id)
	if err != nil {
		return nil, err
	}
	var out model.MessageResponse
	if err := c.mutate(ctx, http.MethodDelete, p, nil, &out, TagQuestions); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BulkQuestions(ctx context.Context, qs []model.Question) (*model.BulkResponse, error) {
	if len(qs) == 0 {
		return nil, invalid("no questions")
	}
	for _, q := range qs {
		if err := checkQuestion(q); err != nil {
			return nil, err
		}
	}
	var out model.BulkResponse
	if err := c.mutate(ctx, http.MethodPost, "/admin/questions/bulk", qs, &out, TagQuestions); err != nil {
		return nil, err
	}
	return &out, nil
}
