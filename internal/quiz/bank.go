package quiz

import (
	"context"
	"fmt"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/formats"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

// QuestionsPerStep is the size of a full step.
const QuestionsPerStep = 44

// QuestionBank turns the question references of a started attempt into the
// questions shown to the candidate.
type QuestionBank interface {
	Questions(ctx context.Context, step int, refs []model.AssessmentQuestion) ([]model.Question, error)
}

// QuestionGetter is the slice of the API client APIBank uses.
type QuestionGetter interface {
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
	ListQuestions(ctx context.Context, q model.QuestionListQuery) (*model.Pagination[model.Question], error)
}

// APIBank fetches the referenced questions from the server. Without refs it
// lists the step's levels instead.
type APIBank struct {
	API   QuestionGetter
	Limit int // per step; QuestionsPerStep when 0
}

func (b APIBank) Questions(ctx context.Context, step int, refs []model.AssessmentQuestion) ([]model.Question, error) {
	if len(refs) > 0 {
		out := make([]model.Question, 0, len(refs))
		for _, ref := range refs {
			q, err := b.API.GetQuestion(ctx, ref.QuestionID)
			if err != nil {
				return nil, fmt.Errorf("question %s: %w", ref.QuestionID, err)
			}
			out = append(out, *q)
		}
		return out, nil
	}
	levels, err := StepLevels(step)
	if err != nil {
		return nil, err
	}
	limit := b.Limit
	if limit <= 0 {
		limit = QuestionsPerStep
	}
	var out []model.Question
	for _, lvl := range levels {
		page, err := b.API.ListQuestions(ctx, model.QuestionListQuery{Page: 1, Limit: limit, Level: lvl})
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
	}
	return truncate(out, limit), nil
}

// FileBank serves questions loaded from an import file. Referenced ids are
// used when the file has all of them, otherwise the step's levels are drawn
// in file order.
type FileBank struct {
	All   []model.Question
	Limit int
}

func LoadFileBank(path string) (*FileBank, error) {
	res, err := formats.ImportFile(path)
	if err != nil {
		return nil, err
	}
	if len(res.Questions) == 0 {
		return nil, fmt.Errorf("%s: no usable questions (%d rows skipped)", path, res.Skipped)
	}
	return &FileBank{All: res.Questions}, nil
}

func (b *FileBank) Questions(_ context.Context, step int, refs []model.AssessmentQuestion) ([]model.Question, error) {
	if out, ok := b.byRefs(refs); ok {
		return out, nil
	}
	levels, err := StepLevels(step)
	if err != nil {
		return nil, err
	}
	var out []model.Question
	for _, q := range b.All {
		if q.Level == levels[0] || q.Level == levels[1] {
			out = append(out, q)
		}
	}
	limit := b.Limit
	if limit <= 0 {
		limit = QuestionsPerStep
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no %s/%s questions in bank", levels[0], levels[1])
	}
	return truncate(out, limit), nil
}

func (b *FileBank) byRefs(refs []model.AssessmentQuestion) ([]model.Question, bool) {
	if len(refs) == 0 {
		return nil, false
	}
	idx := make(map[string]model.Question, len(b.All))
	for _, q := range b.All {
		idx[q.ID] = q
	}
	out := make([]model.Question, 0, len(refs))
	for _, ref := range refs {
		q, ok := idx[ref.QuestionID]
		if !ok {
			return nil, false
		}
		out = append(out, q)
	}
	return out, true
}

func truncate(qs []model.Question, n int) []model.Question {
	if len(qs) > n {
		return qs[:n]
	}
	return qs
}
