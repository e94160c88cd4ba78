package quiz

import (
	"context"
	"testing"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

type fakeGetter struct {
	byID  map[string]model.Question
	lists []model.QuestionListQuery
}

func (f *fakeGetter) GetQuestion(_ context.Context, id string) (*model.Question, error) {
	q := f.byID[id]
	return &q, nil
}

func (f *fakeGetter) ListQuestions(_ context.Context, q model.QuestionListQuery) (*model.Pagination[model.Question], error) {
	f.lists = append(f.lists, q)
	items := []model.Question{{ID: string(q.Level) + "-1", Level: q.Level}, {ID: string(q.Level) + "-2", Level: q.Level}}
	return &model.Pagination[model.Question]{Items: items, Total: 2}, nil
}

func TestAPIBankResolvesRefsInOrder(t *testing.T) {
	g := &fakeGetter{byID: map[string]model.Question{"x": {ID: "x"}, "y": {ID: "y"}}}
	qs, err := APIBank{API: g}.Questions(context.Background(), 1, []model.AssessmentQuestion{{QuestionID: "y"}, {QuestionID: "x"}})
	if err != nil || len(qs) != 2 || qs[0].ID != "y" || qs[1].ID != "x" {
		t.Fatalf("questions = %v, %v", qs, err)
	}
}

func TestAPIBankListsStepLevels(t *testing.T) {
	g := &fakeGetter{}
	qs, err := APIBank{API: g, Limit: 3}.Questions(context.Background(), 3, nil)
	if err != nil || len(qs) != 3 {
		t.Fatalf("questions = %v, %v", qs, err)
	}
	if len(g.lists) != 2 || g.lists[0].Level != model.LevelC1 || g.lists[1].Level != model.LevelC2 {
		t.Fatalf("list calls = %+v", g.lists)
	}
}

func TestFileBankFallsBackToLevels(t *testing.T) {
	all := []model.Question{
		{ID: "1", Level: model.LevelA1},
		{ID: "2", Level: model.LevelB1},
		{ID: "3", Level: model.LevelB2},
	}
	b := &FileBank{All: all}
	qs, err := b.Questions(context.Background(), 2, []model.AssessmentQuestion{{QuestionID: "missing"}})
	if err != nil || len(qs) != 2 || qs[0].ID != "2" {
		t.Fatalf("questions = %v, %v", qs, err)
	}
	qs, _ = b.Questions(context.Background(), 2, []model.AssessmentQuestion{{QuestionID: "3"}, {QuestionID: "1"}})
	if len(qs) != 2 || qs[0].ID != "3" || qs[1].ID != "1" {
		t.Fatalf("by refs = %v", qs)
	}
	if _, err := b.Questions(context.Background(), 3, nil); err == nil {
		t.Fatal("empty step accepted")
	}
}
