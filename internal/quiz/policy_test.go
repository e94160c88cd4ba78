package quiz

import (
	"testing"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func TestCertify(t *testing.T) {
	cases := []struct {
		step, score int
		passed      bool
		level       model.Level
		proceed     bool
	}{
		{1, 0, false, "", false},
		{1, 24, false, "", false},
		{1, 25, true, model.LevelA1, false},
		{1, 49, true, model.LevelA1, false},
		{1, 50, true, model.LevelA2, false},
		{1, 74, true, model.LevelA2, false},
		{1, 75, true, model.LevelA2, true},
		{2, 10, false, model.LevelA2, false},
		{2, 30, true, model.LevelB1, false},
		{2, 60, true, model.LevelB2, false},
		{2, 90, true, model.LevelB2, true},
		{3, 24, false, model.LevelB2, false},
		{3, 25, true, model.LevelC1, false},
		{3, 50, true, model.LevelC2, false},
		{3, 100, true, model.LevelC2, false},
	}
	for _, tc := range cases {
		got, err := Certify(tc.step, tc.score)
		if err != nil {
			t.Fatalf("step %d score %d: %v", tc.step, tc.score, err)
		}
		if got.Passed != tc.passed || got.Level != tc.level || got.Proceed != tc.proceed {
			t.Errorf("step %d score %d: got %+v", tc.step, tc.score, got)
		}
	}
	if _, err := Certify(0, 50); err == nil {
		t.Error("step 0 accepted")
	}
	if _, err := Certify(1, 101); err == nil {
		t.Error("score 101 accepted")
	}
}

func TestStepLevels(t *testing.T) {
	lv, err := StepLevels(2)
	if err != nil || len(lv) != 2 || lv[0] != model.LevelB1 || lv[1] != model.LevelB2 {
		t.Fatalf("StepLevels(2) = %v, %v", lv, err)
	}
	if _, err := StepLevels(4); err == nil {
		t.Fatal("step 4 accepted")
	}
}
