package quiz

import (
	"fmt"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

const (
	Steps = 3
	// PassMark is the lowest score (percent) that awards the step's lower level.
	PassMark = 25
	// ProceedMark lets the candidate continue to the next step.
	ProceedMark = 75
	// SecondsPerQuestion is the per-question time budget.
	SecondsPerQuestion = 60
)

// Certification is what a completed step awards.
type Certification struct {
	Step    int
	Score   int
	Passed  bool        // score >= PassMark
	Level   model.Level // "" when nothing was ever awarded
	Proceed bool        // may start the next step
}

var bands = map[int][2]model.Level{
	1: {model.LevelA1, model.LevelA2},
	2: {model.LevelB1, model.LevelB2},
	3: {model.LevelC1, model.LevelC2},
}

// StepLevels returns the two question levels a step draws from.
func StepLevels(step int) ([]model.Level, error) {
	b, ok := bands[step]
	if !ok {
		return nil, fmt.Errorf("step %d out of range 1..%d", step, Steps)
	}
	return []model.Level{b[0], b[1]}, nil
}

// Certify maps a step score to a level:
//
//	step 1: <25 fail, 25-49 A1, 50-74 A2, >=75 A2 and proceed
//	step 2: <25 keeps A2, 25-49 B1, 50-74 B2, >=75 B2 and proceed
//	step 3: <25 keeps B2, 25-49 C1, >=50 C2
func Certify(step, score int) (Certification, error) {
	b, ok := bands[step]
	if !ok {
		return Certification{}, fmt.Errorf("step %d out of range 1..%d", step, Steps)
	}
	if score < 0 || score > 100 {
		return Certification{}, fmt.Errorf("score %d out of range 0..100", score)
	}
	c := Certification{Step: step, Score: score}
	switch {
	case score < PassMark:
		if step > 1 {
			c.Level = bands[step-1][1]
		}
	case score < 50:
		c.Passed, c.Level = true, b[0]
	default:
		c.Passed, c.Level = true, b[1]
		c.Proceed = score >= ProceedMark && step < Steps
	}
	return c, nil
}

// Score is round(100*correct/total), 0 when there is nothing to score.
func Score(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	// integer half-up rounding
	return (200*correct + total) / (2 * total)
}
