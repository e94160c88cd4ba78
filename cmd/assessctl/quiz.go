package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/quiz"
)

var errBadInput = errors.New("unrecognised input")

const quizHelp = "Type an option key to answer, or :back, :pause, :resume or :submit."

// cmdQuiz runs one timed step. Input is read line by line; the timer keeps
// running between lines and submits the attempt when time is up.
func cmdQuiz(ctx context.Context, a *app, args []string) error {
	fs := newFlags("quiz")
	bankFile := fs.String("bank", "", "question file to practise from instead of the server bank")
	interval := fs.Duration("interval", time.Second, "length of one timer tick")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var bank quiz.QuestionBank = quiz.APIBank{API: a.client}
	if *bankFile != "" {
		fb, err := quiz.LoadFileBank(*bankFile)
		if err != nil {
			return err
		}
		bank = fb
	}

	r := quiz.NewRunner(a.client, bank, quiz.NewTimer(*interval))
	done := make(chan quiz.Outcome, 1)
	r.OnComplete = func(o quiz.Outcome) {
		select {
		case done <- o:
		default:
		}
	}
	r.OnTick = func(v quiz.View) {
		if v.Remaining > 0 && v.Remaining%60 == 0 {
			fmt.Fprintf(a.out, "\n  %s left\n> ", clock(v.Remaining))
		}
	}
	defer r.Stop()

	v, err := r.Start(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Step %d: %d questions, %s.\n%s\n", v.Step, v.Len, clock(v.TimeLimit), quizHelp)
	showQuestion(a, v)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- strings.TrimSpace(sc.Text())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case o := <-done:
			fmt.Fprintln(a.out, "\nTime is up.")
			return report(a, o)
		case line, ok := <-lines:
			if !ok {
				return errors.New("input closed before the quiz finished")
			}
			out, err := handleLine(ctx, r, line)
			if errors.Is(err, quiz.ErrInvalidState) || errors.Is(err, errBadInput) {
				fmt.Fprintln(a.out, err)
			} else if err != nil {
				return err
			}
			if out != nil {
				return report(a, *out)
			}
			if v, ok := r.View(); ok && v.Status == quiz.InProgress {
				showQuestion(a, v)
			}
		}
	}
}

func handleLine(ctx context.Context, r *quiz.Runner, line string) (*quiz.Outcome, error) {
	switch strings.ToLower(line) {
	case "":
		return nil, nil
	case ":pause":
		return nil, r.Pause()
	case ":resume":
		return nil, r.Resume()
	case ":back":
		return nil, r.Previous()
	case ":submit":
		return r.Complete(ctx)
	}
	if v, ok := r.View(); ok && !v.Question.HasOption(line) {
		return nil, fmt.Errorf("%w: %q is not an option", errBadInput, line)
	}
	return r.Answer(ctx, line)
}

func showQuestion(a *app, v quiz.View) {
	q := v.Question
	state := ""
	if !v.Running {
		state = "  [paused]"
	}
	fmt.Fprintf(a.out, "\nQuestion %d/%d  %s  (%s, %s)%s\n%s\n", v.Index+1, v.Len, clock(v.Remaining), q.Competency, q.Level, state, q.Text)
	for _, o := range q.Options {
		fmt.Fprintf(a.out, "  %s) %s\n", o.Key, o.Value)
	}
	fmt.Fprint(a.out, "> ")
}

func report(a *app, o quiz.Outcome) error {
	res := o.Result
	fmt.Fprintf(a.out, "\nAnswered %d of %d.\n", res.Answered, res.Total)
	if o.Err != nil {
		return fmt.Errorf("submitting attempt %s: %w", o.AttemptID, describe(o.Err))
	}
	at := o.Attempt
	if at.ScorePercent != nil {
		fmt.Fprintf(a.out, "Score: %.0f%%\n", *at.ScorePercent)
	}
	switch {
	case at.LevelAwarded == "":
		fmt.Fprintln(a.out, "No level awarded.")
	default:
		fmt.Fprintf(a.out, "Level: %s\n", at.LevelAwarded)
	}
	if at.AdvancedToNext != nil && *at.AdvancedToNext {
		fmt.Fprintf(a.out, "Step %d is unlocked. Run assessctl quiz again to continue.\n", at.Step+1)
	}
	return nil
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
