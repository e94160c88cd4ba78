package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/theme"
)

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func cmdMe(ctx context.Context, a *app, _ []string) error {
	u, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	printUser(a, u)
	return nil
}

func printUser(a *app, u *model.User) {
	tw := a.table()
	fmt.Fprintf(tw, "ID\t%s\n", u.ID)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Name\t%s\n", u.Profile.Name)
	fmt.Fprintf(tw, "Role\t%s\n", u.Role)
	fmt.Fprintf(tw, "Verified\t%v\n", u.IsEmailVerified)
	if u.SupervisorApproved != nil {
		fmt.Fprintf(tw, "Approved\t%v\n", *u.SupervisorApproved)
	}
	if u.CurrentLevel != "" {
		fmt.Fprintf(tw, "Level\t%s\n", u.CurrentLevel)
	}
	if u.Profile.Phone != "" {
		fmt.Fprintf(tw, "Phone\t%s\n", u.Profile.Phone)
	}
	tw.Flush()
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	fs := newFlags("profile")
	var upd model.ProfileUpdate
	fs.Func("name", "display name", func(s string) error { upd.Name = &s; return nil })
	fs.Func("avatar", "avatar URL", func(s string) error { upd.AvatarURL = &s; return nil })
	fs.Func("phone", "phone number", func(s string) error { upd.Phone = &s; return nil })
	if err := fs.Parse(args); err != nil {
		return err
	}
	if upd.Name == nil && upd.AvatarURL == nil && upd.Phone == nil {
		return cmdMe(ctx, a, nil)
	}
	u, err := a.client.UpdateMe(ctx, upd)
	if err != nil {
		return err
	}
	printUser(a, u)
	return nil
}

func printAttempts(a *app, attempts []model.AssessmentAttempt) {
	if len(attempts) == 0 {
		fmt.Fprintln(a.out, "No attempts yet.")
		return
	}
	tw := a.table()
	fmt.Fprintln(tw, "STEP\tSTATUS\tSCORE\tLEVEL\tNEXT STEP\tSTARTED")
	for _, at := range attempts {
		score, next := "-", "-"
		if at.ScorePercent != nil {
			score = fmt.Sprintf("%.0f%%", *at.ScorePercent)
		}
		if at.AdvancedToNext != nil {
			next = map[bool]string{true: "unlocked", false: "no"}[*at.AdvancedToNext]
		}
		level := at.LevelAwarded
		if level == "" {
			level = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", at.Step, at.Status, score, level, next, at.StartedAt)
	}
	tw.Flush()
}

func cmdStatus(ctx context.Context, a *app, _ []string) error {
	attempts, err := a.client.AssessmentStatus(ctx)
	if err != nil {
		return err
	}
	printAttempts(a, attempts)
	return nil
}

func cmdHistory(ctx context.Context, a *app, _ []string) error {
	attempts, err := a.client.AssessmentHistory(ctx)
	if err != nil {
		return err
	}
	printAttempts(a, attempts)
	return nil
}

func cmdCertificate(ctx context.Context, a *app, _ []string) error {
	c, err := a.client.Certificate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Certificate %s\nLevel: %s\n", c.Serial, c.Level)
	return nil
}

func cmdAnalytics(ctx context.Context, a *app, args []string) error {
	which := "users"
	if len(args) > 0 {
		which = args[0]
	}
	tw := a.table()
	defer tw.Flush()
	switch which {
	case "users":
		res, err := a.client.AnalyticsUsers(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "TOTAL\t%d\n", res.Data.Total)
		for _, rc := range res.Data.ByRole {
			fmt.Fprintf(tw, "%s\t%d\n", rc.Role, rc.Count)
		}
	case "competency":
		res, err := a.client.AnalyticsCompetency(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "COMPETENCY\tLEVEL\tACCURACY")
		for _, row := range res.Data {
			fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", row.Competency, row.Level, row.Accuracy)
		}
	case "assessments":
		res, err := a.client.AnalyticsAssessments(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "STEP\tATTEMPTS\tCOMPLETED")
		for _, row := range res.Data {
			fmt.Fprintf(tw, "%d\t%d\t%.1f%%\n", row.Step, row.Total, row.CompletionRate)
		}
	default:
		return fmt.Errorf("unknown report %q (users, competency, assessments)", which)
	}
	return nil
}

func cmdMonitor(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: monitor USER_ID")
	}
	res, err := a.client.MonitorUser(ctx, args[0])
	if err != nil {
		return err
	}
	if res.Attempt == nil {
		fmt.Fprintln(a.out, res.Message)
		return nil
	}
	at := res.Attempt
	tw := a.table()
	fmt.Fprintf(tw, "Attempt\t%s\nStep\t%d\nStatus\t%s\nStarted\t%s\nQuestions\t%d\n", at.ID, at.Step, at.Status, at.StartedAt, at.QuestionCount)
	for k, v := range at.Telemetry {
		fmt.Fprintf(tw, "%s\t%v\n", k, v)
	}
	return tw.Flush()
}

func cmdInvalidate(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: invalidate USER_ID [-reason R]")
	}
	fs := newFlags("invalidate")
	reason := fs.String("reason", "", "reason recorded on the attempt")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	res, err := a.client.InvalidateAttempt(ctx, args[0], *reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: attempt %s %s -> %s (%s)\n", res.Message, res.AttemptID, res.PreviousStatus, res.NewStatus, res.Reason)
	return nil
}

func cmdTheme(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		if args[0] == "toggle" {
			if _, err := a.theme.Toggle(ctx); err != nil {
				return err
			}
		} else {
			t, err := theme.Parse(args[0])
			if err != nil {
				return err
			}
			if err := a.theme.Set(ctx, t); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(a.out, "theme: %s (active %s, %s)\n", a.theme.Theme(), a.theme.Active(), a.theme.Color())
	return nil
}
