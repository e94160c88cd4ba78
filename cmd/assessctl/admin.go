package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/formats"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/rbac"
)

func subcommand(args []string, usage string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, errors.New("usage: " + usage)
	}
	return args[0], args[1:], nil
}

func oneID(args []string, usage string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", errors.New("usage: " + usage)
	}
	return args[0], nil
}

// ---- users ----

func cmdUsers(ctx context.Context, a *app, args []string) error {
	sub, rest, err := subcommand(args, "users list|get|delete|approve ...")
	if err != nil {
		return err
	}
	switch sub {
	case "list":
		return usersList(ctx, a, rest)
	case "get":
		id, err := oneID(rest, "users get ID")
		if err != nil {
			return err
		}
		u, err := a.client.GetUser(ctx, id)
		if err != nil {
			return err
		}
		printUser(a, u)
	case "delete":
		if err := guard(a.creds.State(), rbac.PermUsersDelete); err != nil {
			return err
		}
		id, err := oneID(rest, "users delete ID")
		if err != nil {
			return err
		}
		res, err := a.client.DeleteUser(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, res.Message)
	case "approve":
		if err := guard(a.creds.State(), rbac.PermUsersApprove); err != nil {
			return err
		}
		id, err := oneID(rest, "users approve ID")
		if err != nil {
			return err
		}
		res, err := a.client.ApproveSupervisor(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (%s)\n", res.Message, res.UserID)
	default:
		return fmt.Errorf("unknown users command %q", sub)
	}
	return nil
}

func usersList(ctx context.Context, a *app, args []string) error {
	fs := newFlags("users list")
	role := fs.String("role", "", "admin, student or supervisor")
	pending := fs.Bool("pending", false, "only supervisors awaiting approval")
	page := fs.Int("page", 1, "page")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q := model.UserListQuery{Page: *page, Limit: *limit}
	if *role != "" {
		r, err := model.ParseRole(*role)
		if err != nil {
			return err
		}
		q.Role = r
	}
	if *pending {
		no := false
		q.Role, q.SupervisorApproved = model.RoleSupervisor, &no
	}
	res, err := a.client.ListUsers(ctx, q)
	if err != nil {
		return err
	}
	tw := a.table()
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tVERIFIED\tAPPROVED")
	for _, u := range res.Items {
		approved := "-"
		if u.SupervisorApproved != nil {
			approved = fmt.Sprint(*u.SupervisorApproved)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t%s\n", u.ID, u.Email, u.Profile.Name, u.Role, u.IsEmailVerified, approved)
	}
	tw.Flush()
	fmt.Fprintf(a.out, "page %d of %d (%d users)\n", res.Page, res.Pages, res.Total)
	return nil
}

// ---- questions ----

func cmdQuestions(ctx context.Context, a *app, args []string) error {
	sub, rest, err := subcommand(args, "questions list|get|create|delete|import|export ...")
	if err != nil {
		return err
	}
	switch sub {
	case "list":
		return questionsList(ctx, a, rest)
	case "get":
		id, err := oneID(rest, "questions get ID")
		if err != nil {
			return err
		}
		q, err := a.client.GetQuestion(ctx, id)
		if err != nil {
			return err
		}
		printQuestion(a, q)
		return nil
	case "export":
		return questionsExport(ctx, a, rest)
	}

	if err := guard(a.creds.State(), rbac.PermQuestionsWrite); err != nil {
		return err
	}
	switch sub {
	case "create":
		return questionsCreate(ctx, a, rest)
	case "delete":
		id, err := oneID(rest, "questions delete ID")
		if err != nil {
			return err
		}
		res, err := a.client.DeleteQuestion(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, res.Message)
		return nil
	case "import":
		return questionsImport(ctx, a, rest)
	}
	return fmt.Errorf("unknown questions command %q", sub)
}

func printQuestion(a *app, q *model.Question) {
	fmt.Fprintf(a.out, "%s  [%s] %s\n%s\n", q.ID, q.Level, q.Competency, q.Text)
	for _, o := range q.Options {
		mark := " "
		if o.Key == q.CorrectOptionKey {
			mark = "*"
		}
		fmt.Fprintf(a.out, " %s %s) %s\n", mark, o.Key, o.Value)
	}
}

func questionsList(ctx context.Context, a *app, args []string) error {
	fs := newFlags("questions list")
	level := fs.String("level", "", "A1..C2")
	competency := fs.String("competency", "", "competency area")
	page := fs.Int("page", 1, "page")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q := model.QuestionListQuery{Page: *page, Limit: *limit, Competency: *competency}
	if *level != "" {
		l, err := model.ParseLevel(*level)
		if err != nil {
			return err
		}
		q.Level = l
	}
	res, err := a.client.ListQuestions(ctx, q)
	if err != nil {
		return err
	}
	tw := a.table()
	fmt.Fprintln(tw, "ID\tLEVEL\tCOMPETENCY\tTEXT")
	for _, q := range res.Items {
		text := q.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", q.ID, q.Level, q.Competency, text)
	}
	tw.Flush()
	fmt.Fprintf(a.out, "page %d of %d (%d questions)\n", res.Page, res.Pages, res.Total)
	return nil
}

func questionsCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("questions create")
	competency := fs.String("competency", "", "competency area")
	level := fs.String("level", "", "A1..C2")
	text := fs.String("text", "", "question text")
	options := fs.String("options", "", `options as "a=Yes|b=No"`)
	correct := fs.String("correct", "", "key of the correct option")
	if err := fs.Parse(args); err != nil {
		return err
	}
	l, err := model.ParseLevel(*level)
	if err != nil {
		return err
	}
	opts, err := formats.ParseOptions(*options)
	if err != nil {
		return err
	}
	q, err := a.client.CreateQuestion(ctx, model.Question{
		Competency: strings.TrimSpace(*competency), Level: l, Text: *text,
		Options: opts, CorrectOptionKey: *correct,
	})
	if err != nil {
		return err
	}
	printQuestion(a, q)
	return nil
}

// questionsImport loads a question file and sends the usable rows in one
// bulk call. Bad rows are listed and skipped.
func questionsImport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("questions import")
	dry := fs.Bool("dry-run", false, "only validate the file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: questions import [-dry-run] FILE (%s)", strings.Join(formats.Extensions(), ", "))
	}
	res, err := formats.ImportFile(fs.Arg(0))
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		fmt.Fprintln(a.out, "skipped", e)
	}
	fmt.Fprintf(a.out, "%d rows read, %d usable, %d skipped\n", res.TotalProcessed, len(res.Questions), res.Skipped)
	if *dry || len(res.Questions) == 0 {
		return nil
	}
	out, err := a.client.BulkQuestions(ctx, res.Questions)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d questions imported\n", out.Count)
	return nil
}

// questionsExport pages through the bank and writes every question to FILE.
func questionsExport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("questions export")
	level := fs.String("level", "", "only this level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: questions export [-level L] FILE")
	}
	q := model.QuestionListQuery{Page: 1, Limit: 100}
	if *level != "" {
		l, err := model.ParseLevel(*level)
		if err != nil {
			return err
		}
		q.Level = l
	}
	var all []model.Question
	for {
		res, err := a.client.ListQuestions(ctx, q)
		if err != nil {
			return err
		}
		all = append(all, res.Items...)
		if q.Page >= res.Pages || len(res.Items) == 0 {
			break
		}
		q.Page++
	}
	if err := formats.ExportFile(fs.Arg(0), all); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d questions written to %s\n", len(all), fs.Arg(0))
	return nil
}
