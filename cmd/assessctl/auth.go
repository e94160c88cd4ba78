package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/credentials"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when empty)")
	role := fs.String("role", "student", "student or supervisor")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := model.ParseRole(*role)
	if err != nil {
		return err
	}
	pw, err := a.password(*password)
	if err != nil {
		return err
	}
	res, err := a.client.Register(ctx, model.RegisterPayload{Email: *email, Password: pw, Role: r, Profile: model.UserProfile{Name: *name}})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	if res.SupervisorApprovalRequired {
		fmt.Fprintln(a.out, "Supervisor accounts need admin approval before monitoring and analytics are available.")
	}
	fmt.Fprintf(a.out, "Next: assessctl verify -email %s -otp CODE\n", *email)
	return nil
}

func cmdVerify(ctx context.Context, a *app, args []string) error {
	fs := newFlags("verify")
	email := fs.String("email", "", "email address")
	otp := fs.String("otp", "", "code from the verification email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.client.VerifyEmail(ctx, model.VerifyEmailPayload{Email: *email, OTP: *otp})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

func cmdResendOTP(ctx context.Context, a *app, args []string) error {
	fs := newFlags("resend-otp")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.client.ResendOTP(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pw, err := a.password(*password)
	if err != nil {
		return err
	}
	if _, err := a.client.Login(ctx, model.LoginPayload{Email: *email, Password: pw}); err != nil {
		return err
	}
	return cmdWhoami(ctx, a, nil)
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if _, ok := a.creds.State().(credentials.LoggedOut); ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	_, err := a.client.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	if err != nil {
		// local state is already cleared
		fmt.Fprintf(a.out, "(server: %v)\n", describe(err))
	}
	return nil
}

func cmdForgot(ctx context.Context, a *app, args []string) error {
	fs := newFlags("forgot")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.client.ForgotPassword(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	fmt.Fprintf(a.out, "Next: assessctl reset -email %s -otp CODE -password NEW\n", *email)
	return nil
}

func cmdReset(ctx context.Context, a *app, args []string) error {
	fs := newFlags("reset")
	email := fs.String("email", "", "email address")
	otp := fs.String("otp", "", "code from the reset email")
	password := fs.String("password", "", "new password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pw, err := a.password(*password)
	if err != nil {
		return err
	}
	res, err := a.client.ResetPassword(ctx, model.ResetPasswordPayload{Email: *email, OTP: *otp, NewPassword: pw})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

// cmdWhoami prints the local session state without calling the server.
func cmdWhoami(_ context.Context, a *app, _ []string) error {
	switch st := a.creds.State().(type) {
	case credentials.LoggedOut:
		fmt.Fprintln(a.out, "Not logged in.")
	case credentials.LoggedIn:
		fmt.Fprintf(a.out, "Logged in as %s", st.Role)
		if st.Approval == credentials.ApprovalPending {
			fmt.Fprint(a.out, " (pending admin approval)")
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *app) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	pw, err := a.prompt("Password: ")
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}
