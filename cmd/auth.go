package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/aitwy/aitwy-server/internal/client/authapi"
	"github.com/aitwy/aitwy-server/internal/client/session"
	"github.com/aitwy/aitwy-server/internal/models"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign up, log in and manage the local session",
	}
	cmd.AddCommand(
		newSignupCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newMeCmd(),
		newVerifyCmd(),
		newResendCmd(),
	)
	return cmd
}

func newSignupCmd() *cobra.Command {
	var req models.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			req.Password, err = passwordFlag(cmd, req.Password)
			return err
		},
		RunE: run(func(ctx context.Context, d *deps, _ []string) error {
			res, err := d.auth.Signup(ctx, req)
			if err != nil {
				return err
			}
			d.println(res.Message)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 6 characters (prompted when omitted)")
	markRequired(cmd, "name", "email")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var req models.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			req.Password, err = passwordFlag(cmd, req.Password)
			return err
		},
		RunE: run(func(ctx context.Context, d *deps, _ []string) error {
			res, err := d.auth.Login(ctx, req)
			if err != nil {
				if authapi.RequiresVerification(err) {
					d.println("Run `aitwy auth resend --email " + req.Email + "` to get a new verification link.")
				}
				return err
			}
			user := res.Data.User
			err = d.store.Save(session.Session{
				Token: res.Data.Token,
				User:  &session.User{ID: user.ID, Name: user.Name, Email: user.Email},
			})
			if err != nil {
				return err
			}
			d.printf("%s. Welcome, %s.\n", res.Message, user.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	markRequired(cmd, "email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the local session",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, d *deps, _ []string) error {
			// the session is dropped even if the server call fails
			var callErr error
			if d.store.Token() != "" {
				_, callErr = d.auth.Logout(ctx)
			}
			if err := d.store.Clear(); err != nil {
				return errors.Join(callErr, err)
			}
			d.println("Logged out successfully")
			return nil
		}),
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, d *deps, _ []string) error {
			if d.store.Token() == "" {
				return errNotLoggedIn
			}
			res, err := d.auth.Me(ctx)
			if err != nil {
				return err
			}
			return d.printJSON(res.Data.User)
		}),
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify an email address with the token from the verification link",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			res, err := d.auth.VerifyEmail(ctx, args[0])
			if err != nil {
				return err
			}
			d.println(res.Message)
			return nil
		}),
	}
}

func newResendCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "resend",
		Short: "Send a new verification email",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, d *deps, _ []string) error {
			res, err := d.auth.ResendVerification(ctx, email)
			if err != nil {
				return err
			}
			d.println(res.Message)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	markRequired(cmd, "email")
	return cmd
}

var errNotLoggedIn = errors.New("not logged in, run `aitwy auth login` first")

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = cmd.MarkFlagRequired(name)
	}
}
