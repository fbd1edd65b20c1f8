package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/todo-cli/internal/auth"
	"github.com/nibzard/todo-cli/internal/todo"
)

type credentialFlags struct {
	username string
	password string
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&f.password, "password", "", "Password (prompted when omitted)")
}

func newRegisterCmd(rt *runtime) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return register(rt, f.username, f.password)
		},
	}
	f.bind(cmd)
	return cmd
}

func register(rt *runtime, username, password string) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	username, err = rt.askUsername(username)
	if err != nil {
		return err
	}
	if password == "" {
		if !rt.canPrompt() {
			return errMissing("password", "--password")
		}
		if password, err = rt.prompter.Password(rt.ctx, "Password:"); err != nil {
			return err
		}
		confirm, err := rt.prompter.Password(rt.ctx, "Confirm password:")
		if err != nil {
			return err
		}
		if confirm != password {
			return errors.New("passwords do not match")
		}
	}

	user, err := a.Register(username, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Fprintf(rt.out, "%s Registered %s. Log in with: todo login\n", rt.styles.Success.Render("✓"), user.Username)
	return nil
}

func newLoginCmd(rt *runtime) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return login(rt, f.username, f.password)
		},
	}
	f.bind(cmd)
	return cmd
}

func login(rt *runtime, username, password string) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	username, err = rt.askUsername(username)
	if err != nil {
		return err
	}
	if password == "" {
		if !rt.canPrompt() {
			return errMissing("password", "--password")
		}
		if password, err = rt.prompter.Password(rt.ctx, "Password:"); err != nil {
			return err
		}
	}

	sess, err := a.Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(rt.out, "%s Welcome back, %s! Session expires %s.\n",
		rt.styles.Success.Render("✓"), sess.Username, formatTime(sess.ExpiresAt.In(rt.now().Location())))

	reminders, _, err := a.Reminders()
	if err != nil {
		return err
	}
	printReminders(rt.out, rt.styles, reminders)
	return nil
}

func (rt *runtime) askUsername(username string) (string, error) {
	if strings.TrimSpace(username) != "" {
		return username, nil
	}
	if !rt.canPrompt() {
		return "", errMissing("username", "--username")
	}
	return rt.prompter.Input(rt.ctx, "Username:", "")
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return logout(rt)
		},
	}
}

func logout(rt *runtime) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	if err := a.Logout(); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "%s Logged out.\n", rt.styles.Success.Render("✓"))
	return nil
}

func newStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the logged-in user and todo statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return status(rt)
		},
	}
}

func status(rt *runtime) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	sess, ok, err := a.Status()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(rt.out, "Not logged in.")
		return nil
	}

	todos, err := a.List(todo.Filter{})
	if err != nil {
		return err
	}
	_, summary, err := a.Reminders()
	if err != nil {
		return err
	}

	now := rt.now()
	fmt.Fprintf(rt.out, "%s\n", rt.styles.Title.Render("User Status"))
	fmt.Fprintf(rt.out, "Username: %s\n", sess.Username)
	fmt.Fprintf(rt.out, "Session expires: %s (in %s)\n",
		formatTime(sess.ExpiresAt.In(now.Location())), formatRemaining(sess.Remaining(now)))
	fmt.Fprintln(rt.out)
	fmt.Fprintf(rt.out, "%s\n", rt.styles.Title.Render("Todo Statistics"))
	fmt.Fprintf(rt.out, "Pending: %d\n", summary.Pending)
	fmt.Fprintf(rt.out, "Completed: %d\n", summary.Completed)
	fmt.Fprintf(rt.out, "Overdue: %d\n", summary.Overdue)
	fmt.Fprintf(rt.out, "Total: %d\n", len(todos))
	return nil
}

// requireLogin turns ErrNotAuthenticated into a hint at the login command.
func requireLogin(err error) error {
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return fmt.Errorf("%w: please log in first using: todo login", err)
	}
	return err
}
