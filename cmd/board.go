package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/nibzard/todo-cli/internal/app"
	"github.com/nibzard/todo-cli/internal/todo"
	"github.com/nibzard/todo-cli/internal/ui"
)

func newBoardCmd(rt *runtime) *cobra.Command {
	var refresh time.Duration
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show a live board of your todos and reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ui.Interactive(rt.in, rt.out) {
				return errors.New("board needs a terminal")
			}
			return runBoard(rt, refresh)
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", 5*time.Second, "How often to reload")
	return cmd
}

func runBoard(rt *runtime, refresh time.Duration) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	if _, err := a.List(todo.Filter{}); err != nil {
		return requireLogin(err)
	}
	return ui.RunBoard(rt.ctx, boardLoader(a), rt.in, rt.out, rt.styles, ui.WithRefreshInterval(refresh))
}

// boardLoader re-reads the data files and returns a fresh snapshot for the
// logged-in user.
func boardLoader(a *app.App) ui.BoardLoader {
	return func() (ui.BoardData, error) {
		if err := a.Reload(); err != nil {
			return ui.BoardData{}, err
		}
		sess, ok, err := a.Status()
		if err != nil {
			return ui.BoardData{}, err
		}
		if !ok {
			return ui.BoardData{}, errors.New("not logged in")
		}
		todos, err := a.List(todo.Filter{})
		if err != nil {
			return ui.BoardData{}, err
		}
		reminders, summary, err := a.Reminders()
		if err != nil {
			return ui.BoardData{}, err
		}
		return ui.BoardData{User: sess.Username, Todos: todos, Reminders: reminders, Summary: summary}, nil
	}
}
