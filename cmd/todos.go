package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/todo-cli/internal/app"
	"github.com/nibzard/todo-cli/internal/todo"
)

type addFlags struct {
	title       string
	description string
	priority    string
	dueDate     string
}

func newAddCmd(rt *runtime) *cobra.Command {
	var f addFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.title == "" && rt.canPrompt() {
				return addInteractive(rt)
			}
			d, err := f.draft()
			if err != nil {
				return err
			}
			return addTodo(rt, d)
		},
	}
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Title")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Priority (low, medium, high)")
	cmd.Flags().StringVarP(&f.dueDate, "due-date", "d", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func (f addFlags) draft() (todo.Draft, error) {
	d := todo.Draft{Title: f.title, Description: f.description}
	if f.priority != "" {
		p, err := todo.ParsePriority(f.priority)
		if err != nil {
			return todo.Draft{}, err
		}
		d.Priority = p
	}
	if f.dueDate != "" {
		due, err := todo.ParseDate(f.dueDate)
		if err != nil {
			return todo.Draft{}, err
		}
		d.DueDate = &due
	}
	return d, nil
}

func addTodo(rt *runtime, d todo.Draft) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	t, err := a.Add(d)
	if err != nil {
		return requireLogin(err)
	}
	fmt.Fprintf(rt.out, "%s Added %s\n", rt.styles.Success.Render("✓"), t.ShortID())
	printTodo(rt.out, rt.styles, t, a.Classify(t))
	rt.warnExport(a)
	return nil
}

type listFlags struct {
	status   string
	priority string
}

func (f listFlags) filter() (todo.Filter, error) {
	var filter todo.Filter
	if f.status != "" {
		s, err := todo.ParseStatus(f.status)
		if err != nil {
			return filter, err
		}
		filter.Status = s
	}
	if f.priority != "" {
		p, err := todo.ParsePriority(f.priority)
		if err != nil {
			return filter, err
		}
		filter.Priority = p
	}
	return filter, nil
}

func newListCmd(rt *runtime) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			return listTodos(rt, filter)
		},
	}
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "Only show this status (pending, completed)")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Only show this priority (low, medium, high)")
	return cmd
}

func listTodos(rt *runtime, filter todo.Filter) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	todos, err := a.List(filter)
	if err != nil {
		return requireLogin(err)
	}
	printTodoList(rt.out, rt.styles, a, fmt.Sprintf("Your Todos (%d)", len(todos)), "No todos found.", todos)
	return nil
}

func newCompleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "complete [id]",
		Aliases: []string{"done"},
		Short:   "Mark a todo completed",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completeTodo(rt, argOrEmpty(args))
		},
	}
}

func completeTodo(rt *runtime, ref string) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	if ref == "" {
		t, err := rt.pickTodo(a, "Select todo to complete", todo.Filter{Status: todo.StatusPending})
		if err != nil || t == nil {
			return err
		}
		ref = t.ID
	}
	t, err := a.Complete(ref)
	if err != nil {
		return requireLogin(err)
	}
	fmt.Fprintf(rt.out, "%s Completed %s: %s\n", rt.styles.Success.Render("✓"), t.ShortID(), t.Title)
	rt.warnExport(a)
	return nil
}

type editFlags struct {
	title        string
	description  string
	priority     string
	dueDate      string
	clearDueDate bool
	status       string
}

func newEditCmd(rt *runtime) *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change fields of a todo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := f.update(cmd)
			if err != nil {
				return err
			}
			return editTodo(rt, argOrEmpty(args), u)
		},
	}
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "New title")
	cmd.Flags().StringVar(&f.description, "description", "", "New description (empty clears it)")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "New priority (low, medium, high)")
	cmd.Flags().StringVarP(&f.dueDate, "due-date", "d", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.clearDueDate, "clear-due-date", false, "Remove the due date")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "New status (pending, completed)")
	cmd.MarkFlagsMutuallyExclusive("due-date", "clear-due-date")
	return cmd
}

// update builds the edit from the flags the user actually set.
func (f editFlags) update(cmd *cobra.Command) (todo.Update, error) {
	var u todo.Update
	changed := cmd.Flags().Changed
	if changed("title") {
		u.Title = &f.title
	}
	if changed("description") {
		u.Description = &f.description
	}
	if changed("priority") {
		p, err := todo.ParsePriority(f.priority)
		if err != nil {
			return u, err
		}
		u.Priority = &p
	}
	if changed("due-date") {
		d, err := todo.ParseDate(f.dueDate)
		if err != nil {
			return u, err
		}
		u.DueDate = &d
	}
	u.ClearDueDate = f.clearDueDate
	if changed("status") {
		s, err := todo.ParseStatus(f.status)
		if err != nil {
			return u, err
		}
		u.Status = &s
	}
	return u, nil
}

func editTodo(rt *runtime, ref string, u todo.Update) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	if ref == "" {
		t, err := rt.pickTodo(a, "Select todo to edit", todo.Filter{})
		if err != nil || t == nil {
			return err
		}
		ref = t.ID
	}
	current, err := a.Get(ref)
	if err != nil {
		return requireLogin(err)
	}
	if u.IsEmpty() {
		if !rt.canPrompt() {
			fmt.Fprintln(rt.out, "Nothing to change.")
			return nil
		}
		if u, err = rt.askUpdate(current); err != nil {
			return err
		}
	}

	t, err := a.Edit(ref, u)
	if err != nil {
		return requireLogin(err)
	}
	fmt.Fprintf(rt.out, "%s Updated %s\n", rt.styles.Success.Render("✓"), t.ShortID())
	printTodo(rt.out, rt.styles, t, a.Classify(t))
	rt.warnExport(a)
	return nil
}

func newDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a todo",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteTodo(rt, argOrEmpty(args))
		},
	}
}

func deleteTodo(rt *runtime, ref string) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	var t todo.Todo
	if ref == "" {
		picked, err := rt.pickTodo(a, "Select todo to delete", todo.Filter{})
		if err != nil || picked == nil {
			return err
		}
		t = *picked
	} else if t, err = a.Get(ref); err != nil {
		return requireLogin(err)
	}

	if err := a.Delete(t.ID); err != nil {
		return requireLogin(err)
	}
	fmt.Fprintf(rt.out, "%s Deleted %s: %s\n", rt.styles.Success.Render("✓"), t.ShortID(), t.Title)
	rt.warnExport(a)
	return nil
}

func newOverdueCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Show pending todos past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showOverdue(rt)
		},
	}
}

func showOverdue(rt *runtime) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	todos, err := a.Overdue()
	if err != nil {
		return requireLogin(err)
	}
	printTodoList(rt.out, rt.styles, a, fmt.Sprintf("Overdue Todos (%d)", len(todos)), "No overdue todos!", todos)
	return nil
}

func newTodayCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show pending todos due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showToday(rt)
		},
	}
}

func showToday(rt *runtime) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	todos, err := a.Today()
	if err != nil {
		return requireLogin(err)
	}
	printTodoList(rt.out, rt.styles, a, fmt.Sprintf("Due Today (%d)", len(todos)), "No todos due today!", todos)
	return nil
}

func newRemindersCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "Show reminders and the daily summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showReminders(rt)
		},
	}
}

func showReminders(rt *runtime) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	reminders, summary, err := a.Reminders()
	if err != nil {
		return requireLogin(err)
	}
	if len(reminders) == 0 {
		fmt.Fprintln(rt.out, "No reminders.")
	} else {
		printReminders(rt.out, rt.styles, reminders)
	}
	fmt.Fprintln(rt.out, summary.String())
	return nil
}

// pickTodo lets the user choose one of their todos. It returns nil without
// an error when there is nothing to choose from.
func (rt *runtime) pickTodo(a *app.App, title string, filter todo.Filter) (*todo.Todo, error) {
	if !rt.canPrompt() {
		return nil, errMissing("todo id", "an id argument")
	}
	todos, err := a.List(filter)
	if err != nil {
		return nil, requireLogin(err)
	}
	if len(todos) == 0 {
		fmt.Fprintln(rt.out, "No todos found.")
		return nil, nil
	}
	items := make([]string, len(todos))
	for i, t := range todos {
		items[i] = fmt.Sprintf("%s - %s", t.ShortID(), t.Title)
	}
	i, err := rt.prompter.Select(rt.ctx, title, items)
	if err != nil {
		return nil, err
	}
	return &todos[i], nil
}

// askDraft prompts for every field of a new todo.
func (rt *runtime) askDraft() (todo.Draft, error) {
	var d todo.Draft
	title, err := rt.prompter.Input(rt.ctx, "Title:", "")
	if err != nil {
		return d, err
	}
	d.Title = title
	if d.Description, err = rt.prompter.Input(rt.ctx, "Description (optional):", ""); err != nil {
		return d, err
	}
	if d.Priority, err = rt.askPriority(todo.PriorityMedium); err != nil {
		return d, err
	}
	due, err := rt.prompter.Input(rt.ctx, "Due date (YYYY-MM-DD, optional):", "")
	if err != nil {
		return d, err
	}
	if strings.TrimSpace(due) != "" {
		date, err := todo.ParseDate(due)
		if err != nil {
			return d, err
		}
		d.DueDate = &date
	}
	return d, nil
}

func addInteractive(rt *runtime) error {
	d, err := rt.askDraft()
	if err != nil {
		return err
	}
	return addTodo(rt, d)
}

// askUpdate prompts for title, description and priority, defaulting to the
// current values.
func (rt *runtime) askUpdate(current todo.Todo) (todo.Update, error) {
	var u todo.Update
	fmt.Fprintf(rt.out, "Editing todo: %s\n", current.Title)

	title, err := rt.prompter.Input(rt.ctx, "Title:", current.Title)
	if err != nil {
		return u, err
	}
	description, err := rt.prompter.Input(rt.ctx, "Description:", current.Description)
	if err != nil {
		return u, err
	}
	priority, err := rt.askPriority(current.Priority)
	if err != nil {
		return u, err
	}
	if title != current.Title {
		u.Title = &title
	}
	if description != current.Description {
		u.Description = &description
	}
	if priority != current.Priority {
		u.Priority = &priority
	}
	return u, nil
}

func (rt *runtime) askPriority(def todo.Priority) (todo.Priority, error) {
	options := make([]string, len(todo.Priorities))
	for i, p := range todo.Priorities {
		options[i] = string(p)
		if p == def {
			options[i] += " (default)"
		}
	}
	i, err := rt.prompter.Select(rt.ctx, "Priority", options)
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(todo.Priorities) {
		return "", errors.New("priority selection out of range")
	}
	return todo.Priorities[i], nil
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
