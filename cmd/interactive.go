package cmd

import (
	"fmt"

	"github.com/nibzard/todo-cli/internal/todo"
)

const (
	menuLogin    = "Login"
	menuRegister = "Register"
	menuExit     = "Exit"

	menuAdd       = "Add todo"
	menuList      = "List todos"
	menuComplete  = "Complete todo"
	menuEdit      = "Edit todo"
	menuDelete    = "Delete todo"
	menuOverdue   = "Show overdue"
	menuToday     = "Show today"
	menuReminders = "Reminders"
	menuBoard     = "Board"
	menuStatus    = "Status"
	menuLogout    = "Logout"
)

var (
	authMenu = []string{menuLogin, menuRegister, menuExit}
	mainMenu = []string{
		menuAdd, menuList, menuComplete, menuEdit, menuDelete,
		menuOverdue, menuToday, menuReminders, menuBoard, menuStatus,
		menuLogout, menuExit,
	}
)

// runInteractive drives the menu loop: log in or register first, then offer
// every todo operation until the user logs out or exits.
func runInteractive(rt *runtime) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	fmt.Fprintln(rt.out, rt.styles.Title.Render("Welcome to Todo CLI"))

	// login prints reminders itself.
	remind := true
	for {
		_, loggedIn, err := a.Status()
		if err != nil {
			return err
		}
		if loggedIn {
			break
		}

		choice, err := rt.menu("What would you like to do?", authMenu)
		if err != nil {
			return err
		}
		switch choice {
		case menuLogin:
			err = login(rt, "", "")
			remind = false
		case menuRegister:
			err = register(rt, "", "")
		case menuExit:
			return nil
		}
		if err := rt.reportMenuError(err); err != nil {
			return err
		}
	}

	if remind {
		if err := showRemindersQuiet(rt); err != nil {
			return err
		}
	}

	for {
		choice, err := rt.menu("What would you like to do?", mainMenu)
		if err != nil {
			return err
		}

		switch choice {
		case menuAdd:
			err = addInteractive(rt)
		case menuList:
			err = listTodos(rt, todo.Filter{})
		case menuComplete:
			err = completeTodo(rt, "")
		case menuEdit:
			err = editTodo(rt, "", todo.Update{})
		case menuDelete:
			err = deleteTodo(rt, "")
		case menuOverdue:
			err = showOverdue(rt)
		case menuToday:
			err = showToday(rt)
		case menuReminders:
			err = showReminders(rt)
		case menuBoard:
			err = runBoard(rt, 0)
		case menuStatus:
			err = status(rt)
		case menuLogout:
			return logout(rt)
		case menuExit:
			return nil
		}
		if err := rt.reportMenuError(err); err != nil {
			return err
		}
	}
}

// menu asks for one of options. Cancelling the menu itself exits
// interactive mode.
func (rt *runtime) menu(title string, options []string) (string, error) {
	i, err := rt.prompter.Select(rt.ctx, title, options)
	if isCancel(err) {
		return menuExit, nil
	}
	if err != nil {
		return "", err
	}
	return options[i], nil
}

// reportMenuError prints the error of a menu action and keeps the loop going.
// Only interruption ends the loop.
func (rt *runtime) reportMenuError(err error) error {
	if err == nil || isCancel(err) {
		return nil
	}
	if ctxErr := rt.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	fmt.Fprintf(rt.errOut, "%s %v\n", rt.styles.Critical.Render("Error:"), err)
	return nil
}

// showRemindersQuiet prints reminders only when there are some.
func showRemindersQuiet(rt *runtime) error {
	a, err := rt.open()
	if err != nil {
		return err
	}
	reminders, _, err := a.Reminders()
	if err != nil {
		return requireLogin(err)
	}
	printReminders(rt.out, rt.styles, reminders)
	return nil
}
