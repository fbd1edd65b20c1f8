// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nibzard/todo-cli/internal/app"
	"github.com/nibzard/todo-cli/internal/config"
	"github.com/nibzard/todo-cli/internal/logging"
	"github.com/nibzard/todo-cli/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Option configures Run.
type Option func(*runtime)

// WithOutput sets where command output goes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(rt *runtime) { rt.out = w }
}

// WithErrOutput sets where warnings and logs go. Defaults to os.Stderr.
func WithErrOutput(w io.Writer) Option {
	return func(rt *runtime) { rt.errOut = w }
}

// WithInput sets the input stream for prompts. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(rt *runtime) { rt.in = r }
}

// WithClock sets the time source used by every store.
func WithClock(now func() time.Time) Option {
	return func(rt *runtime) { rt.now = now }
}

// WithPrompter replaces the terminal prompter. Prompts are only offered
// when a prompter is set or both input and output are terminals.
func WithPrompter(p ui.Prompter) Option {
	return func(rt *runtime) { rt.prompter = p }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(rt *runtime) { rt.bcryptCost = cost }
}

// runtime is the state shared by every command of one invocation.
type runtime struct {
	ctx        context.Context
	out        io.Writer
	errOut     io.Writer
	in         io.Reader
	now        func() time.Time
	prompter   ui.Prompter
	bcryptCost int

	cfg    *config.Config
	logger *log.Logger
	runLog *logging.RunLogger
	styles ui.Styles
	app    *app.App
}

// Run executes the todo CLI.
func Run(ctx context.Context, args []string, opts ...Option) error {
	rt := &runtime{
		ctx:    ctx,
		out:    os.Stdout,
		errOut: os.Stderr,
		in:     os.Stdin,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	defer rt.close()

	root := newRootCmd(rt)
	root.SetArgs(args)
	root.SetIn(rt.in)
	root.SetOut(rt.out)
	root.SetErr(rt.errOut)
	return root.ExecuteContext(ctx)
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "A todo manager with user accounts and reminders",
		Long: `todo keeps per-user todo lists in a local data directory.

Register an account, log in, and manage todos with priorities and due dates.
Run without arguments in a terminal for interactive mode.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.prompter == nil {
				return cmd.Help()
			}
			return runInteractive(rt)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newRegisterCmd(rt),
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newStatusCmd(rt),
		newAddCmd(rt),
		newListCmd(rt),
		newCompleteCmd(rt),
		newEditCmd(rt),
		newDeleteCmd(rt),
		newOverdueCmd(rt),
		newTodayCmd(rt),
		newRemindersCmd(rt),
		newBoardCmd(rt),
		newDoctorCmd(rt),
		newConfigCmd(rt),
		newVersionCmd(rt),
	)
	return root
}

// setup loads configuration and builds the logger. The stores are opened
// lazily by open so doctor can run against a broken data directory.
func (rt *runtime) setup(flags *pflag.FlagSet) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	rt.cfg = cfg

	if cfg.LogFile {
		logsDir := cfg.Dir().LogsPath()
		runLog, err := logging.NewRunLogger(logsDir)
		if err != nil {
			return err
		}
		rt.runLog = runLog
		if _, err := logging.Prune(logsDir, logging.DefaultKeepRuns); err != nil {
			fmt.Fprintf(rt.errOut, "Warning: pruning run logs: %v\n", err)
		}
	}
	logOpts := logging.DefaultOptions()
	logOpts.Level = cfg.LogLevel
	logOpts.Format = cfg.LogFormat
	logOpts.Output = rt.errOut
	logOpts.RunLog = rt.runLog
	rt.logger = logging.New(logOpts)
	rt.logger.Debug("config loaded", "file", cfg.ConfigFile, "data_dir", cfg.DataDir)

	rt.styles = ui.NewStyles(rt.out, cfg.NoColor)
	if rt.prompter == nil && ui.Interactive(rt.in, rt.out) {
		rt.prompter = ui.NewTeaPrompter(rt.in, rt.out, rt.styles)
	}
	return nil
}

// open returns the application service, opening the stores on first use.
func (rt *runtime) open() (*app.App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	a, err := app.Open(app.Options{
		DataDir:        rt.cfg.Dir(),
		SessionTTL:     rt.cfg.SessionTTL.Duration,
		PasswordPolicy: rt.cfg.PasswordPolicy(),
		Reminders:      rt.cfg.ReminderPolicy(),
		BcryptCost:     rt.bcryptCost,
		Now:            rt.now,
		Logger:         rt.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening data directory %s: %w", rt.cfg.DataDir, err)
	}
	rt.app = a
	return a, nil
}

// warnExport prints the export failure of the last mutation, if any. The
// mutation itself has already been saved.
func (rt *runtime) warnExport(a *app.App) {
	if err := a.LastExportError(); err != nil {
		fmt.Fprintf(rt.errOut, "Warning: todos saved, but the markdown export failed: %v\n", err)
	}
}

// canPrompt reports whether missing values may be asked for interactively.
func (rt *runtime) canPrompt() bool {
	return rt.prompter != nil
}

func (rt *runtime) close() {
	if err := rt.runLog.Close(); err != nil {
		fmt.Fprintf(rt.errOut, "Warning: closing run log: %v\n", err)
	}
}

func newVersionCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(rt.out, "todo version %s\n", Version)
			return nil
		},
	}
}

// errMissing builds the error for a value that was neither passed nor
// promptable.
func errMissing(what, flag string) error {
	return fmt.Errorf("%s required: pass %s or run in a terminal", what, flag)
}

// isCancel reports whether err means the user backed out of a prompt.
func isCancel(err error) bool {
	return errors.Is(err, ui.ErrCancelled)
}
