package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is one run of the lendstore binary.
type app struct {
	v      *viper.Viper
	root   *cobra.Command
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg         config
	logger      *slog.Logger
	logCloser   io.Closer
	prevDefault *slog.Logger
	sess        *session
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	a := &app{
		v:      viper.New(),
		in:     in,
		out:    out,
		errOut: errOut,
		logger: slog.New(slog.DiscardHandler),
	}
	setupViperConfig(a.v)
	a.createRootCommand()
	return a
}

func (a *app) createRootCommand() {
	a.root = &cobra.Command{
		Use:   "lendstore",
		Short: "Lending library for books, members and checkouts",
		Long: `lendstore keeps track of a small lending library: the books it owns, the members
who borrow them, and every checkout from request to verified return.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (LENDSTORE_*)
3. Configuration file (LENDSTORE_CONFIG, ./lendstore.yaml or ~/.lendstore/lendstore.yaml)
4. Defaults

Examples:
  lendstore book add "Chess Basics" "A. Author" --quantity 2
  lendstore --as alice checkout request "chess basics"
  lendstore --as librarian --approver librarian checkout handout RQPSUQA
  lendstore --approver librarian shell`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return a.start()
		},
	}
	a.root.SetIn(a.in)
	a.root.SetOut(a.out)
	a.root.SetErr(a.errOut)

	addGlobalFlags(a.root.PersistentFlags(), a.v)
	a.root.AddCommand(buildCommands(commandTable(), a.runOneShot, false)...)
	a.root.AddCommand(a.shellCommand())
}

// Execute runs the command line and returns the process exit code.
func (a *app) Execute(ctx context.Context, args []string) int {
	a.root.SetArgs(args)
	err := a.root.ExecuteContext(ctx)
	a.stop()
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

// start resolves the configuration and opens the log.
func (a *app) start() error {
	cfg, err := loadConfig(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closer, err := initLogging(cfg.LogLevel, cfg.Verbose, a.errOut)
	if err != nil {
		fmt.Fprintf(a.errOut, "Warning: %v; logging to stderr\n", err)
		logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	a.logger = logger
	a.logCloser = closer
	a.prevDefault = slog.Default()
	slog.SetDefault(logger)
	return nil
}

func (a *app) stop() {
	if a.prevDefault != nil {
		slog.SetDefault(a.prevDefault)
		a.prevDefault = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// session opens the library on first use.
func (a *app) session() (*session, error) {
	return a.sessionFor(false)
}

func (a *app) sessionFor(fresh bool) (*session, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	open := openSession
	if fresh {
		open = freshSession
	}
	sess, err := open(a.cfg, a.logger)
	if err != nil {
		a.logger.Error("library could not be opened", "db", a.cfg.DB, "error", err)
		return nil, WrapError("open the library", err, CommonSuggestions.CheckDB)
	}
	a.sess = sess
	return sess, nil
}

func (a *app) invocation(sess *session, spec *Command, c *cobra.Command, args []string, chatID string) (*invocation, error) {
	inv := &invocation{args: args, flags: c.Flags(), chatID: chatID}
	if spec.NeedsActor {
		actor, err := sess.actor(chatID)
		if err != nil {
			return nil, WrapError(spec.operation(), err)
		}
		inv.actor = actor
	}
	return inv, nil
}

// runOneShot runs a single command from the command line and saves after a change.
func (a *app) runOneShot(spec *Command, c *cobra.Command, args []string) error {
	sess, err := a.sessionFor(spec.Fresh)
	if err != nil {
		return err
	}
	inv, err := a.invocation(sess, spec, c, args, a.cfg.As)
	if err != nil {
		return err
	}

	result, err := spec.Run(sess, inv)
	if err != nil {
		a.logger.Info("command failed", "command", spec.operation(), "args", args, "error", err)
		return WrapError(spec.operation(), err)
	}
	if spec.Mutates {
		if err := sess.save(); err != nil {
			a.logger.Error("save failed", "command", spec.operation(), "error", err)
			return WrapError(spec.operation(), err)
		}
	}
	return NewOutputFormatter(a.cfg.Format).Write(c.OutOrStdout(), result)
}
