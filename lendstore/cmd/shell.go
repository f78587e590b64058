package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const prompt = "lendstore> "

func (a *app) shellCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "shell",
		Short: "Read commands from stdin until end of input or interrupt",
		Long: `Read commands from stdin, one per line, using the same syntax as the command line.

A line may start with @chat-id to act as that member, overriding --as:

  @alice checkout request "Chess Basics"
  @librarian checkout handout RQPSUQA

The library is written to disk when the shell ends. Use 'save' to write it earlier.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			workers, _ := c.Flags().GetInt("workers")
			return a.runShell(c.Context(), workers)
		},
	}
	c.Flags().IntP("workers", "w", 1, "Number of lines handled at the same time")
	return c
}

// runShell dispatches each line on its own goroutine. On end of input it waits for every
// line to finish; on SIGINT or SIGTERM it stops at once. Either way the library is saved
// through the fallback chain before returning.
func (a *app) runShell(ctx context.Context, workers int) error {
	sess, err := a.session()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := a.logger.With("shell", uuid.NewString())
	logger.Info("shell started", "db", sess.file.Path(), "workers", workers)

	lines := make(chan string)
	go readLines(ctx, a.in, a.out, lines)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	var outMu sync.Mutex
	interrupted := false
loop:
	for {
		select {
		case <-ctx.Done():
			interrupted = true
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			g.Go(func() error {
				reply := a.dispatch(gctx, sess, line)
				if reply != "" {
					outMu.Lock()
					fmt.Fprintln(a.out, reply)
					outMu.Unlock()
				}
				return nil
			})
		}
	}

	if interrupted {
		logger.Warn("shell interrupted, abandoning running commands")
	} else {
		_ = g.Wait()
	}

	report := sess.shutdown()
	switch {
	case report.Saved():
		logger.Info("shell finished", "db", sess.file.Path())
	case report.DumpPath != "":
		fmt.Fprintf(a.errOut, "Warning: could not save %s; a copy was written to %s\n", sess.file.Path(), report.DumpPath)
	default:
		fmt.Fprintf(a.errOut, "Warning: could not save %s; the library was written to the log\n", sess.file.Path())
	}
	return nil
}

func readLines(ctx context.Context, in io.Reader, out io.Writer, lines chan<- string) {
	defer close(lines)
	interactive := isTerminal(in)
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			return
		}
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// dispatch runs one shell line and returns its reply.
func (a *app) dispatch(ctx context.Context, sess *session, line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}

	words, err := shellquote.Split(line)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	chatID := a.cfg.As
	if len(words) > 0 && strings.HasPrefix(words[0], "@") {
		chatID = strings.TrimPrefix(words[0], "@")
		words = words[1:]
	}
	if len(words) == 0 {
		return ""
	}

	var buf bytes.Buffer
	root := &cobra.Command{Use: "lendstore", SilenceUsage: true, SilenceErrors: true}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringP("format", "f", a.cfg.Format, "Output format (table|json|yaml)")
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(words)

	run := func(spec *Command, c *cobra.Command, args []string) error {
		inv, err := a.invocation(sess, spec, c, args, chatID)
		if err != nil {
			return err
		}
		result, err := spec.Run(sess, inv)
		if err != nil {
			return WrapError(spec.operation(), err)
		}
		format, _ := c.Flags().GetString("format")
		return NewOutputFormatter(format).Write(c.OutOrStdout(), result)
	}
	root.AddCommand(buildCommands(commandTable(), run, true)...)

	if err := root.ExecuteContext(ctx); err != nil {
		a.logger.Info("shell command failed", "line", line, "as", chatID, "error", err)
		fmt.Fprintf(&buf, "Error: %v\n", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}
