package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/yukikurage/taskledger/internal/app"
	"github.com/yukikurage/taskledger/internal/config"
	apierrors "github.com/yukikurage/taskledger/internal/errors"
	"github.com/yukikurage/taskledger/internal/logging"
	"github.com/yukikurage/taskledger/internal/render"
	"go.uber.org/zap"
)

const (
	ExitSuccess           = 0
	ExitFailure           = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// usageError marks a malformed invocation.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("taskledger", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "config file (default $TASKLEDGER_CONFIG or "+config.DefaultPath+")")
	formatFlag := fs.String("format", render.FormatTable, "output format: table|json|yaml")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		printUsage(stderr)
		return ExitInvalidInvocation
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return ExitInvalidInvocation
	}
	name := fs.Arg(0)
	if name == "help" {
		printUsage(stdout)
		return ExitSuccess
	}
	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(stderr, "error: unknown command %q\n", name)
		printUsage(stderr)
		return ExitInvalidInvocation
	}
	format, err := render.ParseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitInvalidInvocation
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return ExitConfigError
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return ExitConfigError
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		fmt.Fprintln(stderr, "error:", err)
		return ExitInternalError
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close runtime", zap.Error(err))
		}
	}()

	env := &cmdEnv{app: a, out: stdout, format: format}
	err = cmd.run(ctx, env, fs.Args()[1:])
	return report(err, stderr, logger.Named("cli").With(zap.String("command", name)))
}

// report prints err and maps it to an exit code. Benign outcomes such as an
// existing membership are notices, not failures.
func report(err error, stderr io.Writer, logger *zap.Logger) int {
	if err == nil {
		return ExitSuccess
	}

	var uErr *usageError
	switch {
	case errors.As(err, &uErr):
		fmt.Fprintln(stderr, "error:", uErr.msg)
		return ExitInvalidInvocation
	case apierrors.IsBenign(err):
		fmt.Fprintln(stderr, "notice:", err)
		return ExitSuccess
	case apierrors.CodeOf(err) != apierrors.ErrCodeInternalError:
		fmt.Fprintf(stderr, "error [%s]: %v\n", apierrors.CodeOf(err), err)
		return ExitFailure
	default:
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(stderr, "error:", err)
		return ExitInternalError
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: taskledger [--config path] [--format table|json|yaml] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
}
