// Command cybook runs the library circulation engine from the command line,
// as an interactive shell, or as a JSON API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexandrebha/cybook/library/shared/shell"
	"github.com/alexandrebha/cybook/library/shared/shell/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// errUsage marks command line mistakes. Their message is printed as-is.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	a := newApp(cfg, stdout, stderr)
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, userMessage(err))
		a.logger.Debug("command failed", shell.LogAttrError, err.Error())

		return 1
	}

	return 0
}

func userMessage(err error) string {
	if errors.Is(err, errUsage) || errors.Is(err, config.ErrInvalidConfig) {
		return err.Error()
	}

	return shell.UserMessage(err)
}
