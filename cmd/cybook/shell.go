package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const historyFileName = ".cybook_history"

func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.interactive {
				return fmt.Errorf("%w: already in the shell", errUsage)
			}

			return runShell(cmd.Context(), a)
		},
	}
}

func runShell(ctx context.Context, a *app) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "cybook> ",
		HistoryFile:       historyFile(),
		AutoComplete:      completerFor(newRootCommand(a)),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            a.out,
		Stderr:            a.errOut,
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	a.interactive = true
	defer func() { a.interactive = false }()

	_, _ = fmt.Fprintln(a.out, "Type a command, 'help' for the list, or 'exit' to quit.")

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}

			return err
		}

		line = strings.TrimSpace(line)

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		args, err := splitArgs(line)
		if err == nil {
			err = a.execute(ctx, args)
		}

		if err != nil {
			_, _ = fmt.Fprintln(a.errOut, userMessage(err))
		}
	}

	return nil
}

// execute runs one command line against a fresh command tree that shares the app's connection.
func (a *app) execute(ctx context.Context, args []string) error {
	root := newRootCommand(a)
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

// splitArgs splits a line on whitespace. Single or double quotes group words, e.g. search "bel ami".
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}

			current.WriteRune(r)

		case r == '"' || r == '\'':
			quote = r
			inWord = true

		case unicode.IsSpace(r):
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}

		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", errUsage)
	}

	if inWord {
		args = append(args, current.String())
	}

	return args, nil
}

func completerFor(cmd *cobra.Command) *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(completionItems(cmd)...)
}

func completionItems(cmd *cobra.Command) []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface

	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "shell" {
			continue
		}

		items = append(items, readline.PcItem(child.Name(), completionItems(child)...))
	}

	return items
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, historyFileName)
}
