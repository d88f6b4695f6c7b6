package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const prompt = "digigate> "

// runShell reads commands line by line until EOF or "exit". Command errors
// are printed and the loop goes on.
func runShell(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, a.support.WelcomeMessage().Text)
	fmt.Fprintf(out, "user %s; type 'help' for commands\n", a.session.UserID())

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}

		done, err := execLine(ctx, a, out, sc.Text())
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// execLine runs one shell line. done is true when the user asked to leave.
func execLine(ctx context.Context, a *app, out io.Writer, line string) (done bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name, args := fields[0], fields[1:]
	switch name {
	case "exit", "quit":
		return true, nil
	case "help", "?":
		printHelp(out)
		return false, nil
	case "tips":
		for _, q := range a.support.QuickReplies() {
			fmt.Fprintf(out, "  chat %s\n", q)
		}
		return false, nil
	}

	act, ok := findAction(name)
	if !ok {
		return false, fmt.Errorf("unknown command %q", name)
	}
	if err := act.checkArgs(args); err != nil {
		return false, err
	}
	if err := act.run(ctx, a, out, args); err != nil {
		if errors.Is(err, errUsage) {
			return false, err
		}
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return false, nil
}

func printHelp(out io.Writer) {
	for _, act := range actions() {
		fmt.Fprintf(out, "  %-34s %s\n", act.usage, act.short)
	}
	fmt.Fprintf(out, "  %-34s %s\n", "tips", "Show suggested support questions")
	fmt.Fprintf(out, "  %-34s %s\n", "exit", "Leave the shell")
}
