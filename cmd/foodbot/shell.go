package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"foodbot/command"
)

// shell reads one chat message per line, always treated as addressed to
// the bot, and prints the replies.
func shell(ctx context.Context, a *app, user string, in io.Reader, out io.Writer) error {
	jobs, stopJobs := a.startJobs(ctx)
	defer func() {
		stopJobs()
		<-jobs
	}()

	fmt.Fprintf(out, "%s shell, chatting as %q. Try: food help\n", a.cfg.Bot.Name, user)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return a.flush()
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out)
			return a.flush()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		replies, err := a.handler.Handle(ctx, command.Message{User: user, Text: line, Direct: true})
		if errors.Is(err, command.ErrNoReply) {
			fmt.Fprintln(out, "(no reply)")
			continue
		}
		if err != nil {
			return err
		}
		for _, r := range replies {
			if r.Mention {
				fmt.Fprintf(out, "%s: %s\n", user, r.Text)
				continue
			}
			fmt.Fprintln(out, r.Text)
		}
	}
}
