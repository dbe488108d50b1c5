package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"foodbot/config"
	"foodbot/infra/logging"
)

const usage = `usage: foodbot <serve|shell> [flags]

  serve   answer chat commands over gRPC
  shell   answer chat commands typed on stdin
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "foodbot:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}
	mode, args := args[0], args[1:]
	if mode != "serve" && mode != "shell" {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", mode)
	}

	fs := pflag.NewFlagSet("foodbot "+mode, pflag.ContinueOnError)
	config.Flags(fs)
	user := fs.String("user", os.Getenv("USER"), "shell: name to chat as")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Production)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	logger.Info("foodbot starting", zap.String("mode", mode), zap.String("bot", cfg.Bot.Name))
	if mode == "serve" {
		return serve(ctx, a)
	}
	return shell(ctx, a, *user, os.Stdin, os.Stdout)
}
