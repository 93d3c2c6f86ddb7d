package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/rebeliceyang/lazyseg/internal/config"
	"github.com/rebeliceyang/lazyseg/internal/logging"
	"github.com/rebeliceyang/lazyseg/internal/render"
)

const usage = `lazyseg - build audience segments from tabular data

Usage:
  lazyseg [--config FILE] <command> [flags]

Commands:
  tables                      list the tables the data provider offers
  analyze TABLE               show column types and the filter chosen for each
  filter TABLE                apply filters, print or export matches, save a segment
  segments list|show|delete|export
                              manage saved segments
  serve                       run the HTTP API
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, render.Error(err, render.DefaultTheme()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global := pflag.NewFlagSet("lazyseg", pflag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", "", "config file (default: search user config dir and .)")
	theme := global.String("theme", "default", "color theme: default or catppuccin")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := logging.NewFromConfig(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	a := &cli{cfg: cfg, logger: logger, theme: render.GetTheme(*theme), out: os.Stdout}
	defer a.close()

	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "tables":
		return a.tables(ctx, cmdArgs)
	case "analyze":
		return a.analyze(ctx, cmdArgs)
	case "filter":
		return a.filter(ctx, cmdArgs)
	case "segments":
		return a.segments(ctx, cmdArgs)
	case "serve":
		return a.serve(ctx, cmdArgs)
	case "help":
		global.Usage()
		return nil
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
