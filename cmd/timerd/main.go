package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
)

const usage = `usage: timerd [flags] [command]

commands:
  (none)    interactive timer dashboard
  run       headless: tick running timers and print events
  history   print completed timers
  export    write history as json or yaml (--format, --out)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "timerd failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("timerd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	opts := registerCommandFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	command := ""
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	switch command {
	case "":
		a, err := openApp(ctx, opts, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		program := tea.NewProgram(a.model(), tea.WithContext(ctx))
		_, err = program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	case "run":
		a, err := openApp(ctx, opts, stderr)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.runHeadless(ctx, stdout)
	case "history":
		a, err := openApp(ctx, opts, stderr)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.printHistory(stdout)
	case "export":
		a, err := openApp(ctx, opts, stderr)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.exportHistory(stdout, opts.format, opts.out)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
