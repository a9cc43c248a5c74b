package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/storage"
	"github.com/sandeepkv93/timerd/internal/ticker"
	"github.com/sandeepkv93/timerd/internal/timers"
	"github.com/sandeepkv93/timerd/internal/update"
)

type commandFlags struct {
	runtime *update.Flags
	format  string
	out     string
}

func registerCommandFlags(fs *flag.FlagSet) *commandFlags {
	c := &commandFlags{runtime: update.RegisterFlags(fs)}
	fs.StringVar(&c.format, "format", "json", "export format: json or yaml")
	fs.StringVarP(&c.out, "out", "o", "", "export file (default stdout)")
	return c
}

// app owns everything a command needs: config, storage, store and engine.
type app struct {
	cfg     update.RuntimeConfig
	log     *slog.Logger
	logFile *os.File
	kv      storage.KV
	store   *timers.Store
	engine  *ticker.Engine

	// loadErr keeps Close from writing empty collections over stored state
	// that could not be read.
	loadErr error
}

// openApp loads config and state. With logOut nil the log goes to the
// configured log file, since the terminal belongs to the dashboard.
func openApp(ctx context.Context, opts *commandFlags, logOut io.Writer) (*app, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := update.LoadRuntimeConfig(wd, opts.runtime)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if logOut == nil {
		f, err := openLogFile(cfg.LogPath)
		if err != nil {
			return nil, err
		}
		a.logFile = f
		logOut = f
	}
	a.log = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelInfo}))

	a.kv, err = storage.Open(storage.Backend(cfg.StorageBackend), cfg.ResolvedStoragePath())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}

	policy, err := timers.ParseCompletionPolicy(cfg.CompletionPolicy)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store, err = timers.New(a.kv, timers.WithLogger(a.log), timers.WithCompletionPolicy(policy))
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.store.Load(ctx); err != nil {
		a.loadErr = err
		a.log.Error("stored state unreadable, starting empty", "err", err)
	}

	a.engine = ticker.New(a.store,
		ticker.WithInterval(cfg.TickInterval),
		ticker.WithBuffer(cfg.EventBuffer),
		ticker.WithLogger(a.log),
	)
	a.store.OnReset(a.engine.ClearHalfway)
	a.log.Info("timerd ready",
		"storage", cfg.StorageBackend,
		"path", cfg.ResolvedStoragePath(),
		"timers", len(a.store.Timers()),
		"history", len(a.store.History()),
		"policy", string(a.store.Policy()),
	)
	return a, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Close stops the engine, flushes state and releases files. It is safe on a
// partially opened app.
func (a *app) Close() error {
	var errs []error
	if a.engine != nil {
		a.engine.Stop()
	}
	if a.store != nil && a.loadErr == nil {
		// a cancelled signal context must not block the final write
		if err := a.store.Persist(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

func (a *app) model() update.Model {
	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if a.cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}
	return update.NewModelWithConfig(a.store, a.engine, notifier, a.cfg, a.log)
}

func (a *app) runHeadless(ctx context.Context, out io.Writer) error {
	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "ticking %d timer(s) every %s, ctrl+c to stop\n", len(a.store.Timers()), a.engine.Interval())
	for ev := range a.engine.C() {
		fmt.Fprintf(out, "%s  %-15s  %s\n", ev.At.Local().Format("15:04:05"), ev.Title(), ev.Message())
	}
	if n := a.engine.Dropped(); n > 0 {
		a.log.Warn("events dropped during run", "count", n)
	}
	return nil
}

func (a *app) printHistory(out io.Writer) error {
	history := a.store.History()
	if len(history) == 0 {
		_, err := fmt.Fprintln(out, "no completed timers")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDURATION\tCOMPLETED")
	for _, c := range history {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Category, model.FormatClock(c.Duration),
			c.CompletedTime().Local().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func (a *app) exportHistory(out io.Writer, rawFormat, path string) error {
	format, err := timers.ParseExportFormat(rawFormat)
	if err != nil {
		return err
	}
	if path == "" {
		return timers.ExportHistory(out, a.store.History(), format)
	}
	var buf bytes.Buffer
	if err := timers.ExportHistory(&buf, a.store.History(), format); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	a.log.Info("history exported", "path", path, "format", string(format), "rows", len(a.store.History()))
	return nil
}
