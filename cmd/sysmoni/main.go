package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	xterm "golang.org/x/term"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/logging"
	"github.com/Dicklesworthstone/sysmoni/internal/sampler"
	"github.com/Dicklesworthstone/sysmoni/internal/term"
	"github.com/Dicklesworthstone/sysmoni/internal/ui"
)

func main() {
	cfg, err := config.FromFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "sysmoni:", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "sysmoni:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	mode, err := ui.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := sampler.New(cfg.Interval, cfg.EnableGPU)
	sample := s.Collect(ctx)

	if cfg.Once || !xterm.IsTerminal(int(os.Stdout.Fd())) {
		return ui.Print(os.Stdout, sample, ui.OutputWidth(int(os.Stdout.Fd())))
	}
	return interactive(ctx, cfg, mode, s, logger)
}

func interactive(ctx context.Context, cfg config.Config, mode ui.Mode, s *sampler.Sampler, logger *log.Logger) error {
	// Check user bindings while stderr is still visible.
	if err := ui.NewTop(ui.Options{Logger: logger}).ApplyKeys(cfg.Keys); err != nil {
		logger.Error("key bindings", "err", err)
		fmt.Fprintln(os.Stderr, "sysmoni: key bindings:", err)
	}

	t, err := term.Open(cfg.Mouse)
	if err != nil {
		return err
	}
	defer t.Close()

	top := ui.NewTop(ui.Options{
		Mode:      mode,
		Window:    t.Window(),
		Input:     t.Reader(),
		Provider:  s,
		Signaller: s,
		Logger:    logger,
	})
	_ = top.ApplyKeys(cfg.Keys)

	go s.Watch(ctx, t.Wake)
	go func() {
		<-ctx.Done()
		t.Wake()
	}()

	logger.Info("started", "mode", mode, "interval", cfg.Interval, "gpu", cfg.EnableGPU)
	if err := top.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
