package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"expensekeeper/internal/backend"
	"expensekeeper/internal/cli"
	applog "expensekeeper/internal/log"
	"expensekeeper/internal/services"
	"expensekeeper/internal/shell"
	"expensekeeper/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	preload := flag.String("import", "", "CSV file to import at startup")
	flag.Parse()

	if err := cli.LoadEnvFile(*envFile); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = applog.WithContext(ctx, logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize backend: %w", err)
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithLedgerWriter(res.Ledger),
		services.WithSinkTimeout(cfg.SinkTimeout),
	}
	if res.Publisher != nil {
		opts = append(opts, services.WithPublisher(res.Publisher))
	}
	svc := services.NewExpenseService(store.New(store.WithHeader(cfg.CSVHeader)), opts...)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Shutdown error", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
		}
	}()

	if *preload != "" {
		n, err := svc.ImportFile(ctx, *preload)
		if err != nil {
			return err
		}
		logger.Info("Preloaded expenses", applog.FieldPath, *preload, applog.FieldCount, n)
	}

	var shellOpts []shell.Option
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		shellOpts = append(shellOpts, shell.WithPrompt(""))
	}
	sh := shell.New(svc, os.Stdin, os.Stdout, shellOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return sh.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Debug("Shutdown requested", applog.FieldOperation, applog.OpShutdown)
		return nil
	})

	logger.Info("Expense keeper started",
		applog.FieldOperation, applog.OpStartup,
		"sink", backendCfg.Sink.String(),
		"events", res.Publisher != nil)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Expense keeper stopped", applog.FieldOperation, applog.OpShutdown)
	return nil
}
