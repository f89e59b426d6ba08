// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/apptnu/portal/internal/config"
	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/events"
	"github.com/apptnu/portal/internal/notify"
)

const reconnectDelay = 2 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("notifier error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.LoadNotifier(configPath)
	if err != nil {
		return err
	}

	logger, logCloser := core.NewLogger(cfg.Log, cfg.App.Name+"-notifier")
	defer logCloser.Close() //nolint:errcheck // flush on exit
	slog.SetDefault(logger)

	consumerCfg := events.ConsumerConfig{
		URL:      cfg.Events.URL,
		Exchange: cfg.Events.Exchange,
		Queue:    cfg.Events.Queue,
		Bindings: cfg.Events.Bindings,
		Prefetch: cfg.Events.Prefetch,
		Tag:      cfg.App.Name + "-notifier",
	}
	worker := notify.NewWorker(notify.NewLogNotifier(logger), logger)

	for {
		err := consume(ctx, consumerCfg, worker, logger)
		if ctx.Err() != nil {
			logger.Info("notifier stopped")
			return nil
		}
		if !errors.Is(err, notify.ErrDeliveriesClosed) {
			return err
		}

		logger.Warn("broker connection lost, reconnecting", "retry_in", reconnectDelay)
		select {
		case <-ctx.Done():
		case <-time.After(reconnectDelay):
		}
	}
}

// consume runs the worker over one broker connection.
func consume(
	ctx context.Context,
	cfg events.ConsumerConfig,
	worker *notify.Worker,
	logger *slog.Logger,
) error {
	consumer, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer consumer.Close() //nolint:errcheck // connection may already be gone

	deliveries, err := consumer.Deliveries(ctx)
	if err != nil {
		return err
	}

	logger.Info("notifier consuming",
		"queue", cfg.Queue,
		"exchange", cfg.Exchange,
		"bindings", cfg.Bindings,
	)

	return worker.Run(ctx, deliveries)
}

// connect retries until the broker accepts the connection or ctx ends.
func connect(
	ctx context.Context,
	cfg events.ConsumerConfig,
	logger *slog.Logger,
) (*events.Consumer, error) {
	for {
		consumer, err := events.NewConsumer(cfg)
		if err == nil {
			return consumer, nil
		}

		logger.Warn("broker connect failed, retrying",
			"error", err,
			"retry_in", reconnectDelay,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to broker: %w", ctx.Err())
		case <-time.After(reconnectDelay):
		}
	}
}
