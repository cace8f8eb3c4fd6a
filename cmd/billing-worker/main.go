package main

import (
	"context"
	"os"
	"time"

	"accountant/internal/amqp"
	"accountant/internal/cli"
	"accountant/internal/log"
	"accountant/internal/ports"
	"accountant/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentRenewal)
	logger.Info("Starting billing-worker")

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer res.Close()

	// The processor only publishes when AMQP is reachable; renewals still
	// happen without it.
	var publisher ports.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP).Logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, renewals will not be announced", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	} else {
		logger.Info("AMQP disabled, renewals will not be announced")
	}

	processor := services.NewRenewalProcessor(res.Subscriptions, publisher, services.RenewalProcessorConfig{
		Interval: cfg.RenewalInterval,
		Source:   "billing-worker",
		Location: services.BusinessLocation(cfg.Timezone),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Error("Renewal processor stop failed", "error", err)
		}
	})

	logger.Info("Renewal processor configured",
		"interval", cfg.RenewalInterval,
		"backend", cfg.DataBackend)
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start renewal processor", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Billing-worker shutdown complete")
}
