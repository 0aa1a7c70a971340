package app

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/dig"

	"order-service/internal/config"
	"order-service/internal/logx"
	"order-service/internal/service/integrations"
	"order-service/internal/transport/kafka"
)

var newKafkaConsumer = kafka.NewConsumer

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		integrations.NewProcessor,
		func(cfg *config.Config, logger logx.Logger, p *integrations.Processor) (*kafka.Consumer, error) {
			if cfg.EventBus != config.EventBusKafka {
				return nil, nil
			}
			return newKafkaConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topic, makeIntegrationsKafka(p))
		},
		func(ctx context.Context, cfg *config.Config, svc *integrations.Service, logger logx.Logger) (*cron.Cron, error) {
			return newRetryScheduler(ctx, cfg.Integrations.RetrySchedule, svc.RetryFailed, logger)
		},
	)
}

// WorkerRunner runs the background worker
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(func(in workerIn) error {
		return workerRun(in.Ctx, in.Pool, in.Logger, in.Consumer, in.Scheduler)
	})
}

type workerIn struct {
	dig.In
	Ctx       context.Context
	Pool      *pgxpool.Pool
	Logger    logx.Logger
	Consumer  *kafka.Consumer
	Scheduler *cron.Cron
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	scheduler *cron.Cron,
) error {
	if consumer == nil && scheduler == nil {
		return errors.New("worker has nothing to run: kafka consumer and retry schedule are both disabled")
	}
	defer closeWorker(pool, logger, consumer, scheduler)

	if scheduler != nil {
		scheduler.Start()
	}
	logger.Info("order-service-worker started",
		logx.Bool("consumer", consumer != nil),
		logx.Bool("scheduler", scheduler != nil),
	)
	if consumer == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return consumer.Run(ctx)
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer, scheduler *cron.Cron) {
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
	_ = logger.Sync()
}
