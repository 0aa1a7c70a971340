package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"order-service/internal/logx"
	"order-service/internal/transport/ws"
)

const shutdownTimeout = 15 * time.Second

// MustRun starts the HTTP server using the provided DI container
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

type runtimeIn struct {
	dig.In
	Ctx    context.Context
	Server *http.Server
	Pool   *pgxpool.Pool
	Logger logx.Logger
	Hub    *ws.Hub
	Bus    *eventBus
	Redis  *redis.Client
}

func run(container *dig.Container) error {
	return container.Invoke(func(in runtimeIn) error {
		defer closeResources(in)

		hubCtx, stopHub := context.WithCancel(in.Ctx)
		defer stopHub()
		go in.Hub.Run(hubCtx)

		errCh := startServer(in.Server, in.Logger)
		select {
		case err := <-errCh:
			return fmt.Errorf("listen: %w", err)
		case <-in.Ctx.Done():
			in.Logger.Info("shutting down order-service")
		}
		stopHub()
		gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
		return nil
	})
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("order-service listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(in runtimeIn) {
	if err := in.Server.Close(); err != nil {
		in.Logger.Error("server close error", logx.Err(err))
	}
	if err := in.Bus.Close(); err != nil {
		in.Logger.Error("event bus close error", logx.Err(err))
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			in.Logger.Error("redis close error", logx.Err(err))
		}
	}
	in.Pool.Close()
	_ = in.Logger.Sync()
}
