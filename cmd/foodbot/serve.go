package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"foodbot/api/grpcserver"
)

func serve(ctx context.Context, a *app) error {
	jobs, stopJobs := a.startJobs(ctx)
	defer func() {
		stopJobs()
		<-jobs
	}()

	lis, err := net.Listen("tcp", a.cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.GRPC.Addr, err)
	}

	srv := grpcserver.NewGRPCServer(grpcserver.NewServer(a.handler, a.log.Named("grpc")))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(lis) }()
	a.log.Info("foodbot serving", zap.String("addr", lis.Addr().String()), zap.String("bot", a.cfg.Bot.Name))

	select {
	case err := <-errc:
		return fmt.Errorf("grpc server exited: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	srv.GracefulStop()
	return a.flush()
}

// flush waits for queued entries and writes the registry one last time.
func (a *app) flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.mgr.Sync(ctx); err != nil {
		a.log.Error("final save failed", zap.Error(err))
		return err
	}
	return nil
}
