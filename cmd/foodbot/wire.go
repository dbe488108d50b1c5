package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"foodbot/command"
	"foodbot/config"
	"foodbot/infra/brain"
	"foodbot/infra/kafka"
	"foodbot/infra/outbox"
	"foodbot/jobs/broadcaster"
	"foodbot/service"
	"foodbot/snapshot"
)

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	mgr     *service.Manager
	handler *command.Handler
	bc      *broadcaster.Broadcaster
	closers []io.Closer
}

func wire(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	// ---------------- Brain ----------------

	b, err := a.openBrain(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	// ---------------- Events ----------------

	opts := []service.Option{service.WithLogger(log)}
	if cfg.Events.Driver != config.EventsNone {
		ob, err := outbox.Open(cfg.Events.OutboxDir)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open outbox: %w", err)
		}
		a.closers = append(a.closers, ob)

		pub, err := openPublisher(cfg.Events)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open publisher: %w", err)
		}
		a.bc = broadcaster.New(ob, pub, broadcaster.Config{
			Interval:   cfg.Events.Interval,
			MaxRetries: cfg.Events.MaxRetries,
		}, log.Named("broadcaster"))
		a.closers = append(a.closers, a.bc)
		opts = append(opts, service.WithJournal(ob))
	}

	// ---------------- Manager ----------------

	a.mgr, err = service.NewManager(ctx, b, opts...)
	if err != nil {
		a.close()
		return nil, err
	}
	a.handler = command.NewHandler(cfg.Bot.Name, a.mgr, cfg.Command.Timeout, log.Named("command"))
	return a, nil
}

func (a *app) openBrain(ctx context.Context) (brain.Brain, error) {
	bc := a.cfg.Brain
	a.log.Info("opening brain", zap.String("driver", bc.Driver))

	switch bc.Driver {
	case config.BrainMemory:
		return brain.NewMemory(), nil
	case config.BrainPebble:
		p, err := brain.OpenPebble(bc.Pebble.Dir)
		if err != nil {
			return nil, fmt.Errorf("open pebble brain: %w", err)
		}
		a.closers = append(a.closers, p)
		return p, nil
	case config.BrainRedis:
		r := brain.NewRedis(brain.RedisConfig{
			Addr:     bc.Redis.Addr,
			Password: bc.Redis.Password,
			DB:       bc.Redis.DB,
		})
		a.closers = append(a.closers, r)
		if err := r.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis brain: %w", err)
		}
		return r, nil
	case config.BrainFile:
		return snapshot.NewStore(bc.File.Dir), nil
	default:
		return nil, fmt.Errorf("unknown brain driver %q", bc.Driver)
	}
}

func openPublisher(ec config.EventsConfig) (broadcaster.Publisher, error) {
	switch ec.Driver {
	case config.EventsKafkaGo:
		return kafka.NewProducer(ec.Brokers, ec.Topic), nil
	case config.EventsSarama:
		return kafka.NewSaramaProducer(ec.Brokers, ec.Topic)
	default:
		return nil, fmt.Errorf("unknown events driver %q", ec.Driver)
	}
}

// startJobs runs background loops until parent ends or the returned cancel
// is called. The returned channel closes once they have all stopped.
func (a *app) startJobs(parent context.Context) (<-chan struct{}, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan struct{})
	if a.bc == nil {
		close(ch)
		return ch, cancel
	}
	go func() {
		defer close(ch)
		a.bc.Run(ctx)
	}()
	return ch, cancel
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
