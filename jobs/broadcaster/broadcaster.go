// Package broadcaster drains the event outbox into the message bus.
package broadcaster

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"foodbot/domain/order"
	"foodbot/infra/logging"
	"foodbot/infra/outbox"
)

// Publisher delivers one message. Both kafka producers satisfy it.
type Publisher interface {
	Send(ctx context.Context, key, value []byte) error
	Close() error
}

type Broadcaster struct {
	outbox     *outbox.Outbox
	publisher  Publisher
	interval   time.Duration
	maxRetries uint32
	log        *zap.Logger
}

type Config struct {
	Interval   time.Duration
	MaxRetries uint32
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(ob *outbox.Outbox, p Publisher, cfg Config, log *zap.Logger) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	return &Broadcaster{
		outbox:     ob,
		publisher:  p,
		interval:   cfg.Interval,
		maxRetries: cfg.MaxRetries,
		log:        logging.OrNop(log),
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run publishes pending events every interval until ctx ends, then makes one
// last pass with a fresh context so events recorded during shutdown go out.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("broadcaster started", zap.Duration("interval", b.interval))

	t := time.NewTicker(b.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			b.RunOnce(flushCtx)
			cancel()
			b.log.Info("broadcaster stopped")
			return
		case <-t.C:
			b.RunOnce(ctx)
		}
	}
}

// RunOnce makes a single pass over NEW and SENT records. SENT records are
// left over from a crash between send and ack and are published again.
// ACKED records left by a failed delete are skipped.
func (b *Broadcaster) RunOnce(ctx context.Context) {
	err := b.outbox.Scan(func(rec outbox.Record) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.deliver(ctx, rec)
		return nil
	}, outbox.StateNew, outbox.StateSent)
	if err != nil && ctx.Err() == nil {
		b.log.Error("outbox scan failed", zap.Error(err))
	}
}

func (b *Broadcaster) deliver(ctx context.Context, rec outbox.Record) {
	if err := b.outbox.UpdateState(rec, outbox.StateSent, rec.Retries); err != nil {
		b.log.Error("mark sent failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
		return
	}

	if err := b.publisher.Send(ctx, partitionKey(rec.Payload), rec.Payload); err != nil {
		retries := rec.Retries + 1
		state := outbox.StateNew
		if retries >= b.maxRetries {
			state = outbox.StateFailed
		}
		b.log.Warn("publish failed",
			zap.Uint64("seq", rec.Seq),
			zap.Uint32("retries", retries),
			zap.Stringer("state", state),
			zap.Error(err),
		)
		if err := b.outbox.UpdateState(rec, state, retries); err != nil {
			b.log.Error("mark retry failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
		}
		return
	}

	// ACKED first: if the delete fails the record is not published again.
	if err := b.outbox.UpdateState(rec, outbox.StateAcked, rec.Retries); err != nil {
		b.log.Error("mark acked failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
		return
	}
	if err := b.outbox.Delete(rec.Seq); err != nil {
		b.log.Error("delete acked failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
	}
}

// partitionKey is the order name, so one order's events stay ordered.
func partitionKey(payload []byte) []byte {
	var ev order.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil
	}
	return []byte(ev.Order)
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.publisher.Close()
}
