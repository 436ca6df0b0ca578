package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/smukkama/aquasure-server/internal/logger"
)

// ErrPoison marks a message that can never be handled, such as one that
// does not decode. Poison messages are committed and skipped.
var ErrPoison = errors.New("poison message")

// Source is the part of a Consumer the batch loop needs
type Source interface {
	Consume(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// Handler processes one message. Returning an error wrapping ErrPoison
// commits the message anyway; any other error leaves it uncommitted.
type Handler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, msg kafka.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg kafka.Message) error {
	return f(ctx, msg)
}

// BatchOptions tunes a BatchConsumer
type BatchOptions struct {
	BatchSize     int
	FlushInterval time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
}

// BatchConsumer reads messages from a Source, groups them into batches and
// hands each message to a Handler, committing offsets after success
type BatchConsumer struct {
	source  Source
	handler Handler
	opts    BatchOptions
	log     *logger.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewBatchConsumer creates a new batch consumer
func NewBatchConsumer(source Source, handler Handler, opts BatchOptions, log *logger.Logger) *BatchConsumer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return &BatchConsumer{
		source:  source,
		handler: handler,
		opts:    opts,
		log:     log,
		stopCh:  make(chan struct{}),
	}
}

// Start begins consuming
func (bc *BatchConsumer) Start(ctx context.Context) {
	bc.wg.Add(1)
	go bc.run(ctx)
}

// Stop flushes the pending batch and waits for the loop to exit
func (bc *BatchConsumer) Stop() {
	close(bc.stopCh)
	bc.wg.Wait()
}

func (bc *BatchConsumer) run(ctx context.Context) {
	defer bc.wg.Done()

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var batch []kafka.Message
	ticker := time.NewTicker(bc.opts.FlushInterval)
	defer ticker.Stop()

	msgChan := make(chan kafka.Message, bc.opts.BatchSize)
	go func() {
		defer close(msgChan)
		for {
			msg, err := bc.source.Consume(fetchCtx)
			if err != nil {
				if fetchCtx.Err() != nil {
					return
				}
				bc.log.Warn("consumer error", "error", err)
				continue
			}
			select {
			case msgChan <- msg:
			case <-fetchCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-bc.stopCh:
			bc.flush(ctx, batch)
			return

		case <-ctx.Done():
			return

		case <-ticker.C:
			if len(batch) > 0 {
				bc.log.Debug("flush interval reached", "messages", len(batch))
				bc.flush(ctx, batch)
				batch = nil
			}

		case msg, ok := <-msgChan:
			if !ok {
				bc.flush(ctx, batch)
				return
			}
			batch = append(batch, msg)
			if len(batch) >= bc.opts.BatchSize {
				bc.log.Debug("batch full", "messages", len(batch))
				bc.flush(ctx, batch)
				batch = nil
			}
		}
	}
}

// flush handles a batch in order. Once a message in a partition fails, later
// messages of that partition are left uncommitted so that the committed
// offset never passes an unhandled message.
func (bc *BatchConsumer) flush(ctx context.Context, batch []kafka.Message) {
	if len(batch) == 0 {
		return
	}

	blocked := make(map[int]bool)
	handled := 0
	for _, msg := range batch {
		if blocked[msg.Partition] {
			continue
		}

		err := bc.handle(ctx, msg)
		if err != nil && !errors.Is(err, ErrPoison) {
			bc.log.Error("failed to handle message",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
			blocked[msg.Partition] = true
			continue
		}
		if err != nil {
			bc.log.Warn("skipping poison message",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
		} else {
			handled++
		}

		if err := bc.source.Commit(ctx, msg); err != nil {
			bc.log.Error("failed to commit offset",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}

	bc.log.Info("flushed batch", "handled", handled, "size", len(batch))
}

func (bc *BatchConsumer) handle(ctx context.Context, msg kafka.Message) error {
	var err error
	for attempt := 1; attempt <= bc.opts.MaxAttempts; attempt++ {
		err = bc.handler.Handle(ctx, msg)
		if err == nil || errors.Is(err, ErrPoison) {
			return err
		}
		if attempt == bc.opts.MaxAttempts {
			break
		}
		select {
		case <-time.After(bc.opts.RetryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", bc.opts.MaxAttempts, err)
}
