package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/holaplex/chainmirror/internal/feed"
)

// FailureFunc receives every failed message with its correlation id.
// The host uses it to apply its redelivery policy; the consumer itself
// never retries.
type FailureFunc func(id feed.MessageID, err error)

// Consumer drains the inbound queue through the router with bounded
// concurrency.
//
// Each message runs on its own goroutine under a weighted semaphore
// sized to the upstream prefetch, so a handler suspended on I/O never
// blocks unrelated in-flight messages. A single bad message never
// terminates the loop: its failure is reported and the loop moves on.
type Consumer struct {
	queue     *feed.Queue
	router    *Router
	sem       *semaphore.Weighted
	timeout   time.Duration
	onFailure FailureFunc
	log       *slog.Logger
}

// NewConsumer creates a consumer running at most workers messages
// concurrently, each bounded by timeout.
func NewConsumer(queue *feed.Queue, router *Router, workers int, timeout time.Duration, log *slog.Logger) *Consumer {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{
		queue:   queue,
		router:  router,
		sem:     semaphore.NewWeighted(int64(workers)),
		timeout: timeout,
		log:     log,
	}
}

// OnFailure installs the host's failure callback. Must be set before
// Run.
func (c *Consumer) OnFailure(fn FailureFunc) {
	c.onFailure = fn
}

// Run processes messages until the queue closes and drains or ctx is
// cancelled. It returns after all in-flight messages finish.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer starting")

	var wg sync.WaitGroup
	for {
		msg, ok := c.queue.Dequeue(ctx)
		if !ok {
			break
		}

		if err := c.sem.Acquire(ctx, 1); err != nil {
			// Cancelled while waiting for a slot; the message is dropped
			// back to the transport's redelivery policy.
			c.log.Info("consumer stopping: context cancelled")
			break
		}

		wg.Add(1)
		go func(msg feed.Message) {
			defer wg.Done()
			defer c.sem.Release(1)
			c.handle(ctx, msg)
		}(msg)
	}

	wg.Wait()
	c.log.Info("consumer stopped")
	return nil
}

// handle routes one message under the per-message timeout and reports
// any failure with its correlation id.
func (c *Consumer) handle(ctx context.Context, msg feed.Message) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.router.Route(ctx, msg); err != nil {
		id := msg.MessageID()
		c.log.Error("message processing failed", "id", id.String(), "error", err)
		if c.onFailure != nil {
			c.onFailure(id, err)
		}
	}
}
