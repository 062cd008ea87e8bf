package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/holaplex/chainmirror/internal/store"
)

// Dispatcher writes async job envelopes to the durable outbox.
type Dispatcher struct {
	store *store.Store
	log   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given store.
func NewDispatcher(s *store.Store, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{store: s, log: log}
}

// Write enqueues one job. Failure is returned to the caller undecorated;
// the router decides whether the whole message counts as failed. There
// are no internal retries - redelivery is the upstream transport's job.
func (d *Dispatcher) Write(ctx context.Context, job AsyncJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal %s job: %w", job.Kind(), err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate %s job id: %w", job.Kind(), err)
	}

	if err := d.store.EnqueueJob(ctx, id.String(), job.Kind(), payload); err != nil {
		return err
	}

	d.log.Debug("job enqueued", "kind", job.Kind(), "id", id.String())
	return nil
}
