// Package pipeline classifies, routes, and concurrently processes feed
// messages.
//
// The router computes a correlation id for every message before
// dispatch, selects the owning program's handler from a fixed-precedence
// registry, and wraps any handler failure with that id. Untracked owners
// are success no-ops: the feed carries every program on chain and most
// are simply not mirrored here.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/holaplex/chainmirror/internal/config"
	"github.com/holaplex/chainmirror/internal/feed"
	"github.com/holaplex/chainmirror/internal/programs"
)

// Router dispatches feed messages to program handlers.
type Router struct {
	registry *programs.Registry
	ignore   *config.IgnoreSet
	log      *slog.Logger
}

// NewRouter creates a router over the handler registry and the boot-time
// ignore set.
func NewRouter(registry *programs.Registry, ignore *config.IgnoreSet, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{registry: registry, ignore: ignore, log: log}
}

// Route processes one message. Any handler failure is returned wrapped
// with the message's correlation id; side effects are confined to the
// invoked handler.
func (r *Router) Route(ctx context.Context, msg feed.Message) error {
	id := msg.MessageID()

	var err error
	switch m := msg.(type) {
	case feed.AccountUpdate:
		err = r.routeAccount(ctx, m)
	case feed.InstructionNotify:
		err = r.routeInstruction(ctx, m)
	case feed.SlotStatusUpdate:
		// Informational only; acknowledged without reaching a decoder.
		r.log.Debug("slot status update", "slot", m.Slot)
	default:
		r.log.Warn("message of unknown type acknowledged", "id", id.String())
	}

	if err != nil {
		return &MessageError{ID: id, Err: err}
	}
	return nil
}

// routeAccount selects the owner's handler, applying startup-replay
// suppression for ignored categories before the decoder ever runs.
func (r *Router) routeAccount(ctx context.Context, upd feed.AccountUpdate) error {
	handler, ok := r.registry.Lookup(upd.Owner)
	if !ok {
		r.log.Debug("unhandled account update", "owner", upd.Owner.String())
		return nil
	}

	if upd.IsStartup && r.ignore.Contains(handler.Category()) {
		r.log.Debug("startup update suppressed",
			"category", handler.Category().String(), "account", upd.Key.String())
		return nil
	}

	return handler.HandleAccount(ctx, upd)
}

// routeInstruction is keyed purely by program identity; no ignore
// suppression applies to instructions.
func (r *Router) routeInstruction(ctx context.Context, ins feed.InstructionNotify) error {
	handler, ok := r.registry.Lookup(ins.Program)
	if !ok {
		return nil
	}
	return handler.HandleInstruction(ctx, ins)
}
