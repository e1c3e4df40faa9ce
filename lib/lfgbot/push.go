// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/partycrusher/partycrusher/lib/codec"
	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/render"
	"github.com/partycrusher/partycrusher/lib/roleresolver"
)

// view renders l's current state and fingerprints the result.
func (b *Bot) view(ctx context.Context, l *listing.Listing) (render.View, codec.Digest, error) {
	snapshot := l.Snapshot()

	var handles []roleresolver.Handle
	if b.roles != nil && snapshot.Status == listing.Open {
		handles = b.roles.Mentions(ctx, snapshot.Room, snapshot.Required)
	}

	view := render.Render(render.Input{Listing: snapshot, LookingFor: handles})
	digest, err := codec.Fingerprint(view)
	if err != nil {
		return render.View{}, codec.Digest{}, fmt.Errorf("lfgbot: fingerprinting view of %s: %w", snapshot.ID.Short(), err)
	}
	return view, digest, nil
}

// push re-renders current and edits its message, unless the view is
// identical to the last one pushed. The caller holds current.update.
func (b *Bot) push(ctx context.Context, current *entry) error {
	view, digest, err := b.view(ctx, current.listing)
	if err != nil {
		return err
	}
	if digest == current.pushed {
		return nil
	}
	if err := b.surface.Update(ctx, current.listing.Room(), current.message, view); err != nil {
		return fmt.Errorf("lfgbot: updating listing %s: %w", current.listing.ID().Short(), err)
	}
	current.pushed = digest
	return nil
}

// terminalPushFailedLocked handles a failed push of a Closed or
// Expired view. A vanished message needs nothing more; any other
// failure is retried, since a frozen listing has no later mutation
// to carry the view. The caller holds current.update.
func (b *Bot) terminalPushFailedLocked(current *entry, err error) {
	if errors.Is(err, ErrMessageGone) {
		b.logger.Debug("terminal listing message is gone",
			"listing", current.listing.ID().Short(),
		)
		return
	}
	if current.retry != nil {
		return
	}
	delay := terminalRetryBase << current.retries
	if delay <= 0 || delay > terminalRetryMax {
		delay = terminalRetryMax
	}
	current.retries++
	b.logger.Warn("pushing terminal listing failed, will retry",
		"listing", current.listing.ID().Short(),
		"status", current.listing.Status(),
		"retry_in", delay,
		"error", err,
	)
	current.retry = b.clock.AfterFunc(delay, func() { b.retryTerminalPush(current) })
}

// retryTerminalPush runs on the retry timer. A pruned listing is not
// retried.
func (b *Bot) retryTerminalPush(current *entry) {
	b.mu.Lock()
	held := b.listings[current.listing.ID()] == current
	b.mu.Unlock()

	current.update.Lock()
	defer current.update.Unlock()
	current.retry = nil
	if !held {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := b.push(ctx, current); err != nil {
		b.terminalPushFailedLocked(current, err)
		return
	}
	b.logger.Info("terminal listing view pushed",
		"listing", current.listing.ID().Short(),
		"status", current.listing.Status(),
		"attempts", current.retries+1,
	)
}
