// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/render"
	"github.com/partycrusher/partycrusher/lib/role"
)

// PromptText is the opening line of the draft prompt.
const PromptText = "Please select the roles you're looking for:"

// Create starts the draft phase for actor. request.Room and
// request.Creator are taken from actor. A draft the actor already has
// open in the room is replaced and its prompt discarded.
func (b *Bot) Create(ctx context.Context, actor Actor, request listing.DraftRequest) (*listing.Draft, error) {
	request.Room = actor.Room
	request.Creator = actor.User

	draft, err := listing.NewDraft(request, b.clock.Now())
	if err != nil {
		return nil, b.reject(ctx, actor, "create", err)
	}

	prompt, err := b.surface.Notify(ctx, actor, b.promptText())
	if err != nil {
		return nil, fmt.Errorf("lfgbot: sending role prompt: %w", err)
	}

	key := draftKey{room: actor.Room, creator: actor.User}
	pending := &pendingDraft{draft: draft, prompt: prompt}

	b.mu.Lock()
	replaced := b.drafts[key]
	if replaced != nil && replaced.abandoned {
		replaced = nil
	}
	b.drafts[key] = pending
	pending.timer = b.clock.AfterFunc(b.draftTimeout, func() { b.abandonDraft(key, pending) })
	b.mu.Unlock()

	if replaced != nil {
		replaced.timer.Stop()
		b.discard(ctx, actor.Room, replaced.prompt)
	}

	b.logger.Info("listing draft started",
		"draft", draft.ID.Short(),
		"room", actor.Room,
		"creator", actor.User,
		"dungeon", draft.Details.Dungeon,
		"key_level", draft.Details.KeyLevel,
	)
	return draft, nil
}

func (b *Bot) promptText() string {
	labels := make([]string, 0, len(role.All()))
	for _, key := range role.All() {
		labels = append(labels, key.Icon()+" "+key.Title())
	}
	return fmt.Sprintf("%s %s. Answer with **need** and one or more roles within %s.",
		PromptText, strings.Join(labels, ", "), render.HumanDuration(b.draftTimeout))
}

// SelectRequiredRoles commits actor's draft with the given required
// roles and publishes the listing. A draft commits at most once; a
// failed publish abandons it.
func (b *Bot) SelectRequiredRoles(ctx context.Context, actor Actor, required role.Set) (*listing.Listing, error) {
	key := draftKey{room: actor.Room, creator: actor.User}
	now := b.clock.Now()

	b.mu.Lock()
	pending := b.drafts[key]
	switch {
	case pending == nil:
		b.mu.Unlock()
		return nil, b.reject(ctx, actor, "commit", ErrNoDraft)
	case pending.abandoned || pending.draft.Expired(now, b.draftTimeout):
		abandoned := pending.abandoned
		delete(b.drafts, key)
		b.mu.Unlock()
		if !abandoned {
			pending.timer.Stop()
			b.discard(ctx, actor.Room, pending.prompt)
		}
		return nil, b.reject(ctx, actor, "commit", listing.ErrDraftExpired)
	case required.IsEmpty():
		b.mu.Unlock()
		return nil, b.reject(ctx, actor, "commit", listing.ErrEmptySelection)
	}
	delete(b.drafts, key)
	b.mu.Unlock()
	pending.timer.Stop()

	created, err := pending.draft.Commit(required, now, b.expiry)
	if err != nil {
		b.discard(ctx, actor.Room, pending.prompt)
		return nil, b.reject(ctx, actor, "commit", err)
	}

	view, digest, err := b.view(ctx, created)
	if err != nil {
		return nil, err
	}
	message, err := b.surface.Publish(ctx, actor.Room, view)
	if err != nil {
		b.logger.Error("publishing listing failed",
			"listing", created.ID().Short(),
			"room", actor.Room,
			"error", err,
		)
		b.discard(ctx, actor.Room, pending.prompt)
		return nil, b.reject(ctx, actor, "commit", fmt.Errorf("%w: %w", ErrPublishFailed, err))
	}

	b.register(&entry{listing: created, message: message, pushed: digest})
	created.ScheduleExpiry(b.clock, b.expired)
	b.discard(ctx, actor.Room, pending.prompt)
	b.metrics.ListingCreated()

	b.logger.Info("listing published",
		"listing", created.ID().Short(),
		"room", actor.Room,
		"message", message,
		"required", required,
	)
	return created, nil
}

// abandonDraft marks pending abandoned if it is still the current
// draft for key and removes its prompt. The entry stays until the next
// create, commit attempt, or prune so a late commit reports
// listing.ErrDraftExpired. Runs on the draft timer.
func (b *Bot) abandonDraft(key draftKey, pending *pendingDraft) {
	b.mu.Lock()
	if b.drafts[key] != pending || pending.abandoned {
		b.mu.Unlock()
		return
	}
	pending.abandoned = true
	b.mu.Unlock()

	b.logger.Info("listing draft timed out",
		"draft", pending.draft.ID.Short(),
		"room", key.room,
		"creator", key.creator,
	)
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	b.discard(ctx, key.room, pending.prompt)
}

// discard removes a prompt, logging failures.
func (b *Bot) discard(ctx context.Context, roomID ref.RoomID, message ref.EventID) {
	if message.IsZero() {
		return
	}
	if err := b.surface.Discard(ctx, roomID, message); err != nil {
		b.logger.Warn("discarding prompt failed",
			"room", roomID,
			"message", message,
			"error", err,
		)
	}
}

// Drafts returns the number of drafts awaiting roles.
func (b *Bot) Drafts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, pending := range b.drafts {
		if !pending.abandoned {
			count++
		}
	}
	return count
}
