// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/role"
)

// outcome is what a successful mutation reports back to act.
type outcome struct {
	// action labels the transition in metrics and logs.
	action string
	// ack is the private reply to the actor.
	ack string
	// unchanged skips the push.
	unchanged bool
	// terminal marks a Closed transition. A failed push then does
	// not fail the action; the view is retried.
	terminal bool
}

// act resolves target, runs mutate under the listing's update lock,
// pushes the new view, and answers the actor. Rejections are answered
// privately and returned.
func (b *Bot) act(ctx context.Context, actor Actor, target Target, name string, mutate func(*listing.Listing) (outcome, error)) error {
	current, err := b.find(actor, target)
	if err != nil {
		return b.reject(ctx, actor, name, err)
	}

	result, err := b.apply(ctx, current, mutate)
	if err != nil {
		if IsRejection(err) {
			return b.reject(ctx, actor, name, err)
		}
		b.logger.Error("listing update failed",
			"listing", current.listing.ID().Short(),
			"action", name,
			"actor", actor.User,
			"error", err,
		)
		b.notify(ctx, actor, GenericRejection)
		return err
	}

	if result.terminal {
		b.metrics.ListingTerminated(result.action)
	} else if !result.unchanged {
		b.metrics.Action(result.action)
	}
	level := slog.LevelInfo
	if result.unchanged {
		level = slog.LevelDebug
	}
	b.logger.Log(ctx, level, "listing updated",
		"listing", current.listing.ID().Short(),
		"action", result.action,
		"actor", actor.User,
		"unchanged", result.unchanged,
	)
	b.notify(ctx, actor, result.ack)
	return nil
}

func (b *Bot) apply(ctx context.Context, current *entry, mutate func(*listing.Listing) (outcome, error)) (outcome, error) {
	current.update.Lock()
	defer current.update.Unlock()

	result, err := mutate(current.listing)
	if err != nil {
		return outcome{}, err
	}
	if result.unchanged {
		return result, nil
	}
	if err := b.push(ctx, current); err != nil {
		if !result.terminal {
			return outcome{}, err
		}
		// The transition stands; the view catches up later.
		b.terminalPushFailedLocked(current, err)
	}
	return result, nil
}

// ClickRole joins actor to key on the target listing. The role's
// control must be enabled: the listing is Open and key is required.
func (b *Bot) ClickRole(ctx context.Context, actor Actor, target Target, key role.Key) error {
	return b.act(ctx, actor, target, "join", func(l *listing.Listing) (outcome, error) {
		if !key.Valid() {
			return outcome{}, fmt.Errorf("lfgbot: join %q: %w", key, role.ErrUnknownRole)
		}
		if !l.RoleEnabled(key) {
			if l.Status() != listing.Open {
				return outcome{}, listing.ErrListingClosed
			}
			return outcome{}, fmt.Errorf("%w: %s", ErrRoleNotRequired, key.Title())
		}

		joined, err := l.JoinRole(actor.User, key)
		if err != nil {
			return outcome{}, err
		}
		switch {
		case joined.Outcome == listing.Unchanged:
			return outcome{
				action:    "join",
				ack:       fmt.Sprintf("ℹ️ You're already in the party as **%s**.", key.Title()),
				unchanged: true,
			}, nil
		case joined.ConfirmationPending:
			return outcome{action: "switch", ack: confirmationPrompt(l.Required())}, nil
		case joined.Outcome == listing.Switched:
			return outcome{action: "switch", ack: fmt.Sprintf("✅ You joined as **%s**!", key.Title())}, nil
		default:
			return outcome{action: "join", ack: fmt.Sprintf("✅ You joined as **%s**!", key.Title())}, nil
		}
	})
}

// ConfirmationText opens the prompt sent to a creator who switched
// role.
const ConfirmationText = "👑 You changed your role. Please confirm or update the required roles:"

func confirmationPrompt(required role.Set) string {
	return fmt.Sprintf("%s currently **%s**. Answer with **roles** and the roles you still need.", ConfirmationText, required)
}

// Leave removes actor from the target listing.
func (b *Bot) Leave(ctx context.Context, actor Actor, target Target) error {
	return b.act(ctx, actor, target, "leave", func(l *listing.Listing) (outcome, error) {
		if _, err := l.Leave(actor.User); err != nil {
			return outcome{}, err
		}
		return outcome{action: "leave", ack: "👋 You've left the party."}, nil
	})
}

// Close closes the target listing. Only its creator may.
func (b *Bot) Close(ctx context.Context, actor Actor, target Target) error {
	return b.act(ctx, actor, target, "close", func(l *listing.Listing) (outcome, error) {
		if err := l.Close(actor.User, b.clock.Now()); err != nil {
			return outcome{}, err
		}
		return outcome{action: "close", ack: "✅ Group has been closed.", terminal: true}, nil
	})
}

// EditRequirements replaces the target listing's requirements text.
func (b *Bot) EditRequirements(ctx context.Context, actor Actor, target Target, text string) error {
	return b.act(ctx, actor, target, "edit", func(l *listing.Listing) (outcome, error) {
		if err := l.EditRequirements(actor.User, text); err != nil {
			return outcome{}, err
		}
		return outcome{action: "edit", ack: "✅ Requirements updated!"}, nil
	})
}

// UpdateRequiredRoles replaces the target listing's required roles.
// It also answers the confirmation prompt after a creator role
// switch.
func (b *Bot) UpdateRequiredRoles(ctx context.Context, actor Actor, target Target, required role.Set) error {
	return b.act(ctx, actor, target, "update_roles", func(l *listing.Listing) (outcome, error) {
		if err := l.UpdateRequiredRoles(actor.User, required); err != nil {
			return outcome{}, err
		}
		return outcome{action: "update_roles", ack: "✅ Required roles updated."}, nil
	})
}

// expired pushes the terminal view of a listing whose expiry timer
// fired. Runs on the timer.
func (b *Bot) expired(l *listing.Listing) {
	b.mu.Lock()
	current := b.listings[l.ID()]
	b.mu.Unlock()
	if current == nil {
		return
	}
	b.metrics.ListingTerminated("expire")

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	current.update.Lock()
	defer current.update.Unlock()
	if err := b.push(ctx, current); err != nil {
		b.terminalPushFailedLocked(current, err)
		return
	}
	b.logger.Info("listing expired",
		"listing", l.ID().Short(),
		"room", l.Room(),
		"age", l.TerminatedAt().Sub(l.CreatedAt()).Round(time.Second),
	)
}

// reject answers actor with err's rejection message and returns err.
func (b *Bot) reject(ctx context.Context, actor Actor, action string, err error) error {
	found, ok := classify(err)
	if !ok {
		b.logger.Error("action failed",
			"action", action,
			"room", actor.Room,
			"actor", actor.User,
			"error", err,
		)
		b.notify(ctx, actor, GenericRejection)
		return err
	}

	b.metrics.Rejection(found.reason)
	b.logger.Debug("action rejected",
		"action", action,
		"room", actor.Room,
		"actor", actor.User,
		"reason", found.reason,
	)
	b.notify(ctx, actor, found.message)
	return err
}

// notify sends a private reply, logging failures.
func (b *Bot) notify(ctx context.Context, actor Actor, text string) {
	if _, err := b.surface.Notify(ctx, actor, text); err != nil {
		b.logger.Warn("notifying actor failed",
			"room", actor.Room,
			"actor", actor.User,
			"error", err,
		)
	}
}
