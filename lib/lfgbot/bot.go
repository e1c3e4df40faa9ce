// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/partycrusher/partycrusher/lib/clock"
	"github.com/partycrusher/partycrusher/lib/codec"
	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/metrics"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
	"github.com/partycrusher/partycrusher/lib/roleresolver"
)

// Defaults for zero Config durations.
const (
	DefaultExpiry        = 30 * time.Minute
	DefaultDraftTimeout  = 3 * time.Minute
	DefaultRetention     = time.Hour
	DefaultPruneSchedule = "*/5 * * * *"

	// pushTimeout bounds surface calls made outside an inbound
	// action: expiry edits, terminal push retries, and draft cleanup.
	pushTimeout = 30 * time.Second

	// A terminal view that failed to push is retried after
	// terminalRetryBase, doubling up to terminalRetryMax.
	terminalRetryBase = 5 * time.Second
	terminalRetryMax  = 5 * time.Minute
)

// RoleMentions resolves the required roles of a listing to mention
// handles. *roleresolver.Resolver implements it.
type RoleMentions interface {
	Mentions(ctx context.Context, roomID ref.RoomID, set role.Set) []roleresolver.Handle
}

// Config configures a Bot.
type Config struct {
	Surface Surface

	// Roles resolves "Looking For" mentions. Nil renders plain
	// "@Title" text.
	Roles RoleMentions

	// Clock drives expiry, draft timeouts, and the prune sweep. Nil
	// means the real clock.
	Clock clock.Clock

	Expiry        time.Duration
	DraftTimeout  time.Duration
	Retention     time.Duration
	PruneSchedule string

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// entry is a published listing.
type entry struct {
	listing *listing.Listing
	message ref.EventID

	// update serializes mutate, render, and push for this listing.
	update sync.Mutex
	// pushed is the fingerprint of the last view pushed. Guarded by
	// update.
	pushed codec.Digest
	// retry re-pushes a terminal view after a failed edit; retries
	// counts the attempts scheduled. Guarded by update.
	retry   *clock.Timer
	retries int
}

type draftKey struct {
	room    ref.RoomID
	creator ref.UserID
}

type pendingDraft struct {
	draft  *listing.Draft
	prompt ref.EventID
	timer  *clock.Timer
	// abandoned is set when the draft timer fired. Guarded by Bot.mu.
	abandoned bool
}

// Bot owns all drafts and listings.
type Bot struct {
	surface       Surface
	roles         RoleMentions
	clock         clock.Clock
	expiry        time.Duration
	draftTimeout  time.Duration
	retention     time.Duration
	pruneSchedule string
	metrics       *metrics.Metrics
	logger        *slog.Logger

	mu        sync.Mutex
	drafts    map[draftKey]*pendingDraft
	listings  map[listing.ID]*entry
	byMessage map[ref.EventID]*entry
}

// New creates a Bot.
func New(config Config) (*Bot, error) {
	if config.Surface == nil {
		return nil, errors.New("lfgbot: Surface is required")
	}

	bot := &Bot{
		surface:       config.Surface,
		roles:         config.Roles,
		clock:         config.Clock,
		expiry:        config.Expiry,
		draftTimeout:  config.DraftTimeout,
		retention:     config.Retention,
		pruneSchedule: config.PruneSchedule,
		metrics:       config.Metrics,
		logger:        config.Logger,
		drafts:        make(map[draftKey]*pendingDraft),
		listings:      make(map[listing.ID]*entry),
		byMessage:     make(map[ref.EventID]*entry),
	}
	if bot.clock == nil {
		bot.clock = clock.Real()
	}
	if bot.expiry == 0 {
		bot.expiry = DefaultExpiry
	}
	if bot.draftTimeout == 0 {
		bot.draftTimeout = DefaultDraftTimeout
	}
	if bot.retention == 0 {
		bot.retention = DefaultRetention
	}
	if bot.pruneSchedule == "" {
		bot.pruneSchedule = DefaultPruneSchedule
	}
	if bot.logger == nil {
		bot.logger = slog.Default()
	}

	if bot.expiry < 0 || bot.draftTimeout < 0 || bot.retention < 0 {
		return nil, fmt.Errorf("lfgbot: durations must not be negative")
	}
	if !gronx.IsValid(bot.pruneSchedule) {
		return nil, fmt.Errorf("lfgbot: invalid prune schedule %q", bot.pruneSchedule)
	}
	return bot, nil
}

// Run runs the retention sweep on the prune schedule until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("listing retention sweep started",
		"schedule", b.pruneSchedule,
		"retention", b.retention,
	)
	for {
		now := b.clock.Now()
		next, err := gronx.NextTickAfter(b.pruneSchedule, now, false)
		if err != nil {
			return fmt.Errorf("lfgbot: computing next prune time: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-b.clock.After(next.Sub(now)):
		}

		if pruned := b.Prune(b.clock.Now()); pruned > 0 {
			b.logger.Info("pruned terminal listings", "count", pruned)
		}
	}
}

// Prune drops listings that have been terminal for at least the
// retention period, and abandoned drafts, and returns how many
// listings it dropped.
func (b *Bot) Prune(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, pending := range b.drafts {
		if pending.abandoned {
			delete(b.drafts, key)
		}
	}

	pruned := 0
	for id, current := range b.listings {
		terminatedAt := current.listing.TerminatedAt()
		if terminatedAt.IsZero() || now.Sub(terminatedAt) < b.retention {
			continue
		}
		delete(b.listings, id)
		delete(b.byMessage, current.message)
		pruned++
	}
	b.metrics.ListingsPruned(pruned)
	return pruned
}

// Len returns the number of listings held, including terminal ones
// not yet pruned.
func (b *Bot) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listings)
}

// Lookup returns the listing with id and the ID of its published
// message.
func (b *Bot) Lookup(id listing.ID) (*listing.Listing, ref.EventID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	current, ok := b.listings[id]
	if !ok {
		return nil, ref.EventID{}, false
	}
	return current.listing, current.message, true
}

// Published reports whether message is the published message of a
// listing the bot holds.
func (b *Bot) Published(message ref.EventID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.byMessage[message]
	return ok
}

// find resolves target in actor's room. With no target, the room's
// single Open listing is used; if several are Open, the single one
// actor created or belongs to.
func (b *Bot) find(actor Actor, target Target) (*entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !target.Message.IsZero() {
		current, ok := b.byMessage[target.Message]
		if !ok || current.listing.Room() != actor.Room {
			return nil, ErrUnknownListing
		}
		return current, nil
	}

	if target.ShortID != "" {
		prefix := strings.ToLower(strings.TrimPrefix(target.ShortID, "#"))
		var matches []*entry
		for id, current := range b.listings {
			if current.listing.Room() == actor.Room && strings.HasPrefix(string(id), prefix) {
				matches = append(matches, current)
			}
		}
		return pick(matches)
	}

	var open, involved []*entry
	for _, current := range b.listings {
		if current.listing.Room() != actor.Room || current.listing.Status() != listing.Open {
			continue
		}
		open = append(open, current)
		if _, member := current.listing.RoleOf(actor.User); member || current.listing.IsCreator(actor.User) {
			involved = append(involved, current)
		}
	}
	if len(open) <= 1 {
		return pick(open)
	}
	if len(involved) == 0 {
		return nil, ErrAmbiguousListing
	}
	return pick(involved)
}

func pick(matches []*entry) (*entry, error) {
	switch len(matches) {
	case 0:
		return nil, ErrUnknownListing
	case 1:
		return matches[0], nil
	default:
		return nil, ErrAmbiguousListing
	}
}

func (b *Bot) register(published *entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listings[published.listing.ID()] = published
	b.byMessage[published.message] = published
}
