// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package roleresolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
)

// DefaultCapacity is the number of rooms cached when Config.Capacity
// is zero.
const DefaultCapacity = 256

// Handle is a mentionable role in one room.
type Handle struct {
	// Title is the role's display title as stored in the room.
	Title string

	// Members are the users a mention of this role notifies.
	Members []ref.UserID
}

// Mention is the text form of a handle: "@Title".
func (h Handle) Mention() string { return "@" + h.Title }

// Source looks up role handles from the authoritative room data.
type Source interface {
	// LookupRole returns the handle whose title matches title
	// case-insensitively. found is false when the room has no such
	// role.
	LookupRole(ctx context.Context, roomID ref.RoomID, title string) (handle Handle, found bool, err error)
}

// Observer receives cache statistics. *metrics.Metrics implements it.
type Observer interface {
	ObserveLookup(result string)
	ObserveEviction()
}

// Config configures a Resolver.
type Config struct {
	Source   Source
	Capacity int
	Observer Observer
	Logger   *slog.Logger
}

type entry struct {
	handle Handle
	found  bool
}

type roomCache struct {
	titles     map[string]entry
	generation uint64
}

// Resolver is a capped per-room cache of role handles.
type Resolver struct {
	source   Source
	observer Observer
	logger   *slog.Logger

	mu    sync.Mutex
	rooms *simplelru.LRU[ref.RoomID, *roomCache]
}

// New creates a Resolver.
func New(config Config) (*Resolver, error) {
	if config.Source == nil {
		return nil, errors.New("roleresolver: Source is required")
	}
	if config.Capacity < 0 {
		return nil, fmt.Errorf("roleresolver: Capacity must not be negative, got %d", config.Capacity)
	}
	capacity := config.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rooms, err := simplelru.NewLRU[ref.RoomID, *roomCache](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("roleresolver: %w", err)
	}
	return &Resolver{
		source:   config.Source,
		observer: config.Observer,
		logger:   logger,
		rooms:    rooms,
	}, nil
}

func cacheKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Resolve returns the handle for title in roomID. found is false when
// the room has no role with that title.
func (r *Resolver) Resolve(ctx context.Context, roomID ref.RoomID, title string) (Handle, bool, error) {
	key := cacheKey(title)

	r.mu.Lock()
	cache := r.touchLocked(roomID)
	if cached, ok := cache.titles[key]; ok {
		r.mu.Unlock()
		r.observe("hit")
		return cached.handle, cached.found, nil
	}
	generation := cache.generation
	r.mu.Unlock()

	handle, found, err := r.source.LookupRole(ctx, roomID, title)
	if err != nil {
		r.observe("error")
		return Handle{}, false, fmt.Errorf("roleresolver: looking up %q in %s: %w", title, roomID, err)
	}
	r.observe("miss")

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.rooms.Peek(roomID)
	if ok && current == cache && current.generation == generation {
		current.titles[key] = entry{handle: handle, found: found}
	}
	return handle, found, nil
}

// Mentions resolves the title of every key in set, in display order.
// A role that cannot be resolved falls back to a plain "@Title"
// handle with no members, so a lookup failure degrades the text but
// never fails the caller.
func (r *Resolver) Mentions(ctx context.Context, roomID ref.RoomID, set role.Set) []Handle {
	keys := set.Keys()
	handles := make([]Handle, 0, len(keys))
	for _, key := range keys {
		handle, found, err := r.Resolve(ctx, roomID, key.Title())
		if err != nil {
			r.logger.Warn("role lookup failed, using plain mention",
				"room_id", roomID,
				"role", key,
				"error", err,
			)
		}
		if err != nil || !found {
			handle = Handle{Title: key.Title()}
		}
		handles = append(handles, handle)
	}
	return handles
}

// InvalidateTitle drops the cached entry for title in roomID. Call it
// when a role with that title is created, renamed, or deleted.
func (r *Resolver) InvalidateTitle(roomID ref.RoomID, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cache, ok := r.rooms.Peek(roomID)
	if !ok {
		return
	}
	delete(cache.titles, cacheKey(title))
	cache.generation++
}

// InvalidateRoom drops every cached entry for roomID.
func (r *Resolver) InvalidateRoom(roomID ref.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms.Remove(roomID)
}

// Len returns the number of cached rooms.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms.Len()
}

// touchLocked returns the cache for roomID, creating it and evicting
// the least recently used room if needed. Caller holds r.mu.
func (r *Resolver) touchLocked(roomID ref.RoomID) *roomCache {
	if cache, ok := r.rooms.Get(roomID); ok {
		return cache
	}
	cache := &roomCache{titles: make(map[string]entry)}
	if evicted := r.rooms.Add(roomID, cache); evicted && r.observer != nil {
		r.observer.ObserveEviction()
	}
	return cache
}

func (r *Resolver) observe(result string) {
	if r.observer != nil {
		r.observer.ObserveLookup(result)
	}
}
