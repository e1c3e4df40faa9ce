// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package roleresolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
	"github.com/partycrusher/partycrusher/lib/testutil"
)

// fakeSource serves handles from a map keyed by room then lowercase
// title, and counts lookups.
type fakeSource struct {
	mu      sync.Mutex
	handles map[ref.RoomID]map[string]Handle
	calls   int
	err     error

	// gate, when non-nil, is received from before each lookup returns.
	gate chan struct{}
	// entered, when non-nil, is sent to when a lookup starts.
	entered chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{handles: make(map[ref.RoomID]map[string]Handle)}
}

func (s *fakeSource) set(roomID ref.RoomID, handle Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handles[roomID] == nil {
		s.handles[roomID] = make(map[string]Handle)
	}
	s.handles[roomID][strings.ToLower(handle.Title)] = handle
}

func (s *fakeSource) remove(roomID ref.RoomID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handles[roomID], strings.ToLower(title))
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeSource) LookupRole(_ context.Context, roomID ref.RoomID, title string) (Handle, bool, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return Handle{}, false, s.err
	}
	handle, ok := s.handles[roomID][strings.ToLower(title)]
	return handle, ok, nil
}

type countingObserver struct {
	mu        sync.Mutex
	results   map[string]int
	evictions int
}

func (o *countingObserver) ObserveLookup(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.results == nil {
		o.results = make(map[string]int)
	}
	o.results[result]++
}

func (o *countingObserver) ObserveEviction() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evictions++
}

func newTestResolver(t *testing.T, source Source, capacity int, observer Observer) *Resolver {
	t.Helper()
	resolver, err := New(Config{Source: source, Capacity: capacity, Observer: observer})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return resolver
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without Source")
	}
	if _, err := New(Config{Source: newFakeSource(), Capacity: -1}); err == nil {
		t.Fatal("expected error for negative capacity")
	}
}

func TestResolveCachesHitsAndMisses(t *testing.T) {
	source := newFakeSource()
	room := testutil.RoomID()
	tank := Handle{Title: "Tank", Members: []ref.UserID{testutil.UserID("ada")}}
	source.set(room, tank)
	observer := &countingObserver{}
	resolver := newTestResolver(t, source, 0, observer)
	ctx := context.Background()

	for range 3 {
		handle, found, err := resolver.Resolve(ctx, room, "tank")
		if err != nil || !found {
			t.Fatalf("Resolve(tank) = %v, %v, %v", handle, found, err)
		}
		if handle.Title != "Tank" || len(handle.Members) != 1 {
			t.Errorf("handle = %+v", handle)
		}
	}
	if source.callCount() != 1 {
		t.Errorf("source called %d times, want 1", source.callCount())
	}

	// Absent roles are cached too.
	for range 2 {
		if _, found, err := resolver.Resolve(ctx, room, "Healer"); err != nil || found {
			t.Fatalf("Resolve(Healer) found=%v err=%v", found, err)
		}
	}
	if source.callCount() != 2 {
		t.Errorf("source called %d times, want 2", source.callCount())
	}
	if observer.results["hit"] != 3 || observer.results["miss"] != 2 {
		t.Errorf("observer results = %v", observer.results)
	}
}

func TestInvalidateTitle(t *testing.T) {
	source := newFakeSource()
	room := testutil.RoomID()
	source.set(room, Handle{Title: "Healer"})
	resolver := newTestResolver(t, source, 0, nil)
	ctx := context.Background()

	if _, found, _ := resolver.Resolve(ctx, room, "Healer"); !found {
		t.Fatal("Healer should resolve")
	}

	// Delete, then invalidate: the next lookup sees the deletion.
	source.remove(room, "Healer")
	if _, found, _ := resolver.Resolve(ctx, room, "Healer"); !found {
		t.Fatal("stale cache entry should still answer before invalidation")
	}
	resolver.InvalidateTitle(room, "HEALER")
	if _, found, _ := resolver.Resolve(ctx, room, "Healer"); found {
		t.Fatal("Healer should be gone after invalidation")
	}

	// Create after a cached negative: invalidation picks it up.
	source.set(room, Handle{Title: "Healer", Members: []ref.UserID{testutil.UserID("grace")}})
	resolver.InvalidateTitle(room, "Healer")
	handle, found, _ := resolver.Resolve(ctx, room, "Healer")
	if !found || len(handle.Members) != 1 {
		t.Fatalf("Resolve after create = %+v, %v", handle, found)
	}

	// Invalidating an uncached room is harmless.
	resolver.InvalidateTitle(testutil.RoomID(), "Tank")
}

func TestInvalidateRoom(t *testing.T) {
	source := newFakeSource()
	room := testutil.RoomID()
	source.set(room, Handle{Title: "Tank"})
	resolver := newTestResolver(t, source, 0, nil)
	ctx := context.Background()

	resolver.Resolve(ctx, room, "Tank")
	resolver.InvalidateRoom(room)
	if resolver.Len() != 0 {
		t.Fatalf("Len() = %d after InvalidateRoom", resolver.Len())
	}
	resolver.Resolve(ctx, room, "Tank")
	if source.callCount() != 2 {
		t.Errorf("source called %d times, want 2", source.callCount())
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	source := newFakeSource()
	observer := &countingObserver{}
	resolver := newTestResolver(t, source, 2, observer)
	ctx := context.Background()

	first, second, third := testutil.RoomID(), testutil.RoomID(), testutil.RoomID()
	resolver.Resolve(ctx, first, "Tank")
	resolver.Resolve(ctx, second, "Tank")
	// Touch first so second becomes the eviction candidate.
	resolver.Resolve(ctx, first, "Tank")
	resolver.Resolve(ctx, third, "Tank")

	if resolver.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", resolver.Len())
	}
	if observer.evictions != 1 {
		t.Errorf("evictions = %d, want 1", observer.evictions)
	}

	calls := source.callCount()
	resolver.Resolve(ctx, first, "Tank")
	if source.callCount() != calls {
		t.Error("first room should still be cached")
	}
	resolver.Resolve(ctx, second, "Tank")
	if source.callCount() != calls+1 {
		t.Error("second room should have been evicted")
	}
}

func TestResolveErrorIsNotCached(t *testing.T) {
	source := newFakeSource()
	source.err = errors.New("homeserver unavailable")
	room := testutil.RoomID()
	observer := &countingObserver{}
	resolver := newTestResolver(t, source, 0, observer)
	ctx := context.Background()

	if _, _, err := resolver.Resolve(ctx, room, "Tank"); err == nil {
		t.Fatal("expected error")
	}
	source.mu.Lock()
	source.err = nil
	source.mu.Unlock()
	source.set(room, Handle{Title: "Tank"})

	if _, found, err := resolver.Resolve(ctx, room, "Tank"); err != nil || !found {
		t.Fatalf("Resolve after recovery: found=%v err=%v", found, err)
	}
	if observer.results["error"] != 1 {
		t.Errorf("observer results = %v", observer.results)
	}
}

func TestInvalidationWinsOverInflightLookup(t *testing.T) {
	source := newFakeSource()
	room := testutil.RoomID()
	source.set(room, Handle{Title: "Tank"})
	source.gate = make(chan struct{})
	source.entered = make(chan struct{}, 1)
	resolver := newTestResolver(t, source, 0, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		resolver.Resolve(ctx, room, "Tank")
	}()

	testutil.RequireReceive(t, source.entered, 5*time.Second, "lookup did not start")
	// The role is deleted while the lookup is in flight.
	resolver.InvalidateTitle(room, "Tank")
	source.gate <- struct{}{}
	testutil.RequireClosed(t, done, 5*time.Second, "lookup did not finish")

	// The in-flight result was discarded, so the next lookup queries again.
	source.gate = nil
	source.entered = nil
	resolver.Resolve(ctx, room, "Tank")
	if source.callCount() != 2 {
		t.Errorf("source called %d times, want 2", source.callCount())
	}
}

func TestMentions(t *testing.T) {
	source := newFakeSource()
	room := testutil.RoomID()
	healers := []ref.UserID{testutil.UserID("mercy")}
	source.set(room, Handle{Title: "Healer", Members: healers})
	resolver := newTestResolver(t, source, 0, nil)

	handles := resolver.Mentions(context.Background(), room, role.NewSet(role.RangedDPS, role.Healer))
	if len(handles) != 2 {
		t.Fatalf("Mentions returned %d handles, want 2", len(handles))
	}
	if handles[0].Mention() != "@Healer" || len(handles[0].Members) != 1 {
		t.Errorf("handles[0] = %+v", handles[0])
	}
	if handles[1].Mention() != "@Ranged DPS" || len(handles[1].Members) != 0 {
		t.Errorf("handles[1] = %+v, want plain fallback", handles[1])
	}
}

func TestMentionsFallsBackOnError(t *testing.T) {
	source := newFakeSource()
	source.err = errors.New("forbidden")
	resolver := newTestResolver(t, source, 0, nil)

	handles := resolver.Mentions(context.Background(), testutil.RoomID(), role.NewSet(role.Tank))
	if len(handles) != 1 || handles[0].Mention() != "@Tank" {
		t.Fatalf("handles = %+v", handles)
	}
}
