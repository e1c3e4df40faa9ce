// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgbot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/render"
)

type publishedView struct {
	room    ref.RoomID
	message ref.EventID
	view    render.View
}

type notice struct {
	actor Actor
	text  string
	id    ref.EventID
}

// fakeSurface records every call. Errors set on it are returned by the
// matching method until cleared.
type fakeSurface struct {
	mu sync.Mutex

	next      int
	published []publishedView
	updates   []publishedView
	notices   []notice
	discarded []ref.EventID

	publishErr error
	updateErr  error
}

func (s *fakeSurface) eventID() ref.EventID {
	s.next++
	return ref.MustParseEventID(fmt.Sprintf("$event%d", s.next))
}

func (s *fakeSurface) Publish(_ context.Context, roomID ref.RoomID, view render.View) (ref.EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return ref.EventID{}, s.publishErr
	}
	id := s.eventID()
	s.published = append(s.published, publishedView{room: roomID, message: id, view: view})
	return id, nil
}

func (s *fakeSurface) Update(_ context.Context, roomID ref.RoomID, message ref.EventID, view render.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, publishedView{room: roomID, message: message, view: view})
	return nil
}

func (s *fakeSurface) Notify(_ context.Context, actor Actor, text string) (ref.EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.eventID()
	s.notices = append(s.notices, notice{actor: actor, text: text, id: id})
	return id, nil
}

func (s *fakeSurface) Discard(_ context.Context, _ ref.RoomID, message ref.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discarded = append(s.discarded, message)
	return nil
}

func (s *fakeSurface) setUpdateErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErr = err
}

func (s *fakeSurface) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *fakeSurface) lastUpdate(t *testing.T) render.View {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		t.Fatal("no update was pushed")
	}
	return s.updates[len(s.updates)-1].view
}

func (s *fakeSurface) lastNotice(t *testing.T) notice {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notices) == 0 {
		t.Fatal("no notice was sent")
	}
	return s.notices[len(s.notices)-1]
}

func (s *fakeSurface) wasDiscarded(message ref.EventID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, discarded := range s.discarded {
		if discarded == message {
			return true
		}
	}
	return false
}

func assertNotice(t *testing.T, surface *fakeSurface, user ref.UserID, contains string) {
	t.Helper()
	last := surface.lastNotice(t)
	if last.actor.User != user {
		t.Errorf("notice sent to %s, want %s", last.actor.User, user)
	}
	if !strings.Contains(last.text, contains) {
		t.Errorf("notice = %q, want it to contain %q", last.text, contains)
	}
}
