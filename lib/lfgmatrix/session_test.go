// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/messaging"
)

var botUserID = ref.MustParseUserID("@partycrusher:example.org")

type sentMessage struct {
	room    ref.RoomID
	content messaging.MessageContent
}

type sentReaction struct {
	room   ref.RoomID
	target ref.EventID
	key    string
}

type stateKey struct {
	room      ref.RoomID
	eventType ref.EventType
	key       string
}

// fakeSession is an in-memory messaging.Session. Room state is keyed
// by (room, type, state key) and holds raw JSON content.
type fakeSession struct {
	mu        sync.Mutex
	nextEvent int

	messages  []sentMessage
	edits     []sentMessage
	reactions []sentReaction
	redacted  []ref.EventID
	joined    []ref.RoomID
	state     map[stateKey]json.RawMessage

	// Errors returned by the matching calls, when set.
	sendErr   error
	editErr   error
	stateErr  error
	redactErr error
	joinErr   error
}

var _ messaging.Session = (*fakeSession)(nil)

func newFakeSession() *fakeSession {
	return &fakeSession{state: make(map[stateKey]json.RawMessage)}
}

func notFound() error {
	return &messaging.MatrixError{Code: messaging.ErrCodeNotFound, Message: "Event not found", StatusCode: 404}
}

func (s *fakeSession) eventIDLocked() ref.EventID {
	s.nextEvent++
	return ref.MustParseEventID(fmt.Sprintf("$sent%d", s.nextEvent))
}

func (s *fakeSession) setState(room ref.RoomID, eventType ref.EventType, key string, content any) {
	data, err := json.Marshal(content)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[stateKey{room, eventType, key}] = data
}

func (s *fakeSession) UserID() ref.UserID { return botUserID }

func (s *fakeSession) WhoAmI(ctx context.Context) (ref.UserID, error) { return botUserID, nil }

func (s *fakeSession) SendMessage(ctx context.Context, roomID ref.RoomID, content messaging.MessageContent) (ref.EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return ref.EventID{}, s.sendErr
	}
	s.messages = append(s.messages, sentMessage{roomID, content})
	return s.eventIDLocked(), nil
}

func (s *fakeSession) EditMessage(ctx context.Context, roomID ref.RoomID, original ref.EventID, replacement messaging.MessageContent) (ref.EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editErr != nil {
		return ref.EventID{}, s.editErr
	}
	s.edits = append(s.edits, sentMessage{roomID, messaging.NewEdit(original, replacement)})
	return s.eventIDLocked(), nil
}

func (s *fakeSession) SendReaction(ctx context.Context, roomID ref.RoomID, target ref.EventID, key string) (ref.EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = append(s.reactions, sentReaction{roomID, target, key})
	return s.eventIDLocked(), nil
}

func (s *fakeSession) Redact(ctx context.Context, roomID ref.RoomID, eventID ref.EventID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.redactErr != nil {
		return s.redactErr
	}
	s.redacted = append(s.redacted, eventID)
	return nil
}

func (s *fakeSession) SendStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, key string, content any) (ref.EventID, error) {
	s.mu.Lock()
	stateErr := s.stateErr
	s.mu.Unlock()
	if stateErr != nil {
		return ref.EventID{}, stateErr
	}
	s.setState(roomID, eventType, key, content)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventIDLocked(), nil
}

func (s *fakeSession) GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	content, ok := s.state[stateKey{roomID, eventType, key}]
	if !ok {
		return nil, notFound()
	}
	return content, nil
}

func (s *fakeSession) GetRoomState(ctx context.Context, roomID ref.RoomID) ([]messaging.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	var events []messaging.Event
	for key, raw := range s.state {
		if key.room != roomID {
			continue
		}
		var content map[string]any
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, err
		}
		keyCopy := key.key
		events = append(events, messaging.Event{
			Type:     key.eventType,
			RoomID:   roomID,
			StateKey: &keyCopy,
			Content:  content,
		})
	}
	return events, nil
}

func (s *fakeSession) JoinRoom(ctx context.Context, roomID ref.RoomID) (ref.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joinErr != nil {
		return ref.RoomID{}, s.joinErr
	}
	s.joined = append(s.joined, roomID)
	return roomID, nil
}

func (s *fakeSession) JoinedRooms(ctx context.Context) ([]ref.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ref.RoomID(nil), s.joined...), nil
}

func (s *fakeSession) Sync(ctx context.Context, options messaging.SyncOptions) (*messaging.SyncResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *fakeSession) sentMessages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.messages...)
}

func (s *fakeSession) sentReactions() []sentReaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentReaction(nil), s.reactions...)
}

func (s *fakeSession) lastMessage() (sentMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return sentMessage{}, false
	}
	return s.messages[len(s.messages)-1], true
}
