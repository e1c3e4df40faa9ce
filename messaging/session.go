// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/partycrusher/partycrusher/lib/ref"
)

// Session is the set of Matrix operations the bot performs.
// *DirectSession is the production implementation; tests substitute
// an in-memory fake.
type Session interface {
	// UserID returns the bot's fully-qualified Matrix user ID.
	UserID() ref.UserID

	// WhoAmI validates the session and returns the user ID.
	WhoAmI(ctx context.Context) (ref.UserID, error)

	// SendMessage sends an m.room.message event. Returns the event ID.
	SendMessage(ctx context.Context, roomID ref.RoomID, content MessageContent) (ref.EventID, error)

	// EditMessage replaces the content of a previously sent message.
	EditMessage(ctx context.Context, roomID ref.RoomID, original ref.EventID, replacement MessageContent) (ref.EventID, error)

	// SendReaction annotates target with key.
	SendReaction(ctx context.Context, roomID ref.RoomID, target ref.EventID, key string) (ref.EventID, error)

	// Redact removes the content of an event.
	Redact(ctx context.Context, roomID ref.RoomID, eventID ref.EventID, reason string) error

	// SendStateEvent sets a state event. Returns the event ID.
	SendStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string, content any) (ref.EventID, error)

	// GetStateEvent fetches one state event's content.
	GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (json.RawMessage, error)

	// GetRoomState fetches every current state event in a room.
	GetRoomState(ctx context.Context, roomID ref.RoomID) ([]Event, error)

	// JoinRoom joins a room by ID.
	JoinRoom(ctx context.Context, roomID ref.RoomID) (ref.RoomID, error)

	// JoinedRooms lists the rooms the bot has joined.
	JoinedRooms(ctx context.Context) ([]ref.RoomID, error)

	// Sync performs an incremental sync with the homeserver.
	Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error)
}

var _ Session = (*DirectSession)(nil)

// GetState reads a typed state event:
//
//	handle, err := messaging.GetState[RoleContent](ctx, session, roomID, EventTypeRole, "Tank")
func GetState[T any](ctx context.Context, session Session, roomID ref.RoomID, eventType ref.EventType, stateKey string) (T, error) {
	var zero T
	content, err := session.GetStateEvent(ctx, roomID, eventType, stateKey)
	if err != nil {
		return zero, fmt.Errorf("reading %s[%q] from room %s: %w", eventType, stateKey, roomID, err)
	}
	var result T
	if err := json.Unmarshal(content, &result); err != nil {
		return zero, fmt.Errorf("unmarshaling %s from room %s: %w", eventType, roomID, err)
	}
	return result, nil
}
