// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/roleresolver"
	"github.com/partycrusher/partycrusher/messaging"
)

// EventTypeRole is the room state event defining a mentionable role.
// The state key is the role's display title.
const EventTypeRole ref.EventType = "dev.partycrusher.role"

// RoleContent is the content of an EventTypeRole state event. Empty
// content (after a redaction or an explicit delete) means the role no
// longer exists.
type RoleContent struct {
	Members []string `json:"members"`
}

// RoleSource reads role handles from room state. It implements
// roleresolver.Source.
type RoleSource struct {
	session messaging.Session
	logger  *slog.Logger
}

var _ roleresolver.Source = (*RoleSource)(nil)

// NewRoleSource creates a RoleSource. A nil logger uses slog.Default.
func NewRoleSource(session messaging.Session, logger *slog.Logger) *RoleSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleSource{session: session, logger: logger}
}

// LookupRole fetches the role titled title from roomID's state. The
// state key is tried verbatim first; a miss falls back to scanning the
// room's role events for a case-insensitive title match.
func (s *RoleSource) LookupRole(ctx context.Context, roomID ref.RoomID, title string) (roleresolver.Handle, bool, error) {
	raw, err := s.session.GetStateEvent(ctx, roomID, EventTypeRole, title)
	switch {
	case err == nil && !isEmptyContent(raw):
		var content RoleContent
		if err := json.Unmarshal(raw, &content); err != nil {
			return roleresolver.Handle{}, false, fmt.Errorf("lfgmatrix: decoding role %q in %s: %w", title, roomID, err)
		}
		return s.handle(roomID, title, content), true, nil
	case err != nil && !messaging.IsMatrixError(err, messaging.ErrCodeNotFound):
		return roleresolver.Handle{}, false, err
	}

	events, err := s.session.GetRoomState(ctx, roomID)
	if err != nil {
		return roleresolver.Handle{}, false, err
	}
	for _, event := range events {
		if event.Type != EventTypeRole || len(event.Content) == 0 {
			continue
		}
		stateTitle, err := roleTitle(event)
		if err != nil || !strings.EqualFold(stateTitle, title) {
			continue
		}
		content, err := messaging.DecodeContent[RoleContent](event)
		if err != nil {
			return roleresolver.Handle{}, false, fmt.Errorf("lfgmatrix: decoding role %q in %s: %w", stateTitle, roomID, err)
		}
		return s.handle(roomID, stateTitle, content), true, nil
	}
	return roleresolver.Handle{}, false, nil
}

func (s *RoleSource) handle(roomID ref.RoomID, title string, content RoleContent) roleresolver.Handle {
	handle := roleresolver.Handle{Title: title}
	for _, member := range content.Members {
		userID, err := ref.ParseUserID(member)
		if err != nil {
			s.logger.Warn("skipping invalid role member",
				"room_id", roomID,
				"role", title,
				"member", member,
				"error", err,
			)
			continue
		}
		handle.Members = append(handle.Members, userID)
	}
	return handle
}

func isEmptyContent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}")) || bytes.Equal(trimmed, []byte("null"))
}

// errNoStateKey is returned for role events delivered without a state
// key, which cannot be attributed to a title.
var errNoStateKey = errors.New("role event has no state key")

// roleTitle returns the title a role state event is about.
func roleTitle(event messaging.Event) (string, error) {
	if event.StateKey == nil {
		return "", errNoStateKey
	}
	return *event.StateKey, nil
}
