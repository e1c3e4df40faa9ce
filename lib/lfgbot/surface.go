// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgbot

import (
	"context"
	"errors"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/render"
)

// ErrMessageGone is wrapped by Surface errors when the message being
// edited or removed no longer exists.
var ErrMessageGone = errors.New("lfgbot: message no longer exists")

// Surface is where listings are displayed and actors are answered.
type Surface interface {
	// Publish posts view as a new public message and returns its ID.
	Publish(ctx context.Context, roomID ref.RoomID, view render.View) (ref.EventID, error)

	// Update replaces the published message with view.
	Update(ctx context.Context, roomID ref.RoomID, message ref.EventID, view render.View) error

	// Notify sends text visible to actor.User only, in reply to
	// actor.Event when set, and returns the notice's ID.
	Notify(ctx context.Context, actor Actor, text string) (ref.EventID, error)

	// Discard removes a notice sent earlier.
	Discard(ctx context.Context, roomID ref.RoomID, message ref.EventID) error
}

// Actor identifies who triggered an action and where.
type Actor struct {
	Room ref.RoomID
	User ref.UserID
	// Event is the triggering event. Acknowledgements reply to it.
	Event ref.EventID
}

// Target names a listing. Message takes precedence over ShortID. With
// neither, the listing is inferred from the room (see Bot.find).
type Target struct {
	// Message is the listing's published message.
	Message ref.EventID
	// ShortID is a prefix of the listing ID, as shown after '#'.
	ShortID string
}

// IsZero reports whether the target names nothing.
func (t Target) IsZero() bool { return t.Message.IsZero() && t.ShortID == "" }
