// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"context"
	"log/slog"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/messaging"
)

// EventTypeCommands is the room state event advertising the bot's
// command set to clients. The state key is empty.
const EventTypeCommands ref.EventType = "dev.partycrusher.commands"

// CatalogueContent is the content of an EventTypeCommands event.
type CatalogueContent struct {
	Prefix   string        `json:"prefix"`
	Commands []CommandSpec `json:"commands"`
}

// NewCatalogue returns the catalogue for prefix.
func NewCatalogue(prefix string) CatalogueContent {
	return CatalogueContent{Prefix: prefix, Commands: Commands}
}

// PublishCatalogue writes the command catalogue to every room. A room
// that rejects the write (typically for lack of power level) is
// logged and skipped. Returns the number of rooms written.
func PublishCatalogue(ctx context.Context, session messaging.Session, rooms []ref.RoomID, prefix string, logger *slog.Logger) int {
	content := NewCatalogue(prefix)
	published := 0
	for _, roomID := range rooms {
		if _, err := session.SendStateEvent(ctx, roomID, EventTypeCommands, "", content); err != nil {
			logger.Warn("publishing command catalogue failed",
				"room_id", roomID,
				"error", err,
			)
			continue
		}
		published++
	}
	logger.Info("command catalogue published", "rooms", published, "prefix", prefix)
	return published
}
