// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/partycrusher/partycrusher/lib/ref"
)

func TestSyncFilter(t *testing.T) {
	var filter struct {
		Room struct {
			State struct {
				Types []string `json:"types"`
			} `json:"state"`
			Timeline struct {
				Types []string `json:"types"`
				Limit int      `json:"limit"`
			} `json:"timeline"`
			Ephemeral struct {
				Types []string `json:"types"`
			} `json:"ephemeral"`
		} `json:"room"`
		Presence struct {
			Types []string `json:"types"`
		} `json:"presence"`
	}
	if err := json.Unmarshal([]byte(SyncFilter), &filter); err != nil {
		t.Fatalf("filter is not valid JSON: %v", err)
	}

	if !slices.Equal(filter.Room.State.Types, []string{string(EventTypeRole)}) {
		t.Errorf("state types = %v", filter.Room.State.Types)
	}
	for _, want := range []string{"m.room.message", "m.reaction", "m.room.redaction", string(EventTypeRole)} {
		if !slices.Contains(filter.Room.Timeline.Types, want) {
			t.Errorf("timeline types %v lack %s", filter.Room.Timeline.Types, want)
		}
	}
	if filter.Room.Timeline.Limit <= 0 {
		t.Errorf("timeline limit = %d", filter.Room.Timeline.Limit)
	}
	if filter.Room.Ephemeral.Types == nil || len(filter.Room.Ephemeral.Types) != 0 {
		t.Errorf("ephemeral types = %v, want an explicit empty list", filter.Room.Ephemeral.Types)
	}
	if filter.Presence.Types == nil || len(filter.Presence.Types) != 0 {
		t.Errorf("presence types = %v, want an explicit empty list", filter.Presence.Types)
	}
}

func TestPublishCatalogue_SkipsFailures(t *testing.T) {
	session := newFakeSession()
	rooms := []ref.RoomID{testRoom, otherRoom}

	if published := PublishCatalogue(context.Background(), session, rooms, "!party", slog.Default()); published != 2 {
		t.Fatalf("published to %d rooms, want 2", published)
	}
	var catalogue CatalogueContent
	raw, err := session.GetStateEvent(context.Background(), otherRoom, EventTypeCommands, "")
	if err != nil {
		t.Fatalf("GetStateEvent: %v", err)
	}
	if err := json.Unmarshal(raw, &catalogue); err != nil {
		t.Fatalf("decoding catalogue: %v", err)
	}
	if catalogue.Prefix != "!party" || catalogue.Commands[0].Verb != VerbCreate {
		t.Errorf("catalogue = %+v", catalogue)
	}

	session.stateErr = errors.New("M_FORBIDDEN")
	if published := PublishCatalogue(context.Background(), session, rooms, "!party", slog.Default()); published != 0 {
		t.Errorf("published to %d rooms with every write failing", published)
	}
}
