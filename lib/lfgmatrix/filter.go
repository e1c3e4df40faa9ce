// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"encoding/json"

	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/messaging"
)

// SyncFilter restricts /sync to the events the bot acts on: commands,
// reactions, redactions, and role definitions.
var SyncFilter = buildSyncFilter()

// buildSyncFilter constructs the inline filter JSON from the typed
// event constants so a renamed type cannot silently drop out.
//
// Role events are listed in both sections because state changes made
// during incremental sync arrive in the timeline with a state_key.
func buildSyncFilter() string {
	stateEventTypes := []ref.EventType{
		EventTypeRole,
	}
	timelineEventTypes := []ref.EventType{
		messaging.EventTypeMessage,
		messaging.EventTypeReaction,
		messaging.EventTypeRedaction,
		EventTypeRole,
	}

	emptyTypes := []string{}

	filter := map[string]any{
		"room": map[string]any{
			"state": map[string]any{
				"types": stateEventTypes,
			},
			"timeline": map[string]any{
				"types": timelineEventTypes,
				"limit": 50,
			},
			"ephemeral": map[string]any{
				"types": emptyTypes,
			},
			"account_data": map[string]any{
				"types": emptyTypes,
			},
		},
		"presence": map[string]any{
			"types": emptyTypes,
		},
		"account_data": map[string]any{
			"types": emptyTypes,
		},
	}

	data, err := json.Marshal(filter)
	if err != nil {
		panic("building sync filter: " + err.Error())
	}
	return string(data)
}
