// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/partycrusher/partycrusher/lib/ref"
)

// Message types and relation types used by the bot.
const (
	MsgTypeText   = "m.text"
	MsgTypeNotice = "m.notice"

	RelTypeReplace    = "m.replace"
	RelTypeThread     = "m.thread"
	RelTypeAnnotation = "m.annotation"

	// FormatHTML is the only formatted_body format Matrix defines.
	FormatHTML = "org.matrix.custom.html"
)

// Timeline event types.
const (
	EventTypeMessage   ref.EventType = "m.room.message"
	EventTypeReaction  ref.EventType = "m.reaction"
	EventTypeRedaction ref.EventType = "m.room.redaction"
	EventTypeMember    ref.EventType = "m.room.member"
)

// AuthResponse is returned by Login.
type AuthResponse struct {
	UserID      ref.UserID `json:"user_id"`
	AccessToken string     `json:"access_token"`
	DeviceID    string     `json:"device_id"`
}

// LoginRequest is the request body for password login.
type LoginRequest struct {
	Type                     string `json:"type"`
	User                     string `json:"user"`
	Password                 string `json:"password"`
	InitialDeviceDisplayName string `json:"initial_device_display_name,omitempty"`
}

// MessageContent is the content of an m.room.message event.
//
// FormattedBody carries the HTML rendering when Format is FormatHTML;
// Body is always the plain-text fallback. NewContent is set only on
// edits (RelatesTo.RelType == RelTypeReplace) and carries the
// replacement content that clients display.
type MessageContent struct {
	MsgType       string          `json:"msgtype"`
	Body          string          `json:"body"`
	Format        string          `json:"format,omitempty"`
	FormattedBody string          `json:"formatted_body,omitempty"`
	Mentions      *Mentions       `json:"m.mentions,omitempty"`
	RelatesTo     *RelatesTo      `json:"m.relates_to,omitempty"`
	NewContent    *MessageContent `json:"m.new_content,omitempty"`
}

// Mentions lists the users a message pings.
type Mentions struct {
	UserIDs []string `json:"user_ids,omitempty"`
}

// RelatesTo expresses a relationship to another event. A plain reply
// sets only InReplyTo. Annotations (reactions) set Key.
type RelatesTo struct {
	RelType       string      `json:"rel_type,omitempty"`
	EventID       ref.EventID `json:"event_id,omitzero"`
	Key           string      `json:"key,omitempty"`
	IsFallingBack bool        `json:"is_falling_back,omitempty"`
	InReplyTo     *InReplyTo  `json:"m.in_reply_to,omitempty"`
}

// InReplyTo references the event being replied to.
type InReplyTo struct {
	EventID ref.EventID `json:"event_id"`
}

// NewTextMessage creates a plain text message.
func NewTextMessage(body string) MessageContent {
	return MessageContent{
		MsgType: MsgTypeText,
		Body:    body,
	}
}

// NewHTMLMessage creates a message with a plain-text body and an HTML
// formatted_body.
func NewHTMLMessage(body, formattedBody string) MessageContent {
	return MessageContent{
		MsgType:       MsgTypeText,
		Body:          body,
		Format:        FormatHTML,
		FormattedBody: formattedBody,
	}
}

// NewThreadReply creates a message that replies within the thread
// rooted at threadRootID.
func NewThreadReply(threadRootID ref.EventID, body string) MessageContent {
	return MessageContent{
		MsgType: MsgTypeText,
		Body:    body,
		RelatesTo: &RelatesTo{
			RelType:       RelTypeThread,
			EventID:       threadRootID,
			IsFallingBack: true,
			InReplyTo: &InReplyTo{
				EventID: threadRootID,
			},
		},
	}
}

// NewEdit wraps replacement content as an m.replace edit of original.
// The outer body is the "* "-prefixed fallback clients without edit
// support display.
func NewEdit(original ref.EventID, replacement MessageContent) MessageContent {
	inner := replacement
	inner.RelatesTo = nil
	inner.NewContent = nil

	edit := MessageContent{
		MsgType:    inner.MsgType,
		Body:       "* " + inner.Body,
		Mentions:   inner.Mentions,
		NewContent: &inner,
		RelatesTo: &RelatesTo{
			RelType: RelTypeReplace,
			EventID: original,
		},
	}
	if inner.Format != "" {
		edit.Format = inner.Format
		edit.FormattedBody = "* " + inner.FormattedBody
	}
	return edit
}

// ReactionContent is the content of an m.reaction event.
type ReactionContent struct {
	RelatesTo RelatesTo `json:"m.relates_to"`
}

// RedactRequest is the body of a redaction.
type RedactRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Event is a Matrix event as delivered by /sync or the state API.
type Event struct {
	EventID        ref.EventID    `json:"event_id"`
	Type           ref.EventType  `json:"type"`
	Sender         ref.UserID     `json:"sender"`
	OriginServerTS int64          `json:"origin_server_ts"`
	Content        map[string]any `json:"content"`
	RoomID         ref.RoomID     `json:"room_id,omitzero"`
	StateKey       *string        `json:"state_key,omitempty"`
	Redacts        ref.EventID    `json:"redacts,omitzero"`
	Unsigned       *EventUnsigned `json:"unsigned,omitempty"`
}

// EventUnsigned holds optional unsigned data attached to events.
type EventUnsigned struct {
	Age           int64  `json:"age,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// DecodeContent re-encodes an event's content map into T.
//
//	message, err := messaging.DecodeContent[messaging.MessageContent](event)
func DecodeContent[T any](event Event) (T, error) {
	var result T
	encoded, err := json.Marshal(event.Content)
	if err != nil {
		return result, fmt.Errorf("messaging: re-encoding %s content: %w", event.Type, err)
	}
	if err := json.Unmarshal(encoded, &result); err != nil {
		return result, fmt.Errorf("messaging: decoding %s content: %w", event.Type, err)
	}
	return result, nil
}

// SyncOptions controls the behavior of the /sync endpoint.
type SyncOptions struct {
	Since      string // next_batch token from previous sync; empty for initial sync
	Timeout    int    // long-poll timeout in milliseconds
	SetTimeout bool   // send the timeout parameter even when zero
	Filter     string // filter ID or inline JSON filter
}

// SyncResponse is the top-level response from /sync.
type SyncResponse struct {
	NextBatch string       `json:"next_batch"`
	Rooms     RoomsSection `json:"rooms"`
}

// RoomsSection contains per-room sync data grouped by membership.
type RoomsSection struct {
	Join   map[ref.RoomID]JoinedRoom  `json:"join,omitempty"`
	Invite map[ref.RoomID]InvitedRoom `json:"invite,omitempty"`
	Leave  map[ref.RoomID]LeftRoom    `json:"leave,omitempty"`
}

// JoinedRoom contains sync data for a joined room.
type JoinedRoom struct {
	Timeline TimelineSection `json:"timeline"`
	State    StateSection    `json:"state"`
}

// InvitedRoom contains sync data for a room the bot was invited to.
type InvitedRoom struct {
	InviteState StateSection `json:"invite_state"`
}

// LeftRoom contains sync data for a room the bot has left.
type LeftRoom struct {
	Timeline TimelineSection `json:"timeline"`
}

// TimelineSection contains timeline events from a sync response.
type TimelineSection struct {
	Events    []Event `json:"events"`
	PrevBatch string  `json:"prev_batch"`
	Limited   bool    `json:"limited"`
}

// StateSection contains state events from a sync response.
type StateSection struct {
	Events []Event `json:"events"`
}

// SendEventResponse is returned by every send endpoint.
type SendEventResponse struct {
	EventID ref.EventID `json:"event_id"`
}

// WhoAmIResponse is returned by WhoAmI.
type WhoAmIResponse struct {
	UserID   ref.UserID `json:"user_id"`
	DeviceID string     `json:"device_id,omitempty"`
}

// JoinedRoomsResponse is returned by JoinedRooms.
type JoinedRoomsResponse struct {
	JoinedRooms []ref.RoomID `json:"joined_rooms"`
}
