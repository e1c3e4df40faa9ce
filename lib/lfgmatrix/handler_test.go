// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/partycrusher/partycrusher/lib/lfgbot"
	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
	"github.com/partycrusher/partycrusher/messaging"
)

type call struct {
	name   string
	actor  lfgbot.Actor
	target lfgbot.Target
	key    role.Key
	roles  role.Set
	text   string
	draft  listing.DraftRequest
}

// fakeActions records every call and reports published messages from
// a fixed set.
type fakeActions struct {
	mu        sync.Mutex
	calls     []call
	published map[ref.EventID]bool
}

func (a *fakeActions) record(c call) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, c)
}

func (a *fakeActions) recorded() []call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]call(nil), a.calls...)
}

func (a *fakeActions) Create(ctx context.Context, actor lfgbot.Actor, request listing.DraftRequest) (*listing.Draft, error) {
	a.record(call{name: "create", actor: actor, draft: request})
	return &listing.Draft{}, nil
}

func (a *fakeActions) SelectRequiredRoles(ctx context.Context, actor lfgbot.Actor, required role.Set) (*listing.Listing, error) {
	a.record(call{name: "need", actor: actor, roles: required})
	return nil, nil
}

func (a *fakeActions) ClickRole(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target, key role.Key) error {
	a.record(call{name: "click", actor: actor, target: target, key: key})
	return nil
}

func (a *fakeActions) Leave(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target) error {
	a.record(call{name: "leave", actor: actor, target: target})
	return nil
}

func (a *fakeActions) Close(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target) error {
	a.record(call{name: "close", actor: actor, target: target})
	return nil
}

func (a *fakeActions) EditRequirements(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target, text string) error {
	a.record(call{name: "edit", actor: actor, target: target, text: text})
	return nil
}

func (a *fakeActions) UpdateRequiredRoles(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target, required role.Set) error {
	a.record(call{name: "roles", actor: actor, target: target, roles: required})
	return nil
}

func (a *fakeActions) Published(message ref.EventID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.published[message]
}

type fakeInvalidator struct {
	titles []string
	rooms  []ref.RoomID
}

func (f *fakeInvalidator) InvalidateTitle(roomID ref.RoomID, title string) {
	f.titles = append(f.titles, title)
}

func (f *fakeInvalidator) InvalidateRoom(roomID ref.RoomID) {
	f.rooms = append(f.rooms, roomID)
}

var (
	listingMessage = ref.MustParseEventID("$listing")
	otherRoom      = ref.MustParseRoomID("!elsewhere:example.org")
)

type handlerHarness struct {
	session *fakeSession
	actions *fakeActions
	roles   *fakeInvalidator
	handler *Handler
	events  int
}

func newHandlerHarness(t *testing.T) *handlerHarness {
	t.Helper()
	session := newFakeSession()
	actions := &fakeActions{published: map[ref.EventID]bool{listingMessage: true}}
	roles := &fakeInvalidator{}
	handler, err := NewHandler(HandlerConfig{
		Session: session,
		Actions: actions,
		Surface: newTestSurface(t, session, nil),
		Roles:   roles,
		Prefix:  testPrefix,
		Rooms:   []ref.RoomID{testRoom},
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return &handlerHarness{session: session, actions: actions, roles: roles, handler: handler}
}

func contentMap(t *testing.T, content any) map[string]any {
	t.Helper()
	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unmarshal content: %v", err)
	}
	return result
}

func (h *handlerHarness) event(t *testing.T, sender ref.UserID, eventType ref.EventType, content any) messaging.Event {
	t.Helper()
	h.events++
	return messaging.Event{
		EventID: ref.MustParseEventID(fmt.Sprintf("$in%d", h.events)),
		Type:    eventType,
		Sender:  sender,
		Content: contentMap(t, content),
	}
}

func (h *handlerHarness) text(t *testing.T, sender ref.UserID, body string) messaging.Event {
	return h.event(t, sender, messaging.EventTypeMessage, messaging.NewTextMessage(body))
}

func (h *handlerHarness) sync(room ref.RoomID, events ...messaging.Event) {
	h.handler.HandleSync(context.Background(), &messaging.SyncResponse{
		Rooms: messaging.RoomsSection{
			Join: map[ref.RoomID]messaging.JoinedRoom{
				room: {Timeline: messaging.TimelineSection{Events: events}},
			},
		},
	})
}

func TestNewHandler_Validation(t *testing.T) {
	session := newFakeSession()
	surface := newTestSurface(t, session, nil)
	actions := &fakeActions{}
	for name, config := range map[string]HandlerConfig{
		"no session": {Actions: actions, Surface: surface, Prefix: testPrefix},
		"no actions": {Session: session, Surface: surface, Prefix: testPrefix},
		"no surface": {Session: session, Actions: actions, Prefix: testPrefix},
		"no prefix":  {Session: session, Actions: actions, Surface: surface},
	} {
		if _, err := NewHandler(config); err == nil {
			t.Errorf("%s: NewHandler succeeded", name)
		}
	}
}

func TestHandlerPrime(t *testing.T) {
	h := newHandlerHarness(t)
	h.handler.Prime(context.Background(), &messaging.SyncResponse{
		Rooms: messaging.RoomsSection{
			Invite: map[ref.RoomID]messaging.InvitedRoom{
				testRoom:  {},
				otherRoom: {},
			},
		},
	})

	if !slices.Equal(h.session.joined, []ref.RoomID{testRoom}) {
		t.Errorf("joined %v, want only the served room", h.session.joined)
	}
	raw, err := h.session.GetStateEvent(context.Background(), testRoom, EventTypeCommands, "")
	if err != nil {
		t.Fatalf("catalogue not written: %v", err)
	}
	var catalogue CatalogueContent
	if err := json.Unmarshal(raw, &catalogue); err != nil {
		t.Fatalf("decoding catalogue: %v", err)
	}
	if catalogue.Prefix != testPrefix || len(catalogue.Commands) != len(Commands) {
		t.Errorf("catalogue = %+v", catalogue)
	}
	if _, err := h.session.GetStateEvent(context.Background(), otherRoom, EventTypeCommands, ""); err == nil {
		t.Error("catalogue written to an unserved room")
	}
}

func TestHandleSync_Commands(t *testing.T) {
	h := newHandlerHarness(t)
	create := h.text(t, testLeader, `!lfg create -d Dawnbreaker -l 15 -t timed -r tank`)
	need := h.text(t, testLeader, "!lfg need healer, melee")
	join := h.text(t, testHealer, "!lfg join heals #abcd1234")
	h.sync(testRoom, create, need, join)

	calls := h.actions.recorded()
	if len(calls) != 3 {
		t.Fatalf("got %d calls, want 3: %+v", len(calls), calls)
	}
	if calls[0].name != "create" || calls[0].draft.Dungeon != "Dawnbreaker" || calls[0].draft.KeyLevel != 15 {
		t.Errorf("create call = %+v", calls[0])
	}
	wantActor := lfgbot.Actor{Room: testRoom, User: testLeader, Event: create.EventID}
	if calls[0].actor != wantActor {
		t.Errorf("create actor = %+v, want %+v", calls[0].actor, wantActor)
	}
	if calls[1].name != "need" || calls[1].roles != role.NewSet(role.Healer, role.MeleeDPS) {
		t.Errorf("need call = %+v", calls[1])
	}
	if calls[2].name != "click" || calls[2].key != role.Healer || calls[2].target.ShortID != "abcd1234" {
		t.Errorf("join call = %+v", calls[2])
	}
}

func TestHandleSync_ReplyTargetsListing(t *testing.T) {
	h := newHandlerHarness(t)
	reply := messaging.NewTextMessage("> <@leader:example.org> KC: Dawnbreaker +15\n\n!lfg leave")
	reply.RelatesTo = &messaging.RelatesTo{InReplyTo: &messaging.InReplyTo{EventID: listingMessage}}
	unrelated := messaging.NewTextMessage("!lfg close")
	unrelated.RelatesTo = &messaging.RelatesTo{InReplyTo: &messaging.InReplyTo{EventID: ref.MustParseEventID("$chatter")}}

	h.sync(testRoom,
		h.event(t, testHealer, messaging.EventTypeMessage, reply),
		h.event(t, testLeader, messaging.EventTypeMessage, unrelated),
	)

	calls := h.actions.recorded()
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2: %+v", len(calls), calls)
	}
	if calls[0].name != "leave" || calls[0].target.Message != listingMessage {
		t.Errorf("reply leave = %+v, want it to target the listing", calls[0])
	}
	if calls[1].name != "close" || !calls[1].target.IsZero() {
		t.Errorf("close replying to chatter = %+v, want an inferred target", calls[1])
	}
}

func TestHandleSync_Ignored(t *testing.T) {
	h := newHandlerHarness(t)
	edit := messaging.NewEdit(ref.MustParseEventID("$earlier"), messaging.NewTextMessage("!lfg close"))
	notice := messaging.NewTextMessage("!lfg close")
	notice.MsgType = messaging.MsgTypeNotice

	h.sync(testRoom,
		h.text(t, botUserID, "!lfg close"),
		h.event(t, testLeader, messaging.EventTypeMessage, edit),
		h.event(t, testLeader, messaging.EventTypeMessage, notice),
		h.text(t, testLeader, "anyone up for a key?"),
	)
	h.sync(otherRoom, h.text(t, testLeader, "!lfg close"))

	if calls := h.actions.recorded(); len(calls) != 0 {
		t.Errorf("ignored events produced calls: %+v", calls)
	}
	if messages := h.session.sentMessages(); len(messages) != 0 {
		t.Errorf("ignored events produced replies: %+v", messages)
	}
}

func TestHandleSync_Reactions(t *testing.T) {
	h := newHandlerHarness(t)
	reaction := func(target ref.EventID, key string) messaging.ReactionContent {
		return messaging.ReactionContent{RelatesTo: messaging.RelatesTo{
			RelType: messaging.RelTypeAnnotation,
			EventID: target,
			Key:     key,
		}}
	}

	h.sync(testRoom,
		// Clients may drop the variation selector.
		h.event(t, testHealer, messaging.EventTypeReaction, reaction(listingMessage, "⚔")),
		h.event(t, testHealer, messaging.EventTypeReaction, reaction(listingMessage, "👍")),
		h.event(t, testHealer, messaging.EventTypeReaction, reaction(ref.MustParseEventID("$chatter"), role.Tank.Icon())),
		h.event(t, botUserID, messaging.EventTypeReaction, reaction(listingMessage, role.Tank.Icon())),
	)

	calls := h.actions.recorded()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1: %+v", len(calls), calls)
	}
	want := call{
		name:   "click",
		actor:  lfgbot.Actor{Room: testRoom, User: testHealer, Event: listingMessage},
		target: lfgbot.Target{Message: listingMessage},
		key:    role.MeleeDPS,
	}
	if calls[0] != want {
		t.Errorf("click = %+v, want %+v", calls[0], want)
	}
}

func TestHandleSync_Replies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "help", body: "!lfg help", want: []string{"PartyCrusher commands", "`!lfg leave [#id]`"}},
		{name: "usage", body: "!lfg create -d Dawnbreaker", want: []string{"missing --level", "Usage: `!lfg create"}},
		{name: "unknown verb", body: "!lfg dance", want: []string{"unknown command", "`!lfg help`"}},
		{name: "rejection", body: "!lfg join bard", want: []string{"Unknown role"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHandlerHarness(t)
			command := h.text(t, testLeader, test.body)
			h.sync(testRoom, command)

			sent, ok := h.session.lastMessage()
			if !ok {
				t.Fatal("no reply sent")
			}
			if sent.content.MsgType != messaging.MsgTypeNotice {
				t.Errorf("reply msgtype = %q", sent.content.MsgType)
			}
			for _, want := range test.want {
				if !strings.Contains(sent.content.Body, want) {
					t.Errorf("reply %q lacks %q", sent.content.Body, want)
				}
			}
			if relation := sent.content.RelatesTo; relation == nil || relation.InReplyTo == nil || relation.InReplyTo.EventID != command.EventID {
				t.Errorf("reply relation = %+v, want a reply to the command", relation)
			}
			if calls := h.actions.recorded(); len(calls) != 0 {
				t.Errorf("reply-only command produced calls: %+v", calls)
			}
		})
	}
}

func TestHandleSync_RoleChanges(t *testing.T) {
	h := newHandlerHarness(t)
	title := "Healer"
	roleEvent := h.event(t, testLeader, EventTypeRole, RoleContent{Members: []string{"@mender:example.org"}})
	roleEvent.StateKey = &title
	redaction := h.event(t, testLeader, messaging.EventTypeRedaction, map[string]any{})

	h.sync(testRoom, roleEvent, redaction)
	if !slices.Equal(h.roles.titles, []string{"Healer"}) {
		t.Errorf("invalidated titles = %v", h.roles.titles)
	}
	if !slices.Equal(h.roles.rooms, []ref.RoomID{testRoom}) {
		t.Errorf("invalidated rooms = %v", h.roles.rooms)
	}

	h.handler.HandleSync(context.Background(), &messaging.SyncResponse{
		Rooms: messaging.RoomsSection{
			Join: map[ref.RoomID]messaging.JoinedRoom{
				testRoom: {Timeline: messaging.TimelineSection{Limited: true}},
			},
		},
	})
	if len(h.roles.rooms) != 2 {
		t.Errorf("limited timeline did not invalidate the room: %v", h.roles.rooms)
	}
}

func TestStripReplyFallback(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: "!lfg leave", want: "!lfg leave"},
		{body: "> <@a:example.org> hi\n\n!lfg leave", want: "!lfg leave"},
		{body: "> <@a:example.org> one\n> two\n\n!lfg join tank", want: "!lfg join tank"},
		{body: "> quoted only", want: ""},
	}
	for _, test := range tests {
		if got := stripReplyFallback(test.body); got != test.want {
			t.Errorf("stripReplyFallback(%q) = %q, want %q", test.body, got, test.want)
		}
	}
}
