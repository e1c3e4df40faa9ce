// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/partycrusher/partycrusher/lib/lfgbot"
	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/role"
	"github.com/partycrusher/partycrusher/lib/service"
	"github.com/partycrusher/partycrusher/messaging"
)

// Actions is the listing lifecycle the handler drives. *lfgbot.Bot
// implements it.
type Actions interface {
	Create(ctx context.Context, actor lfgbot.Actor, request listing.DraftRequest) (*listing.Draft, error)
	SelectRequiredRoles(ctx context.Context, actor lfgbot.Actor, required role.Set) (*listing.Listing, error)
	ClickRole(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target, key role.Key) error
	Leave(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target) error
	Close(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target) error
	EditRequirements(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target, text string) error
	UpdateRequiredRoles(ctx context.Context, actor lfgbot.Actor, target lfgbot.Target, required role.Set) error
	Published(message ref.EventID) bool
}

var _ Actions = (*lfgbot.Bot)(nil)

// Invalidator drops cached role handles. *roleresolver.Resolver
// implements it.
type Invalidator interface {
	InvalidateTitle(roomID ref.RoomID, title string)
	InvalidateRoom(roomID ref.RoomID)
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Session messaging.Session
	Actions Actions
	Surface *Surface

	// Roles is told about role changes. Nil when mentions are not
	// resolved.
	Roles Invalidator

	// Prefix starts every command, e.g. "!lfg".
	Prefix string

	// Rooms limits the rooms served. Empty serves every joined room
	// and accepts every invite.
	Rooms []ref.RoomID

	Logger *slog.Logger
}

// Handler turns /sync responses into bot actions. Events are handled
// one at a time in timeline order, so concurrent clicks on the same
// listing are applied in the order the homeserver delivered them.
type Handler struct {
	session messaging.Session
	actions Actions
	surface *Surface
	roles   Invalidator
	prefix  string
	rooms   map[ref.RoomID]struct{}
	logger  *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(config HandlerConfig) (*Handler, error) {
	if config.Session == nil {
		return nil, errors.New("lfgmatrix: Session is required")
	}
	if config.Actions == nil {
		return nil, errors.New("lfgmatrix: Actions is required")
	}
	if config.Surface == nil {
		return nil, errors.New("lfgmatrix: Surface is required")
	}
	if strings.TrimSpace(config.Prefix) == "" {
		return nil, errors.New("lfgmatrix: Prefix is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var rooms map[ref.RoomID]struct{}
	if len(config.Rooms) > 0 {
		rooms = make(map[ref.RoomID]struct{}, len(config.Rooms))
		for _, roomID := range config.Rooms {
			rooms[roomID] = struct{}{}
		}
	}

	return &Handler{
		session: config.Session,
		actions: config.Actions,
		surface: config.Surface,
		roles:   config.Roles,
		prefix:  config.Prefix,
		rooms:   rooms,
		logger:  logger,
	}, nil
}

// serves reports whether the handler acts in roomID.
func (h *Handler) serves(roomID ref.RoomID) bool {
	if h.rooms == nil {
		return true
	}
	_, ok := h.rooms[roomID]
	return ok
}

// Prime processes the initial /sync: pending invites are accepted and
// the command catalogue is written to every served room. Timeline
// events from before startup are not replayed.
func (h *Handler) Prime(ctx context.Context, response *messaging.SyncResponse) {
	accepted := service.AcceptInvites(ctx, h.session, response.Rooms.Invite, h.serves, h.logger)

	var rooms []ref.RoomID
	for roomID := range response.Rooms.Join {
		if h.serves(roomID) {
			rooms = append(rooms, roomID)
		}
	}
	rooms = append(rooms, accepted...)
	PublishCatalogue(ctx, h.session, rooms, h.prefix, h.logger)
}

// HandleSync processes one incremental /sync response. It satisfies
// service.SyncHandler.
func (h *Handler) HandleSync(ctx context.Context, response *messaging.SyncResponse) {
	if len(response.Rooms.Invite) > 0 {
		accepted := service.AcceptInvites(ctx, h.session, response.Rooms.Invite, h.serves, h.logger)
		if len(accepted) > 0 {
			PublishCatalogue(ctx, h.session, accepted, h.prefix, h.logger)
		}
	}

	for roomID, room := range response.Rooms.Join {
		if !h.serves(roomID) {
			continue
		}
		if room.Timeline.Limited && h.roles != nil {
			// Role changes may be in the gap.
			h.roles.InvalidateRoom(roomID)
		}
		for _, event := range room.State.Events {
			h.handleStateEvent(roomID, event)
		}
		for _, event := range room.Timeline.Events {
			if event.StateKey != nil {
				h.handleStateEvent(roomID, event)
				continue
			}
			h.handleTimelineEvent(ctx, roomID, event)
		}
	}
}

func (h *Handler) handleStateEvent(roomID ref.RoomID, event messaging.Event) {
	if event.Type != EventTypeRole || h.roles == nil {
		return
	}
	title, err := roleTitle(event)
	if err != nil {
		return
	}
	h.logger.Debug("role definition changed", "room_id", roomID, "role", title)
	h.roles.InvalidateTitle(roomID, title)
}

func (h *Handler) handleTimelineEvent(ctx context.Context, roomID ref.RoomID, event messaging.Event) {
	if event.Sender == h.session.UserID() {
		return
	}
	switch event.Type {
	case messaging.EventTypeMessage:
		h.handleMessage(ctx, roomID, event)
	case messaging.EventTypeReaction:
		h.handleReaction(ctx, roomID, event)
	case messaging.EventTypeRedaction:
		// The redacted event may have been a role definition, and
		// its type is not part of the redaction.
		if h.roles != nil {
			h.roles.InvalidateRoom(roomID)
		}
	}
}

func (h *Handler) handleReaction(ctx context.Context, roomID ref.RoomID, event messaging.Event) {
	content, err := messaging.DecodeContent[messaging.ReactionContent](event)
	if err != nil || content.RelatesTo.RelType != messaging.RelTypeAnnotation {
		return
	}
	message := content.RelatesTo.EventID
	if message.IsZero() || !h.actions.Published(message) {
		return
	}
	key, err := role.FromIcon(content.RelatesTo.Key)
	if err != nil {
		return
	}

	actor := lfgbot.Actor{Room: roomID, User: event.Sender, Event: message}
	if err := h.actions.ClickRole(ctx, actor, lfgbot.Target{Message: message}, key); err != nil {
		h.logger.Debug("role click not applied", "room_id", roomID, "user_id", event.Sender, "role", key, "error", err)
	}
}

func (h *Handler) handleMessage(ctx context.Context, roomID ref.RoomID, event messaging.Event) {
	content, err := messaging.DecodeContent[messaging.MessageContent](event)
	if err != nil {
		h.logger.Debug("ignoring undecodable message", "room_id", roomID, "event_id", event.EventID, "error", err)
		return
	}
	if content.MsgType != messaging.MsgTypeText {
		return
	}
	var replyTo ref.EventID
	if content.RelatesTo != nil {
		if content.RelatesTo.RelType == messaging.RelTypeReplace {
			return
		}
		if content.RelatesTo.InReplyTo != nil {
			replyTo = content.RelatesTo.InReplyTo.EventID
		}
	}

	body := content.Body
	if !replyTo.IsZero() {
		body = stripReplyFallback(body)
	}
	command, ok, err := ParseCommand(body, h.prefix)
	if !ok {
		return
	}

	actor := lfgbot.Actor{Room: roomID, User: event.Sender, Event: event.EventID}
	if err != nil {
		h.surface.Reply(ctx, actor, usageReply(h.prefix, err))
		return
	}
	if command.Target.IsZero() && !replyTo.IsZero() && h.actions.Published(replyTo) {
		command.Target.Message = replyTo
	}

	h.logger.Debug("command received",
		"room_id", roomID,
		"user_id", event.Sender,
		"verb", command.Verb,
	)
	if err := h.dispatch(ctx, actor, command); err != nil {
		h.logger.Debug("command not applied",
			"room_id", roomID,
			"user_id", event.Sender,
			"verb", command.Verb,
			"error", err,
		)
	}
}

// dispatch runs command. The bot answers the actor itself, including
// for rejections, so the returned error is informational.
func (h *Handler) dispatch(ctx context.Context, actor lfgbot.Actor, command Command) error {
	switch command.Verb {
	case VerbCreate:
		_, err := h.actions.Create(ctx, actor, command.Draft)
		return err
	case VerbNeed:
		_, err := h.actions.SelectRequiredRoles(ctx, actor, command.Roles)
		return err
	case VerbJoin:
		return h.actions.ClickRole(ctx, actor, command.Target, command.Role)
	case VerbLeave:
		return h.actions.Leave(ctx, actor, command.Target)
	case VerbClose:
		return h.actions.Close(ctx, actor, command.Target)
	case VerbEdit:
		return h.actions.EditRequirements(ctx, actor, command.Target, command.Text)
	case VerbRoles:
		return h.actions.UpdateRequiredRoles(ctx, actor, command.Target, command.Roles)
	case VerbHelp:
		h.surface.Reply(ctx, actor, HelpText(h.prefix))
		return nil
	default:
		return fmt.Errorf("lfgmatrix: unhandled verb %q", command.Verb)
	}
}

// usageReply is the private answer to a command that failed to parse.
func usageReply(prefix string, err error) string {
	if message, ok := lfgbot.RejectionMessage(err); ok {
		return message
	}
	var usage *UsageError
	if !errors.As(err, &usage) {
		return lfgbot.GenericRejection
	}
	text := "⚠️ " + usage.Error()
	if line := usage.Usage(); line != "" {
		text += "\nUsage: `" + prefix + " " + line + "`"
	} else {
		text += "\nSend `" + prefix + " help` for the command list."
	}
	return text
}

// stripReplyFallback removes the quoted "> " lines clients prepend to
// the body of a reply.
func stripReplyFallback(body string) string {
	if !strings.HasPrefix(body, "> ") {
		return body
	}
	lines := strings.Split(body, "\n")
	index := 0
	for index < len(lines) && strings.HasPrefix(lines[index], ">") {
		index++
	}
	if index < len(lines) && lines[index] == "" {
		index++
	}
	return strings.Join(lines[index:], "\n")
}
