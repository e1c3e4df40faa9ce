// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/partycrusher/partycrusher/lib/lfgbot"
	"github.com/partycrusher/partycrusher/lib/metrics"
	"github.com/partycrusher/partycrusher/lib/ref"
	"github.com/partycrusher/partycrusher/lib/render"
	"github.com/partycrusher/partycrusher/lib/role"
	"github.com/partycrusher/partycrusher/messaging"
)

// Default outbound request budget toward the homeserver.
const (
	DefaultSendRate  = 5.0
	DefaultSendBurst = 10
)

// SurfaceConfig configures a Surface.
type SurfaceConfig struct {
	Session messaging.Session

	// SendRate is the sustained number of requests per second and
	// SendBurst the bucket size. Zero values use the defaults.
	SendRate  float64
	SendBurst int

	// Metrics records request latency and failures. Nil disables.
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Surface publishes listings as Matrix messages. Each listing is one
// m.text message edited in place; private replies are m.notice
// replies that mention only the actor. Every request waits on a
// shared token bucket.
type Surface struct {
	session messaging.Session
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ lfgbot.Surface = (*Surface)(nil)

// NewSurface creates a Surface.
func NewSurface(config SurfaceConfig) (*Surface, error) {
	if config.Session == nil {
		return nil, errors.New("lfgmatrix: Session is required")
	}
	sendRate := config.SendRate
	if sendRate == 0 {
		sendRate = DefaultSendRate
	}
	sendBurst := config.SendBurst
	if sendBurst == 0 {
		sendBurst = DefaultSendBurst
	}
	if sendRate < 0 || sendBurst < 0 {
		return nil, fmt.Errorf("lfgmatrix: send rate %v and burst %d must not be negative", sendRate, sendBurst)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Surface{
		session: config.Session,
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		metrics: config.Metrics,
		logger:  logger,
	}, nil
}

// Publish sends the listing message and seeds it with one reaction
// per role icon so members can join with a click. Seeding failures are
// logged; the listing stands without them.
func (s *Surface) Publish(ctx context.Context, roomID ref.RoomID, view render.View) (ref.EventID, error) {
	content, err := viewContent(view)
	if err != nil {
		return ref.EventID{}, err
	}

	var eventID ref.EventID
	err = s.do(ctx, "publish", func() error {
		var sendErr error
		eventID, sendErr = s.session.SendMessage(ctx, roomID, content)
		return sendErr
	})
	if err != nil {
		return ref.EventID{}, fmt.Errorf("lfgmatrix: publishing listing in %s: %w", roomID, err)
	}

	for _, key := range role.All() {
		seedErr := s.do(ctx, "react", func() error {
			_, reactErr := s.session.SendReaction(ctx, roomID, eventID, key.Icon())
			return reactErr
		})
		if seedErr != nil {
			s.logger.Warn("seeding role reaction failed",
				"room_id", roomID,
				"event_id", eventID,
				"role", key,
				"error", seedErr,
			)
		}
	}
	return eventID, nil
}

// Update edits the listing message in place. A message that was
// redacted or never existed yields an error wrapping
// lfgbot.ErrMessageGone.
func (s *Surface) Update(ctx context.Context, roomID ref.RoomID, message ref.EventID, view render.View) error {
	content, err := viewContent(view)
	if err != nil {
		return err
	}
	err = s.do(ctx, "update", func() error {
		_, editErr := s.session.EditMessage(ctx, roomID, message, content)
		return editErr
	})
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
			return fmt.Errorf("lfgmatrix: editing %s: %w: %w", message, lfgbot.ErrMessageGone, err)
		}
		return fmt.Errorf("lfgmatrix: editing %s: %w", message, err)
	}
	return nil
}

// Notify replies to actor.Event with a notice that mentions only
// actor.User.
func (s *Surface) Notify(ctx context.Context, actor lfgbot.Actor, text string) (ref.EventID, error) {
	content, err := noticeContent(actor, text)
	if err != nil {
		return ref.EventID{}, err
	}

	var eventID ref.EventID
	err = s.do(ctx, "notify", func() error {
		var sendErr error
		eventID, sendErr = s.session.SendMessage(ctx, actor.Room, content)
		return sendErr
	})
	if err != nil {
		return ref.EventID{}, fmt.Errorf("lfgmatrix: notifying %s: %w", actor.User, err)
	}
	return eventID, nil
}

// Discard redacts a notice. One that is already gone is not an error.
func (s *Surface) Discard(ctx context.Context, roomID ref.RoomID, message ref.EventID) error {
	err := s.do(ctx, "discard", func() error {
		return s.session.Redact(ctx, roomID, message, "prompt no longer needed")
	})
	if err != nil && !messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
		return fmt.Errorf("lfgmatrix: redacting %s: %w", message, err)
	}
	return nil
}

// Reply sends a notice that is not part of the listing lifecycle:
// help output and command usage errors.
func (s *Surface) Reply(ctx context.Context, actor lfgbot.Actor, text string) {
	if _, err := s.Notify(ctx, actor, text); err != nil {
		s.logger.Warn("reply failed",
			"room_id", actor.Room,
			"user_id", actor.User,
			"error", err,
		)
	}
}

// do waits for the rate limiter, runs request, and records it.
func (s *Surface) do(ctx context.Context, operation string, request func() error) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for send budget: %w", err)
	}
	started := time.Now()
	err := request()
	s.metrics.ObserveSurface(operation, started, err)
	return err
}

func viewContent(view render.View) (messaging.MessageContent, error) {
	body := view.Markdown()
	formatted, err := FormatHTML(body)
	if err != nil {
		return messaging.MessageContent{}, err
	}
	content := messaging.NewHTMLMessage(body, formatted)
	content.Mentions = &messaging.Mentions{UserIDs: userIDStrings(view.Mentions)}
	return content, nil
}

func noticeContent(actor lfgbot.Actor, text string) (messaging.MessageContent, error) {
	body := render.Pill(actor.User) + ": " + text
	formatted, err := FormatHTML(body)
	if err != nil {
		return messaging.MessageContent{}, err
	}
	content := messaging.NewHTMLMessage(body, formatted)
	content.MsgType = messaging.MsgTypeNotice
	content.Mentions = &messaging.Mentions{UserIDs: []string{actor.User.String()}}
	if !actor.Event.IsZero() {
		content.RelatesTo = &messaging.RelatesTo{
			InReplyTo: &messaging.InReplyTo{EventID: actor.Event},
		}
	}
	return content, nil
}

func userIDStrings(users []ref.UserID) []string {
	if len(users) == 0 {
		return nil
	}
	result := make([]string, len(users))
	for index, user := range users {
		result[index] = user.String()
	}
	return result
}
