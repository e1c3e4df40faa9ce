// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package lfgmatrix connects the listing bot to Matrix rooms.
//
// [Handler] consumes /sync responses. Text messages that start with
// the command prefix are parsed by [ParseCommand] into bot actions;
// reactions whose key is a role icon on a published listing become
// role clicks. Replying to a listing message targets that listing.
//
// [Surface] implements lfgbot.Surface: a listing is one m.text message
// rendered from markdown with goldmark and edited in place, and
// private answers are m.notice replies that mention only the actor.
// Requests share a token bucket from golang.org/x/time/rate.
//
// [RoleSource] reads mentionable roles from dev.partycrusher.role
// state events for the role resolver, and [PublishCatalogue] writes
// the dev.partycrusher.commands state event so clients can offer
// command completion.
package lfgmatrix
