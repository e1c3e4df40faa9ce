// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package lfgbot dispatches user actions to listings and keeps each
// listing's published view in sync with its state.
//
// A [Bot] owns every draft and listing. Each inbound action arrives
// as a call carrying an [Actor] (who acted, where, and in response to
// which event) and usually a [Target] naming the listing. The bot
// looks the listing up, applies the lifecycle operation, and on
// success re-renders the listing and pushes the view to the
// [Surface]. Rejections are answered with a private notice to the
// actor (see [RejectionMessage]) and returned to the caller.
//
// Per listing, the mutate-render-push sequence runs under an update
// lock, so pushes reach the surface in mutation order and a second
// action on the same listing waits for the first. Different listings
// never contend.
//
// Terminal listings stay resolvable for the configured retention and
// are then dropped by a sweep that [Bot.Run] schedules with a cron
// expression.
package lfgbot
