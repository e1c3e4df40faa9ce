// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package roleresolver resolves a role's display title to a
// mentionable handle in a room, caching results per room.
//
// The cache is eventually consistent. The authoritative data lives in
// the room and is always re-queryable through a [Source]. Entries are
// filled lazily on lookup (including negative results) and removed by
// [Resolver.InvalidateTitle] and [Resolver.InvalidateRoom], which the
// sync handler calls when role state changes. At most Capacity rooms
// are cached; the least recently used room is evicted first.
//
// Lookups that miss query the Source without holding the cache lock.
// A per-room generation counter discards a fill that raced with an
// invalidation, so an invalidation is never undone by a slow query.
package roleresolver
