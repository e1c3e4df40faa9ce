// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that listing
// expiry, draft timeouts, the prune sweep, and sync backoff can be
// tested without waiting on the wall clock.
//
// Production code holds a Clock field and receives Real(). Tests
// receive Fake(start) and drive time explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	bot := lfgbot.New(lfgbot.Config{Clock: fake, ...})
//	// ... create a listing, which schedules its expiry ...
//	fake.Advance(30 * time.Minute) // expiry callback runs here
//
// # Synchronization
//
// A goroutine that calls After or AfterFunc on a FakeClock registers a
// pending waiter. WaitForTimers blocks until a given number of waiters
// are registered, which removes the race between a background loop
// arming its timer and the test advancing the clock.
package clock
