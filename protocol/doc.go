// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package protocol - versioned write-once key/value slots
//
// A key written by a caller is represented by a reference record whose
// address is derived from ("key", caller, key).  The reference points
// at the current storage slot.  Slots are never rewritten: every update
// allocates the slot derived from ("next", current), fills it and
// repoints the reference, so the complete history remains on the
// ledger and can be re-derived by anyone from the initial slot
// ("init", reference).
//
//   reference ──▶ slot[n]
//   slot[0] = derive("init", reference)
//   slot[i+1] = derive("next", slot[i])
//
// Two updates racing from the same current slot derive the same next
// slot; the first to commit allocates it and the other fails because
// the slot is no longer empty.
package protocol
