// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - accounts on an append-only store
//
// An account is a fixed size data area with an owner and a balance.
// Accounts are created once, funded by a payer, and can only be
// written by their owner.  An account whose address was derived under
// a namespace can only be created by presenting the seeds that
// re-derive that address under the same namespace.
//
// All changes happen inside Update, which is atomic: any error or
// panic from the callback discards every staged change.
package ledger
