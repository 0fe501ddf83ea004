// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// Either a LevelDB database or a bbolt database (single bucket) holds
// all pools.  Each pool is defined by a prefix byte that is obtained
// from the prefix tag in the struct defining the available pools.
//
// All writes happen inside a transaction; only one transaction is
// active at a time and Begin blocks until the previous one has
// committed or aborted.  Nothing staged in a transaction is visible
// on disk until Commit.
//
// Notes:
// 1. each separate pool has a single byte prefix
// 2. ++           = concatenation of byte data
// 3. address      = 32 byte ledger account address
// 4. balance      = big endian uint64 (8 bytes)
//
// Accounts:
//
//   A ++ address               - ledger account
//                                data: owner address ++ balance ++ account data
//
// Faucet:
//
//   F ++ address               - total amount airdropped to an address
//                                data: big endian uint64 (8 bytes)
//
// Version:
//
//   0x00 ++ "VERSION"          - database layout version
//                                data: big endian uint32 (4 bytes)
package storage
