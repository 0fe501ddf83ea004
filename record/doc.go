// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package record - binary layout of program owned account data
//
// Reference record (fixed 40 bytes):
//
//   discriminator(8) ++ current slot address(32)
//
//   discriminator = first 8 bytes of SHA3-256("account:Reference")
//
// Storage slot (1 + N bytes, written once at allocation):
//
//   presence flag(1) ++ payload(N)
//
//   0x00 - empty, payload is ignored
//   0xA1 - has value, payload is the value
package record
