// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/bitmark-inc/slotstore/fault"
)

// Length - number of bytes in an address
const Length = 32

// Address - a ledger account address
//
// represented as base58 text for printing and JSON encoding
// to convert to bytes just use a[:]
type Address [Length]byte

// System - the namespace that owns every unallocated account
var System = Address{}

// New - create an address from a byte slice
func New(buffer []byte) (Address, error) {
	a := Address{}
	if Length != len(buffer) {
		return a, fault.ErrInvalidAddress
	}
	copy(a[:], buffer)
	return a, nil
}

// FromBase58 - decode the base58 text form of an address
func FromBase58(s string) (Address, error) {
	buffer, err := base58.Decode(s)
	if nil != err {
		return Address{}, fault.ErrInvalidAddress
	}
	return New(buffer)
}

// IsZero - true for the system namespace
func (a Address) IsZero() bool {
	return a == System
}

// Bytes - a copy of the address as a byte slice
func (a Address) Bytes() []byte {
	buffer := make([]byte, Length)
	copy(buffer, a[:])
	return buffer
}

// String - base58 representation for use by the fmt package (for %s)
func (a Address) String() string {
	return base58.Encode(a[:])
}

// GoString - for use by the fmt package (for %#v)
func (a Address) GoString() string {
	return "<address:" + hex.EncodeToString(a[:]) + ">"
}

// MarshalText - convert address to base58 text
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText - convert base58 text to address
func (a *Address) UnmarshalText(s []byte) error {
	decoded, err := FromBase58(string(s))
	if nil != err {
		return err
	}
	*a = decoded
	return nil
}

// Format - hex output for %x, base58 otherwise
func (a Address) Format(state fmt.State, verb rune) {
	switch verb {
	case 'x':
		fmt.Fprint(state, hex.EncodeToString(a[:]))
	case 'v':
		if state.Flag('#') {
			fmt.Fprint(state, a.GoString())
			return
		}
		fmt.Fprint(state, a.String())
	default:
		fmt.Fprint(state, a.String())
	}
}
