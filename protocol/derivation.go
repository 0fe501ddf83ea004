// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/derive"
	"github.com/bitmark-inc/slotstore/fault"
)

// seed tags
const (
	keyTag  = "key"
	initTag = "init"
	nextTag = "next"
)

func referenceSeeds(caller address.Address, key []byte) ([][]byte, error) {
	if len(key) > derive.MaxSeedLength {
		return nil, fault.ErrKeyTooLong
	}
	return derive.Seeds(keyTag, caller[:], key), nil
}

func initialSeeds(reference address.Address) [][]byte {
	return derive.Seeds(initTag, reference[:])
}

func nextSeeds(current address.Address) [][]byte {
	return derive.Seeds(nextTag, current[:])
}

// ReferenceAddress - the reference record address and bump for a caller's key
func ReferenceAddress(namespace address.Address, caller address.Address, key []byte) (address.Address, byte, error) {
	seeds, err := referenceSeeds(caller, key)
	if nil != err {
		return address.Address{}, 0, err
	}
	return derive.FindAddress(seeds, namespace)
}

// InitialSlotAddress - the first slot of a reference
func InitialSlotAddress(namespace address.Address, reference address.Address) (address.Address, byte, error) {
	return derive.FindAddress(initialSeeds(reference), namespace)
}

// NextSlotAddress - the slot that follows current
func NextSlotAddress(namespace address.Address, current address.Address) (address.Address, byte, error) {
	return derive.FindAddress(nextSeeds(current), namespace)
}
