// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package derive - deterministic account addresses from seeds
//
// An address is the SHA3-256 digest of:
//
//   seed[0] ++ seed[1] ++ ... ++ seed[n] ++ namespace ++ "ProgramDerivedAddress"
//
// and is only accepted when the digest does not decode as an ed25519
// curve point, so no private key can exist for it and only the owning
// namespace can authorise its creation.
//
// FindAddress appends a single bump byte as the final seed, trying
// 255 down to 0, and returns the first off-curve result.
package derive

import (
	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/fault"
)

// limits on seeds
const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

const marker = "ProgramDerivedAddress"

// Seeds - build a seed list from a domain tag and further byte strings
func Seeds(tag string, parts ...[]byte) [][]byte {
	seeds := make([][]byte, 0, len(parts)+1)
	seeds = append(seeds, []byte(tag))
	return append(seeds, parts...)
}

// CreateAddress - derive an address from the complete seed list
//
// the seeds must already include the bump if one is used
func CreateAddress(seeds [][]byte, namespace address.Address) (address.Address, error) {
	if len(seeds) > MaxSeeds {
		return address.Address{}, fault.ErrTooManySeeds
	}

	h := sha3.New256()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return address.Address{}, fault.ErrSeedTooLong
		}
		h.Write(seed)
	}
	h.Write(namespace[:])
	h.Write([]byte(marker))

	a := address.Address{}
	copy(a[:], h.Sum(nil))

	if IsOnCurve(a) {
		return address.Address{}, fault.ErrOnCurve
	}
	return a, nil
}

// FindAddress - search for the highest bump that yields an off-curve address
//
// returns the address and the bump that produced it
func FindAddress(seeds [][]byte, namespace address.Address) (address.Address, byte, error) {
	if len(seeds) >= MaxSeeds {
		return address.Address{}, 0, fault.ErrTooManySeeds
	}

	bumpSeed := []byte{0}
	withBump := make([][]byte, len(seeds), len(seeds)+1)
	copy(withBump, seeds)
	withBump = append(withBump, bumpSeed)

	for bump := 255; bump >= 0; bump -= 1 {
		bumpSeed[0] = byte(bump)
		a, err := CreateAddress(withBump, namespace)
		switch err {
		case nil:
			return a, byte(bump), nil
		case fault.ErrOnCurve:
			continue
		default:
			return address.Address{}, 0, err
		}
	}
	return address.Address{}, 0, fault.ErrNoViableBump
}

// WithBump - append the bump to a copy of the seeds
//
// this is the seed list an owner presents to authorise creation
func WithBump(seeds [][]byte, bump byte) [][]byte {
	withBump := make([][]byte, len(seeds), len(seeds)+1)
	copy(withBump, seeds)
	return append(withBump, []byte{bump})
}

// IsOnCurve - true if the address is a valid compressed ed25519 point
func IsOnCurve(a address.Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return nil == err
}
