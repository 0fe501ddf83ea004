// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"bytes"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/fault"
)

// reference record sizes
const (
	DiscriminatorBytes = 8
	ReferenceSize      = DiscriminatorBytes + address.Length
)

var referenceDiscriminator = discriminator("Reference")

// Reference - points a key at its current slot
type Reference struct {
	Current address.Address `json:"current"`
}

func discriminator(name string) []byte {
	digest := sha3.Sum256([]byte("account:" + name))
	return digest[:DiscriminatorBytes]
}

// Pack - encode the reference record
func (r *Reference) Pack() []byte {
	buffer := make([]byte, 0, ReferenceSize)
	buffer = append(buffer, referenceDiscriminator...)
	return append(buffer, r.Current[:]...)
}

// UnpackReference - decode a reference record
func UnpackReference(data []byte) (*Reference, error) {
	if len(data) < ReferenceSize {
		return nil, fault.ErrTruncatedRecord
	}
	if !bytes.Equal(referenceDiscriminator, data[:DiscriminatorBytes]) {
		return nil, fault.ErrInvalidDiscriminator
	}

	current, err := address.New(data[DiscriminatorBytes:ReferenceSize])
	if nil != err {
		return nil, err
	}
	return &Reference{
		Current: current,
	}, nil
}
