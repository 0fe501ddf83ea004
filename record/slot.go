// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"github.com/bitmark-inc/slotstore/fault"
)

// slot header values
const (
	SlotHeaderBytes = 1

	Empty     byte = 0x00
	HaveValue byte = 0xA1
)

// Slot - one version of a value
type Slot struct {
	Present bool   `json:"present"`
	Payload []byte `json:"payload"`
}

// SlotSize - bytes to allocate for a slot holding value
func SlotSize(value []byte) uint64 {
	return SlotHeaderBytes + uint64(len(value))
}

// PackSlot - fill a freshly allocated slot buffer with a value
//
// the buffer must be exactly SlotSize(value) bytes
func PackSlot(buffer []byte, value []byte) error {
	if uint64(len(buffer)) != SlotSize(value) {
		return fault.ErrWriteOutOfRange
	}
	buffer[0] = HaveValue
	copy(buffer[SlotHeaderBytes:], value)
	return nil
}

// UnpackSlot - decode an allocated slot
func UnpackSlot(data []byte) (*Slot, error) {
	if len(data) < SlotHeaderBytes {
		return nil, fault.ErrTruncatedRecord
	}

	switch data[0] {
	case Empty:
		return &Slot{
			Present: false,
			Payload: []byte{},
		}, nil

	case HaveValue:
		payload := make([]byte, len(data)-SlotHeaderBytes)
		copy(payload, data[SlotHeaderBytes:])
		return &Slot{
			Present: true,
			Payload: payload,
		}, nil

	default:
		return nil, fault.ErrInvalidSlotFlag
	}
}
