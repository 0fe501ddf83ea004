// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/pkg/errors"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/fault"
	"github.com/bitmark-inc/slotstore/ledger"
	"github.com/bitmark-inc/slotstore/record"
)

// Version - one retained slot of a key
type Version struct {
	Sequence uint64          `json:"sequence"`
	Address  address.Address `json:"address"`
	Slot     *record.Slot    `json:"slot"`
}

// Get - the current version of a key
func (p *Program) Get(reference address.Address) (*record.Slot, error) {
	var slot *record.Slot
	err := p.ledger.View(func(tx ledger.Transaction) error {
		r, err := p.readReference(tx, reference)
		if nil != err {
			return err
		}

		account, err := tx.Account(r.Current)
		if nil != err {
			return err
		}
		if !account.Exists() {
			return fault.ErrSlotNotFound
		}
		slot, err = record.UnpackSlot(account.Data)
		return err
	})
	if nil != err {
		return nil, err
	}
	return slot, nil
}

// History - every version of a key, oldest first
//
// the chain is re-derived from the initial slot, so a link that is
// missing or foreign means the reference cannot be trusted
func (p *Program) History(reference address.Address) ([]Version, error) {
	initial, _, err := InitialSlotAddress(p.namespace, reference)
	if nil != err {
		return nil, err
	}

	versions := make([]Version, 0, 8)
	err = p.ledger.View(func(tx ledger.Transaction) error {
		r, err := p.readReference(tx, reference)
		if nil != err {
			return err
		}

		slotAddress := initial
	chain:
		for sequence := uint64(0); ; sequence += 1 {
			account, err := tx.Account(slotAddress)
			if nil != err {
				return err
			}
			if !account.Exists() || !account.OwnedBy(p.namespace) {
				return errors.Wrapf(fault.ErrBrokenChain, "slot: %s", slotAddress)
			}
			slot, err := record.UnpackSlot(account.Data)
			if nil != err {
				return errors.Wrapf(fault.ErrBrokenChain, "slot: %s: %s", slotAddress, err)
			}

			versions = append(versions, Version{
				Sequence: sequence,
				Address:  slotAddress,
				Slot:     slot,
			})

			if slotAddress == r.Current {
				break chain
			}

			slotAddress, _, err = NextSlotAddress(p.namespace, slotAddress)
			if nil != err {
				return err
			}
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	return versions, nil
}
