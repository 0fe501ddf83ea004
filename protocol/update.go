// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/derive"
	"github.com/bitmark-inc/slotstore/fault"
	"github.com/bitmark-inc/slotstore/ledger"
	"github.com/bitmark-inc/slotstore/record"
)

// UpdateArguments - the accounts involved in moving a key to a new version
type UpdateArguments struct {
	Caller      address.Address `json:"caller"`
	Reference   address.Address `json:"reference"`
	CurrentSlot address.Address `json:"currentSlot"`
	NextSlot    address.Address `json:"nextSlot"`
}

// PrepareUpdate - compute the arguments for Set or Clear from the
// reference's current state
func (p *Program) PrepareUpdate(caller address.Address, reference address.Address) (*UpdateArguments, error) {
	current := address.Address{}
	err := p.ledger.View(func(tx ledger.Transaction) error {
		r, err := p.readReference(tx, reference)
		if nil != err {
			return err
		}
		current = r.Current
		return nil
	})
	if nil != err {
		return nil, err
	}

	next, _, err := NextSlotAddress(p.namespace, current)
	if nil != err {
		return nil, err
	}

	return &UpdateArguments{
		Caller:      caller,
		Reference:   reference,
		CurrentSlot: current,
		NextSlot:    next,
	}, nil
}

// Set - store a value as the new version of a key
func (p *Program) Set(arguments *UpdateArguments, value []byte) error {
	return p.update(arguments, value, true)
}

// Clear - make the new version of a key absent
func (p *Program) Clear(arguments *UpdateArguments) error {
	return p.update(arguments, nil, false)
}

func (p *Program) update(arguments *UpdateArguments, value []byte, present bool) error {
	seeds := nextSeeds(arguments.CurrentSlot)
	next, bump, err := derive.FindAddress(seeds, p.namespace)
	if nil != err {
		return err
	}
	if next != arguments.NextSlot {
		return fault.ErrAddressMismatch
	}

	size := uint64(record.SlotHeaderBytes)
	if present {
		size = record.SlotSize(value)
	}

	err = p.ledger.Update(func(tx ledger.Transaction) error {

		current, err := tx.Account(arguments.CurrentSlot)
		if nil != err {
			return err
		}
		if !current.Exists() || !current.OwnedBy(p.namespace) {
			return fault.ErrSlotNotOwned
		}

		if err := checkFreeSlot(tx, next); nil != err {
			return err
		}

		r, err := p.readReference(tx, arguments.Reference)
		if nil != err {
			return err
		}
		if r.Current != arguments.CurrentSlot {
			return fault.ErrStaleReference
		}

		err = tx.CreateAccount(&ledger.CreateAccount{
			Payer:   arguments.Caller,
			Address: next,
			Owner:   p.namespace,
			Seeds:   derive.WithBump(seeds, bump),
			Size:    size,
			Funding: p.funding.Next,
		})
		if nil != err {
			return err
		}

		if present {
			buffer := make([]byte, size)
			if err := record.PackSlot(buffer, value); nil != err {
				return err
			}
			if err := tx.Write(p.namespace, next, 0, buffer); nil != err {
				return err
			}
		} else {
			slot, err := tx.Account(next)
			if nil != err {
				return err
			}
			if record.SlotHeaderBytes != len(slot.Data) || record.Empty != slot.Data[0] {
				fault.Panicf("fresh slot: %s is not empty: %x", next, slot.Data)
			}
		}

		r.Current = next
		return tx.Write(p.namespace, arguments.Reference, 0, r.Pack())
	})
	if nil != err {
		p.log.Debugf("update reference: %s  current: %s  error: %s", arguments.Reference, arguments.CurrentSlot, err)
		return err
	}

	if present {
		p.log.Infof("set reference: %s  slot: %s  bytes: %d", arguments.Reference, next, len(value))
	} else {
		p.log.Infof("clear reference: %s  slot: %s", arguments.Reference, next)
	}
	return nil
}

// read and decode a program owned reference record
func (p *Program) readReference(tx ledger.Transaction, reference address.Address) (*record.Reference, error) {
	account, err := tx.Account(reference)
	if nil != err {
		return nil, err
	}
	if !account.Exists() {
		return nil, fault.ErrReferenceNotFound
	}
	if !account.OwnedBy(p.namespace) {
		return nil, fault.ErrNotOwner
	}
	return record.UnpackReference(account.Data)
}
