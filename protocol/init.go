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

// InitArguments - everything a caller supplies to create a key
type InitArguments struct {
	Caller        address.Address `json:"caller"`
	Key           []byte          `json:"key"`
	ReferenceBump byte            `json:"referenceBump"`
	InitialSlot   address.Address `json:"initialSlot"`
}

// PrepareInit - compute the arguments for Init
func (p *Program) PrepareInit(caller address.Address, key []byte) (*InitArguments, error) {
	reference, bump, err := ReferenceAddress(p.namespace, caller, key)
	if nil != err {
		return nil, err
	}
	initial, _, err := InitialSlotAddress(p.namespace, reference)
	if nil != err {
		return nil, err
	}

	k := make([]byte, len(key))
	copy(k, key)

	return &InitArguments{
		Caller:        caller,
		Key:           k,
		ReferenceBump: bump,
		InitialSlot:   initial,
	}, nil
}

// Init - create the reference record for a key and its empty first slot
//
// returns the reference address; a key can only be initialised once
func (p *Program) Init(arguments *InitArguments) (address.Address, error) {
	seeds, err := referenceSeeds(arguments.Caller, arguments.Key)
	if nil != err {
		return address.Address{}, err
	}

	_, bump, err := derive.FindAddress(seeds, p.namespace)
	if nil != err {
		return address.Address{}, err
	}
	if bump != arguments.ReferenceBump {
		return address.Address{}, fault.ErrBumpMismatch
	}
	signerSeeds := derive.WithBump(seeds, bump)
	reference, err := derive.CreateAddress(signerSeeds, p.namespace)
	if nil != err {
		return address.Address{}, err
	}

	initial, initialBump, err := InitialSlotAddress(p.namespace, reference)
	if nil != err {
		return address.Address{}, err
	}
	if initial != arguments.InitialSlot {
		return address.Address{}, fault.ErrAddressMismatch
	}

	err = p.ledger.Update(func(tx ledger.Transaction) error {

		referenceAccount, err := tx.Account(reference)
		if nil != err {
			return err
		}
		if !referenceAccount.OwnedBy(address.System) || !referenceAccount.IsEmpty() {
			return fault.ErrReferenceExists
		}

		if err := checkFreeSlot(tx, initial); nil != err {
			return err
		}

		err = tx.CreateAccount(&ledger.CreateAccount{
			Payer:   arguments.Caller,
			Address: initial,
			Owner:   p.namespace,
			Seeds:   derive.WithBump(initialSeeds(reference), initialBump),
			Size:    record.SlotHeaderBytes,
			Funding: p.funding.Initial,
		})
		if nil != err {
			return err
		}

		err = tx.CreateAccount(&ledger.CreateAccount{
			Payer:   arguments.Caller,
			Address: reference,
			Owner:   p.namespace,
			Seeds:   signerSeeds,
			Size:    record.ReferenceSize,
			Funding: p.funding.Reference,
		})
		if nil != err {
			return err
		}

		r := record.Reference{
			Current: initial,
		}
		return tx.Write(p.namespace, reference, 0, r.Pack())
	})
	if nil != err {
		p.log.Debugf("init caller: %s  key: %x  error: %s", arguments.Caller, arguments.Key, err)
		return address.Address{}, err
	}

	p.log.Infof("init reference: %s  initial slot: %s", reference, initial)
	return reference, nil
}

// a slot about to be allocated must hold no data and have no owner
//
// data is checked first: every allocated slot holds at least its flag
// byte, so a replayed update or the loser of a race on the same current
// slot reports ErrSlotNotEmpty; ErrSlotAlreadyOwned is left for a
// zero size account assigned to some other namespace
func checkFreeSlot(tx ledger.Transaction, slot address.Address) error {
	account, err := tx.Account(slot)
	if nil != err {
		return err
	}
	if !account.IsEmpty() {
		return fault.ErrSlotNotEmpty
	}
	if !account.OwnedBy(address.System) {
		return fault.ErrSlotAlreadyOwned
	}
	return nil
}
