// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/fault"
	"github.com/bitmark-inc/slotstore/ledger"
	"github.com/bitmark-inc/slotstore/protocol"
	"github.com/bitmark-inc/slotstore/record"
	"github.com/bitmark-inc/slotstore/storage"
)

func TestAliceScenario(t *testing.T) {
	for _, engine := range storage.Engines() {
		p := setupTestProgram(t, engine)

		reference := initKey(t, p, "alice")

		s0, _, err := protocol.InitialSlotAddress(namespace, reference)
		require.Nil(t, err, engine)

		slot, err := p.Get(reference)
		require.Nil(t, err, engine)
		assert.False(t, slot.Present, engine)

		// set "hello"
		arguments, err := p.PrepareUpdate(caller, reference)
		require.Nil(t, err, engine)
		assert.Equal(t, s0, arguments.CurrentSlot, engine)
		s1 := arguments.NextSlot
		require.Nil(t, p.Set(arguments, []byte("hello")), engine)

		slot, err = p.Get(reference)
		require.Nil(t, err, engine)
		assert.True(t, slot.Present, engine)
		assert.Equal(t, []byte("hello"), slot.Payload, engine)

		// s0 retained, still empty
		account := readSlot(t, p, s0)
		assert.True(t, account.OwnedBy(namespace), engine)
		assert.Equal(t, []byte{record.Empty}, account.Data, engine)

		// set "hello world"
		arguments, err = p.PrepareUpdate(caller, reference)
		require.Nil(t, err, engine)
		assert.Equal(t, s1, arguments.CurrentSlot, engine)
		s2 := arguments.NextSlot
		require.Nil(t, p.Set(arguments, []byte("hello world")), engine)

		slot, err = p.Get(reference)
		require.Nil(t, err, engine)
		assert.True(t, slot.Present, engine)
		assert.Equal(t, []byte("hello world"), slot.Payload, engine)

		account = readSlot(t, p, s1)
		assert.Equal(t, append([]byte{record.HaveValue}, "hello"...), account.Data, "s1 changed: %s", engine)

		// clear
		arguments, err = p.PrepareUpdate(caller, reference)
		require.Nil(t, err, engine)
		assert.Equal(t, s2, arguments.CurrentSlot, engine)
		s3 := arguments.NextSlot
		require.Nil(t, p.Clear(arguments), engine)

		slot, err = p.Get(reference)
		require.Nil(t, err, engine)
		assert.False(t, slot.Present, engine)
		assert.Equal(t, 0, len(slot.Payload), engine)

		// chain re-derivation reproduces the addresses
		next, _, err := protocol.NextSlotAddress(namespace, s0)
		assert.Nil(t, err, engine)
		assert.Equal(t, s1, next, engine)
		next, _, err = protocol.NextSlotAddress(namespace, s1)
		assert.Nil(t, err, engine)
		assert.Equal(t, s2, next, engine)
		next, _, err = protocol.NextSlotAddress(namespace, s2)
		assert.Nil(t, err, engine)
		assert.Equal(t, s3, next, engine)

		history, err := p.History(reference)
		require.Nil(t, err, engine)
		require.Equal(t, 4, len(history), engine)
		assert.Equal(t, []address.Address{s0, s1, s2, s3}, []address.Address{history[0].Address, history[1].Address, history[2].Address, history[3].Address}, engine)
		assert.False(t, history[0].Slot.Present, engine)
		assert.Equal(t, []byte("hello"), history[1].Slot.Payload, engine)
		assert.Equal(t, []byte("hello world"), history[2].Slot.Payload, engine)
		assert.False(t, history[3].Slot.Present, engine)
		assert.Equal(t, uint64(3), history[3].Sequence, engine)

		p.close()
	}
}

func TestDeterministicDerivation(t *testing.T) {
	r1, b1, err := protocol.ReferenceAddress(namespace, caller, []byte("alice"))
	assert.Nil(t, err)
	r2, b2, err := protocol.ReferenceAddress(namespace, caller, []byte("alice"))
	assert.Nil(t, err)
	assert.Equal(t, r1, r2)
	assert.Equal(t, b1, b2)

	other, _, err := protocol.ReferenceAddress(namespace, caller, []byte("bob"))
	assert.Nil(t, err)
	assert.NotEqual(t, r1, other, "distinct keys share a reference")

	i1, _, err := protocol.InitialSlotAddress(namespace, r1)
	assert.Nil(t, err)
	n1, _, err := protocol.NextSlotAddress(namespace, r1)
	assert.Nil(t, err)
	assert.NotEqual(t, i1, n1, "tags do not separate derivations")

	// a second namespace is independent
	i2, _, err := protocol.InitialSlotAddress(address.Address{1}, r1)
	assert.Nil(t, err)
	assert.NotEqual(t, i1, i2)

	_, _, err = protocol.ReferenceAddress(namespace, caller, bytes.Repeat([]byte{'k'}, 33))
	assert.Equal(t, fault.ErrKeyTooLong, err)
}

func TestPayloadRoundTrip(t *testing.T) {
	p := setupTestProgram(t, storage.LevelDB)
	defer p.close()

	reference := initKey(t, p, "payload")

	for _, n := range []int{0, 1, 2, 31, 32, 33, 255, 1024, 65536} {
		value := make([]byte, n)
		for i := range value {
			value[i] = byte(i * 7)
		}

		arguments, err := p.PrepareUpdate(caller, reference)
		require.Nil(t, err, "length: %d", n)
		require.Nil(t, p.Set(arguments, value), "length: %d", n)

		slot, err := p.Get(reference)
		require.Nil(t, err, "length: %d", n)
		assert.True(t, slot.Present, "length: %d", n)
		assert.Equal(t, value, slot.Payload, "length: %d", n)

		account := readSlot(t, p, arguments.NextSlot)
		assert.Equal(t, n+record.SlotHeaderBytes, len(account.Data), "length: %d", n)
	}
}

func TestClearAfterClear(t *testing.T) {
	p := setupTestProgram(t, storage.BoltDB)
	defer p.close()

	reference := initKey(t, p, "clear")

	for i := 0; i < 2; i += 1 {
		arguments, err := p.PrepareUpdate(caller, reference)
		require.Nil(t, err)
		require.Nil(t, p.Clear(arguments))

		account := readSlot(t, p, arguments.NextSlot)
		assert.Equal(t, []byte{record.Empty}, account.Data)
	}

	history, err := p.History(reference)
	require.Nil(t, err)
	assert.Equal(t, 3, len(history))
}

func TestInitTwice(t *testing.T) {
	for _, engine := range storage.Engines() {
		p := setupTestProgram(t, engine)

		initKey(t, p, "twice")

		arguments, err := p.PrepareInit(caller, []byte("twice"))
		require.Nil(t, err, engine)
		_, err = p.Init(arguments)
		assert.Equal(t, fault.ErrReferenceExists, err, engine)

		p.close()
	}
}

func TestInitMismatches(t *testing.T) {
	p := setupTestProgram(t, storage.LevelDB)
	defer p.close()

	arguments, err := p.PrepareInit(caller, []byte("mismatch"))
	require.Nil(t, err)

	badBump := *arguments
	badBump.ReferenceBump -= 1
	_, err = p.Init(&badBump)
	assert.Equal(t, fault.ErrBumpMismatch, err)

	badSlot := *arguments
	badSlot.InitialSlot = address.Address{0x42}
	_, err = p.Init(&badSlot)
	assert.Equal(t, fault.ErrAddressMismatch, err)

	longKey := *arguments
	longKey.Key = bytes.Repeat([]byte{'x'}, 33)
	_, err = p.Init(&longKey)
	assert.Equal(t, fault.ErrKeyTooLong, err)

	// nothing was charged
	assert.Equal(t, uint64(startingBalance), p.balance(t, caller))

	_, err = p.Init(arguments)
	assert.Nil(t, err)
	assert.Equal(t, uint64(startingBalance-protocol.DefaultInitialFunding-protocol.DefaultReferenceFunding), p.balance(t, caller))
}

func TestInitInsufficientFunds(t *testing.T) {
	p := setupTestProgram(t, storage.BoltDB)
	defer p.close()

	poor := address.Address{0x0f}
	arguments, err := p.PrepareInit(poor, []byte("poor"))
	require.Nil(t, err)

	_, err = p.Init(arguments)
	assert.Equal(t, fault.ErrInsufficientFunds, err)

	// the initial slot allocation was rolled back with the rest
	account := readSlot(t, p, arguments.InitialSlot)
	assert.False(t, account.Exists())
}

func TestSetInsufficientFunds(t *testing.T) {
	for _, engine := range storage.Engines() {
		p := setupTestProgram(t, engine)

		reference := initKey(t, p, "unpaid")

		poor := address.Address{0x0f}
		arguments, err := p.PrepareUpdate(poor, reference)
		require.Nil(t, err, engine)

		assert.Equal(t, fault.ErrInsufficientFunds, p.Set(arguments, []byte("value")), engine)
		assert.Equal(t, fault.ErrInsufficientFunds, p.Clear(arguments), engine)

		// no slot was allocated and the reference did not move
		assert.False(t, readSlot(t, p, arguments.NextSlot).Exists(), engine)
		slot, err := p.Get(reference)
		require.Nil(t, err, engine)
		assert.False(t, slot.Present, engine)

		// a funded caller can still advance the same key
		arguments.Caller = caller
		assert.Nil(t, p.Set(arguments, []byte("value")), engine)

		p.close()
	}
}

func TestPrefundedSlots(t *testing.T) {
	for _, engine := range storage.Engines() {
		p := setupTestProgram(t, engine)

		credit := func(a address.Address) {
			err := p.store.Update(func(tx ledger.Transaction) error {
				return tx.Credit(a, 1)
			})
			require.Nil(t, err, engine)
		}

		arguments, err := p.PrepareInit(caller, []byte("prefunded"))
		require.Nil(t, err, engine)
		reference, _, err := protocol.ReferenceAddress(namespace, caller, []byte("prefunded"))
		require.Nil(t, err, engine)

		// anyone can credit a derived address before it is allocated
		credit(arguments.InitialSlot)
		credit(reference)

		r, err := p.Init(arguments)
		require.Nil(t, err, engine)
		assert.Equal(t, reference, r, engine)
		assert.Equal(t, uint64(protocol.DefaultInitialFunding+1), p.balance(t, arguments.InitialSlot), engine)
		assert.Equal(t, uint64(protocol.DefaultReferenceFunding+1), p.balance(t, reference), engine)

		set, err := p.PrepareUpdate(caller, reference)
		require.Nil(t, err, engine)
		credit(set.NextSlot)

		next := readSlot(t, p, set.NextSlot)
		assert.True(t, next.OwnedBy(address.System), engine)
		assert.True(t, next.IsEmpty(), engine)

		require.Nil(t, p.Set(set, []byte("value")), engine)
		assert.Equal(t, uint64(protocol.DefaultNextFunding+1), p.balance(t, set.NextSlot), engine)

		cleared, err := p.PrepareUpdate(caller, reference)
		require.Nil(t, err, engine)
		credit(cleared.NextSlot)
		require.Nil(t, p.Clear(cleared), engine)

		slot, err := p.Get(reference)
		require.Nil(t, err, engine)
		assert.False(t, slot.Present, engine)

		history, err := p.History(reference)
		require.Nil(t, err, engine)
		assert.Equal(t, 3, len(history), engine)

		p.close()
	}
}

func TestUpdateMismatches(t *testing.T) {
	for _, engine := range storage.Engines() {
		p := setupTestProgram(t, engine)

		reference := initKey(t, p, "update")
		other := initKey(t, p, "other")

		arguments, err := p.PrepareUpdate(caller, reference)
		require.Nil(t, err, engine)

		wrongNext := *arguments
		wrongNext.NextSlot = address.Address{0x42}
		assert.Equal(t, fault.ErrAddressMismatch, p.Set(&wrongNext, []byte("x")), engine)

		// current slot that was never allocated
		unowned := *arguments
		unowned.CurrentSlot = address.Address{0x43}
		unowned.NextSlot, _, err = protocol.NextSlotAddress(namespace, unowned.CurrentSlot)
		require.Nil(t, err, engine)
		assert.Equal(t, fault.ErrSlotNotOwned, p.Set(&unowned, []byte("x")), engine)

		// a valid slot chain belonging to a different reference
		foreign, err := p.PrepareUpdate(caller, other)
		require.Nil(t, err, engine)
		foreign.Reference = reference
		assert.Equal(t, fault.ErrStaleReference, p.Set(foreign, []byte("x")), engine)

		missing := *arguments
		missing.Reference = address.Address{0x44}
		assert.Equal(t, fault.ErrReferenceNotFound, p.Set(&missing, []byte("x")), engine)

		// a slot address is not a reference
		notReference := *arguments
		notReference.Reference = arguments.CurrentSlot
		assert.True(t, fault.IsErrRecord(p.Set(&notReference, []byte("x"))), engine)

		// unchanged by the failures
		slot, err := p.Get(reference)
		require.Nil(t, err, engine)
		assert.False(t, slot.Present, engine)

		p.close()
	}
}

func TestWriteOnce(t *testing.T) {
	for _, engine := range storage.Engines() {
		p := setupTestProgram(t, engine)

		reference := initKey(t, p, "once")

		arguments, err := p.PrepareUpdate(caller, reference)
		require.Nil(t, err, engine)
		require.Nil(t, p.Set(arguments, []byte("first")), engine)

		// replaying the same update targets an allocated slot
		err = p.Set(arguments, []byte("second"))
		assert.True(t, fault.IsErrExists(err), "replay error: %v  engine: %s", err, engine)
		assert.Equal(t, fault.ErrSlotNotEmpty, err, engine)

		err = p.Clear(arguments)
		assert.Equal(t, fault.ErrSlotNotEmpty, err, engine)

		slot, err := p.Get(reference)
		require.Nil(t, err, engine)
		assert.Equal(t, []byte("first"), slot.Payload, engine)

		p.close()
	}
}

func TestUpdateFromOlderSlot(t *testing.T) {
	p := setupTestProgram(t, storage.LevelDB)
	defer p.close()

	reference := initKey(t, p, "older")

	first, err := p.PrepareUpdate(caller, reference)
	require.Nil(t, err)
	require.Nil(t, p.Set(first, []byte("one")))

	second, err := p.PrepareUpdate(caller, reference)
	require.Nil(t, err)
	require.Nil(t, p.Set(second, []byte("two")))

	// every superseded slot already has its successor
	assert.Equal(t, fault.ErrSlotNotEmpty, p.Set(first, []byte("x")))
	assert.Equal(t, fault.ErrSlotNotEmpty, p.Clear(second))

	slot, err := p.Get(reference)
	require.Nil(t, err)
	assert.Equal(t, []byte("two"), slot.Payload)
}

func TestRace(t *testing.T) {
	for _, engine := range storage.Engines() {
		p := setupTestProgram(t, engine)

		reference := initKey(t, p, "race")

		arguments, err := p.PrepareUpdate(caller, reference)
		require.Nil(t, err, engine)

		const racers = 4
		results := make([]error, racers)

		var wg sync.WaitGroup
		for i := 0; i < racers; i += 1 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a := *arguments
				results[i] = p.Set(&a, []byte{byte('a' + i)})
			}(i)
		}
		wg.Wait()

		winner := -1
		for i, err := range results {
			if nil == err {
				assert.Equal(t, -1, winner, "more than one winner: %s", engine)
				winner = i
			} else {
				assert.Equal(t, fault.ErrSlotNotEmpty, err, engine)
			}
		}
		require.NotEqual(t, -1, winner, "no winner: %s", engine)

		slot, err := p.Get(reference)
		require.Nil(t, err, engine)
		assert.Equal(t, []byte{byte('a' + winner)}, slot.Payload, engine)

		history, err := p.History(reference)
		require.Nil(t, err, engine)
		assert.Equal(t, 2, len(history), engine)
		assert.Equal(t, arguments.NextSlot, history[1].Address, engine)

		p.close()
	}
}

func TestGetMissing(t *testing.T) {
	p := setupTestProgram(t, storage.LevelDB)
	defer p.close()

	_, err := p.Get(address.Address{0x01})
	assert.Equal(t, fault.ErrReferenceNotFound, err)

	_, err = p.History(address.Address{0x01})
	assert.Equal(t, fault.ErrReferenceNotFound, err)

	_, err = p.PrepareUpdate(caller, address.Address{0x01})
	assert.Equal(t, fault.ErrReferenceNotFound, err)
}

func TestConfigurationValidate(t *testing.T) {
	assert.Nil(t, defaultFunding.Validate())

	c := defaultFunding
	c.Next = 0
	assert.Equal(t, fault.ErrZeroFunding, c.Validate())
}
