// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/protocol"
	"github.com/bitmark-inc/slotstore/record"
)

type deriveReply struct {
	Namespace     address.Address `json:"namespace"`
	Caller        address.Address `json:"caller"`
	Key           string          `json:"key"`
	Reference     address.Address `json:"reference"`
	ReferenceBump byte            `json:"referenceBump"`
	InitialSlot   address.Address `json:"initialSlot"`
}

type updateReply struct {
	Reference address.Address `json:"reference"`
	Previous  address.Address `json:"previous"`
	Current   address.Address `json:"current"`
}

type getReply struct {
	Reference address.Address `json:"reference"`
	Present   bool            `json:"present"`
	Value     string          `json:"value"`
	Hex       string          `json:"hex"`
}

func runDerive(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := addressFlag(c, "caller")
	if nil != err {
		return err
	}
	key, err := bytesFlag(c, "key", "hex-key", false)
	if nil != err {
		return err
	}

	arguments, err := m.program.PrepareInit(caller, key)
	if nil != err {
		return err
	}
	reference, _, err := protocol.ReferenceAddress(m.program.Namespace(), caller, key)
	if nil != err {
		return err
	}

	return printJson(m.w, deriveReply{
		Namespace:     m.program.Namespace(),
		Caller:        caller,
		Key:           hex.EncodeToString(key),
		Reference:     reference,
		ReferenceBump: arguments.ReferenceBump,
		InitialSlot:   arguments.InitialSlot,
	})
}

func runInit(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := addressFlag(c, "caller")
	if nil != err {
		return err
	}
	key, err := bytesFlag(c, "key", "hex-key", false)
	if nil != err {
		return err
	}

	arguments, err := m.program.PrepareInit(caller, key)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "caller: %s\n", caller)
		fmt.Fprintf(m.e, "key: %x\n", key)
		fmt.Fprintf(m.e, "initial slot: %s\n", arguments.InitialSlot)
	}

	reference, err := m.program.Init(arguments)
	if nil != err {
		return err
	}

	return printJson(m.w, updateReply{
		Reference: reference,
		Current:   arguments.InitialSlot,
	})
}

func runSet(c *cli.Context) error {
	return runUpdate(c, true)
}

func runClear(c *cli.Context) error {
	return runUpdate(c, false)
}

func runUpdate(c *cli.Context, set bool) error {

	m := c.App.Metadata["config"].(*metadata)

	caller, err := addressFlag(c, "caller")
	if nil != err {
		return err
	}
	reference, err := addressFlag(c, "reference")
	if nil != err {
		return err
	}

	arguments, err := m.program.PrepareUpdate(caller, reference)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "reference: %s\n", reference)
		fmt.Fprintf(m.e, "current slot: %s\n", arguments.CurrentSlot)
		fmt.Fprintf(m.e, "next slot: %s\n", arguments.NextSlot)
	}

	if set {
		value, err := bytesFlag(c, "value", "hex-value", true)
		if nil != err {
			return err
		}
		err = m.program.Set(arguments, value)
		if nil != err {
			return err
		}
	} else {
		err = m.program.Clear(arguments)
		if nil != err {
			return err
		}
	}

	return printJson(m.w, updateReply{
		Reference: reference,
		Previous:  arguments.CurrentSlot,
		Current:   arguments.NextSlot,
	})
}

func newGetReply(reference address.Address, slot *record.Slot) getReply {
	return getReply{
		Reference: reference,
		Present:   slot.Present,
		Value:     string(slot.Payload),
		Hex:       hex.EncodeToString(slot.Payload),
	}
}

func runGet(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	reference, err := addressFlag(c, "reference")
	if nil != err {
		return err
	}

	slot, err := m.program.Get(reference)
	if nil != err {
		return err
	}

	return printJson(m.w, newGetReply(reference, slot))
}

func runHistory(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	reference, err := addressFlag(c, "reference")
	if nil != err {
		return err
	}

	versions, err := m.program.History(reference)
	if nil != err {
		return err
	}

	type historyItem struct {
		Sequence uint64          `json:"sequence"`
		Slot     address.Address `json:"slot"`
		getReply
	}

	reply := make([]historyItem, 0, len(versions))
	for _, v := range versions {
		reply = append(reply, historyItem{
			Sequence: v.Sequence,
			Slot:     v.Address,
			getReply: newGetReply(reference, v.Slot),
		})
	}

	return printJson(m.w, reply)
}
