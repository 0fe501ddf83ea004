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
	"github.com/bitmark-inc/slotstore/ledger"
)

type airdropReply struct {
	To     address.Address `json:"to"`
	Amount uint64          `json:"amount"`
	Total  uint64          `json:"total"`
}

type accountReply struct {
	Address address.Address `json:"address"`
	Exists  bool            `json:"exists"`
	Owner   address.Address `json:"owner"`
	Balance uint64          `json:"balance"`
	Size    int             `json:"size"`
	Data    string          `json:"data"`
}

func runAirdrop(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	to, err := addressFlag(c, "to")
	if nil != err {
		return err
	}
	amount := c.Uint64("amount")

	if m.verbose {
		fmt.Fprintf(m.e, "to: %s\n", to)
		fmt.Fprintf(m.e, "amount: %d\n", amount)
	}

	total, err := m.faucet.Airdrop(to, amount)
	if nil != err {
		return err
	}
	if 0 == amount {
		amount = m.config.Faucet.Amount
	}

	return printJson(m.w, airdropReply{
		To:     to,
		Amount: amount,
		Total:  total,
	})
}

func runBalance(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	a, err := addressFlag(c, "address")
	if nil != err {
		return err
	}

	var reply accountReply
	err = m.store.View(func(tx ledger.Transaction) error {
		account, err := tx.Account(a)
		if nil != err {
			return err
		}
		reply = accountReply{
			Address: account.Address,
			Exists:  account.Exists(),
			Owner:   account.Owner,
			Balance: account.Balance,
			Size:    len(account.Data),
			Data:    hex.EncodeToString(account.Data),
		}
		return nil
	})
	if nil != err {
		return err
	}

	return printJson(m.w, reply)
}
