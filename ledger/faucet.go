// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/fault"
)

// FaucetConfiguration - airdrop limits
type FaucetConfiguration struct {
	Rate   float64 `gluamapper:"rate" json:"rate"`
	Burst  int     `gluamapper:"burst" json:"burst"`
	Amount uint64  `gluamapper:"amount" json:"amount"`
}

// Faucet - credits new funds to wallets
//
// the rate limit is held in memory and applies per Faucet instance, so
// each run of a one-shot command starts with a full burst; only the
// airdropped totals are persisted
type Faucet struct {
	log     *logger.L
	store   *Store
	limiter *rate.Limiter
	amount  uint64
}

// NewFaucet - create a rate limited faucet
func NewFaucet(store *Store, configuration *FaucetConfiguration, log *logger.L) *Faucet {
	return &Faucet{
		log:     log,
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(configuration.Rate), configuration.Burst),
		amount:  configuration.Amount,
	}
}

// Airdrop - credit an address, zero amount uses the configured amount
//
// returns the new total airdropped to the address
func (f *Faucet) Airdrop(to address.Address, amount uint64) (uint64, error) {
	if 0 == amount {
		amount = f.amount
	}
	if 0 == amount {
		return 0, fault.ErrZeroFunding
	}

	if !f.limiter.Allow() {
		f.log.Warnf("airdrop to: %s rate limited", to)
		return 0, fault.ErrRateLimited
	}

	total := uint64(0)
	err := f.store.update(false, func(t *transaction) error {
		err := t.Credit(to, amount)
		if nil != err {
			return err
		}

		previous, _, err := t.tx.GetN(t.faucet, to[:])
		if nil != err {
			return err
		}
		total = previous + amount
		if total < previous {
			return fault.ErrBalanceOverflow
		}
		return t.tx.PutN(t.faucet, to[:], total)
	})
	if nil != err {
		return 0, err
	}

	f.log.Infof("airdrop to: %s  amount: %d  total: %d", to, amount, total)
	return total, nil
}

// Total - the amount airdropped to an address so far
func (f *Faucet) Total(to address.Address) (uint64, error) {
	total := uint64(0)
	err := f.store.update(true, func(t *transaction) error {
		n, _, err := t.tx.GetN(t.faucet, to[:])
		total = n
		return err
	})
	return total, err
}
