// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/fault"
	"github.com/bitmark-inc/slotstore/ledger"
)

// default funding amounts
const (
	DefaultReferenceFunding = 100000
	DefaultInitialFunding   = 100000
	DefaultNextFunding      = 10000
)

// Configuration - amounts a caller pays into each new account
type Configuration struct {
	Reference uint64 `gluamapper:"reference" json:"reference"`
	Initial   uint64 `gluamapper:"initial" json:"initial"`
	Next      uint64 `gluamapper:"next" json:"next"`
}

// Validate - every account must be funded
func (c *Configuration) Validate() error {
	if 0 == c.Reference || 0 == c.Initial || 0 == c.Next {
		return fault.ErrZeroFunding
	}
	return nil
}

// Program - the slot store bound to one namespace
type Program struct {
	log       *logger.L
	namespace address.Address
	ledger    ledger.Ledger
	funding   Configuration
}

// New - create a program instance
func New(namespace address.Address, l ledger.Ledger, funding *Configuration, log *logger.L) *Program {
	return &Program{
		log:       log,
		namespace: namespace,
		ledger:    l,
		funding:   *funding,
	}
}

// Namespace - the program's namespace address
func (p *Program) Namespace() address.Address {
	return p.namespace
}
