// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/derive"
	"github.com/bitmark-inc/slotstore/fault"
	"github.com/bitmark-inc/slotstore/storage"
)

// Ledger - atomic access to accounts
type Ledger interface {
	Update(func(Transaction) error) error
	View(func(Transaction) error) error
}

// Transaction - account operations inside one atomic update
type Transaction interface {
	Account(address.Address) (*Account, error)
	CreateAccount(*CreateAccount) error
	Write(address.Address, address.Address, uint64, []byte) error
	Credit(address.Address, uint64) error
}

// CreateAccount - parameters to allocate a new account
//
// Seeds are the complete derivation seeds, including any bump, that
// produce Address under the Owner namespace
type CreateAccount struct {
	Payer   address.Address
	Address address.Address
	Owner   address.Address
	Seeds   [][]byte
	Size    uint64
	Funding uint64
}

// Store - a ledger backed by a storage database
type Store struct {
	log *logger.L
	db  *storage.Database
}

type transaction struct {
	log      *logger.L
	tx       storage.Transaction
	pool     *storage.PoolHandle
	faucet   *storage.PoolHandle
	readOnly bool
}

// New - create a ledger on an open database
func New(db *storage.Database, log *logger.L) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// Update - run fn in a read-write transaction
//
// the transaction commits only if fn returns nil; an error or a panic
// from fn aborts it
func (s *Store) Update(fn func(Transaction) error) error {
	return s.update(false, func(t *transaction) error {
		return fn(t)
	})
}

// View - run fn in a transaction that is always discarded
func (s *Store) View(fn func(Transaction) error) error {
	return s.update(true, func(t *transaction) error {
		return fn(t)
	})
}

func (s *Store) update(readOnly bool, fn func(*transaction) error) error {
	tx, err := s.db.Begin()
	if nil != err {
		return err
	}

	// no effect after a successful commit
	defer tx.Abort()

	t := &transaction{
		log:      s.log,
		tx:       tx,
		pool:     s.db.Pool.Accounts,
		faucet:   s.db.Pool.Faucet,
		readOnly: readOnly,
	}

	err = fn(t)
	if nil != err {
		s.log.Debugf("abort: %s", err)
		return err
	}

	if readOnly {
		return nil
	}
	return tx.Commit()
}

// Account - fetch an account
//
// a missing account is returned as unowned and empty, check Exists()
func (t *transaction) Account(a address.Address) (*Account, error) {
	buffer, err := t.tx.Get(t.pool, a[:])
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return newEmptyAccount(a), nil
	}
	return UnpackAccount(a, buffer)
}

func (t *transaction) put(account *Account) error {
	if t.readOnly {
		return fault.ErrReadOnly
	}
	account.exists = true
	return t.tx.Put(t.pool, account.Address[:], account.pack())
}

// CreateAccount - allocate, fund and assign a new account
//
// an address that has only been credited is still free: it keeps its
// balance and the funding is added to it
func (t *transaction) CreateAccount(arguments *CreateAccount) error {
	if arguments.Size > MaxAccountSize {
		return fault.ErrAccountTooLarge
	}

	derived, err := derive.CreateAddress(arguments.Seeds, arguments.Owner)
	if nil != err || derived != arguments.Address {
		t.log.Debugf("seeds for: %s derive: %s  error: %v", arguments.Address, derived, err)
		return fault.ErrSeedsMismatch
	}

	account, err := t.Account(arguments.Address)
	if nil != err {
		return err
	}
	if !account.OwnedBy(address.System) || !account.IsEmpty() {
		return fault.ErrAccountInUse
	}

	payer, err := t.Account(arguments.Payer)
	if nil != err {
		return err
	}
	if payer.Balance < arguments.Funding {
		return fault.ErrInsufficientFunds
	}
	if arguments.Funding > 0 {
		payer.Balance -= arguments.Funding
		if err := t.put(payer); nil != err {
			return err
		}
	}

	// re-read in case the payer is the account itself
	account, err = t.Account(arguments.Address)
	if nil != err {
		return err
	}
	balance := account.Balance + arguments.Funding
	if balance < account.Balance {
		return fault.ErrBalanceOverflow
	}

	account.Owner = arguments.Owner
	account.Balance = balance
	account.Data = make([]byte, arguments.Size)

	t.log.Debugf("create: %s  owner: %s  size: %d  funding: %d  balance: %d", account.Address, account.Owner, arguments.Size, arguments.Funding, balance)

	return t.put(account)
}

// Write - store data into an account at an offset
//
// only the owning namespace may write
func (t *transaction) Write(program address.Address, a address.Address, offset uint64, data []byte) error {
	account, err := t.Account(a)
	if nil != err {
		return err
	}
	if !account.Exists() {
		return fault.ErrAccountNotFound
	}
	if !account.OwnedBy(program) {
		return fault.ErrNotOwner
	}

	size := uint64(len(account.Data))
	if offset > size || uint64(len(data)) > size-offset {
		return fault.ErrWriteOutOfRange
	}

	copy(account.Data[offset:], data)
	return t.put(account)
}

// Credit - increase an account balance, creating the account if necessary
func (t *transaction) Credit(a address.Address, amount uint64) error {
	account, err := t.Account(a)
	if nil != err {
		return err
	}

	balance := account.Balance + amount
	if balance < account.Balance {
		return fault.ErrBalanceOverflow
	}
	account.Balance = balance
	return t.put(account)
}
