// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/fault"
)

const (
	balanceBytes = 8
	headerBytes  = address.Length + balanceBytes

	// MaxAccountSize - largest data area an account may allocate
	MaxAccountSize = 10 * 1024 * 1024
)

// Account - the state of one ledger address
type Account struct {
	Address address.Address `json:"address"`
	Owner   address.Address `json:"owner"`
	Balance uint64          `json:"balance"`
	Data    []byte          `json:"data"`
	exists  bool
}

// missing accounts read as unowned, unfunded and empty
func newEmptyAccount(a address.Address) *Account {
	return &Account{
		Address: a,
		Owner:   address.System,
		Balance: 0,
		Data:    []byte{},
		exists:  false,
	}
}

// Exists - true if the account has been created or credited
func (account *Account) Exists() bool {
	return account.exists
}

// OwnedBy - true if the namespace may write this account
func (account *Account) OwnedBy(namespace address.Address) bool {
	return account.Owner == namespace
}

// IsEmpty - true if no data area has been allocated
func (account *Account) IsEmpty() bool {
	return 0 == len(account.Data)
}

// pack - owner ++ balance ++ data
func (account *Account) pack() []byte {
	buffer := make([]byte, headerBytes+len(account.Data))
	copy(buffer, account.Owner[:])
	binary.BigEndian.PutUint64(buffer[address.Length:], account.Balance)
	copy(buffer[headerBytes:], account.Data)
	return buffer
}

// UnpackAccount - decode a stored account record
func UnpackAccount(a address.Address, buffer []byte) (*Account, error) {
	if len(buffer) < headerBytes {
		return nil, fault.ErrTruncatedRecord
	}

	owner, err := address.New(buffer[:address.Length])
	if nil != err {
		return nil, err
	}

	data := make([]byte, len(buffer)-headerBytes)
	copy(data, buffer[headerBytes:])

	return &Account{
		Address: a,
		Owner:   owner,
		Balance: binary.BigEndian.Uint64(buffer[address.Length:headerBytes]),
		Data:    data,
		exists:  true,
	}, nil
}
