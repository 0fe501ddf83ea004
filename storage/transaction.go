// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/bitmark-inc/slotstore/fault"
)

// Transaction - staged writes applied atomically by Commit
//
// exactly one of Commit or Abort releases the database; calling
// Abort after Commit has no effect so it can always be deferred
type Transaction interface {
	Put(*PoolHandle, []byte, []byte) error
	PutN(*PoolHandle, []byte, uint64) error
	Get(*PoolHandle, []byte) ([]byte, error)
	GetN(*PoolHandle, []byte) (uint64, bool, error)
	Commit() error
	Abort()
}

type transaction struct {
	db       *Database
	finished bool
}

func (t *transaction) Put(handle *PoolHandle, key []byte, value []byte) error {
	if t.finished {
		return fault.ErrTransactionAborted
	}
	return t.db.access.Put(handle.prefixKey(key), value)
}

func (t *transaction) PutN(handle *PoolHandle, key []byte, value uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	return t.Put(handle, key, buffer)
}

// Get - nil if the key does not exist
func (t *transaction) Get(handle *PoolHandle, key []byte) ([]byte, error) {
	if t.finished {
		return nil, fault.ErrTransactionAborted
	}
	return t.db.access.Get(handle.prefixKey(key))
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second parameter is false if record was not found
func (t *transaction) GetN(handle *PoolHandle, key []byte) (uint64, bool, error) {
	buffer, err := t.Get(handle, key)
	if nil != err {
		return 0, false, err
	}
	if nil == buffer {
		return 0, false, nil
	}
	if len(buffer) < 8 {
		return 0, false, fmt.Errorf("pool.GetN truncated record for: %x: %x", key, buffer)
	}
	return binary.BigEndian.Uint64(buffer[:8]), true, nil
}

func (t *transaction) Commit() error {
	if t.finished {
		return fault.ErrTransactionAborted
	}
	t.finished = true
	defer t.db.Unlock()

	return t.db.access.Commit()
}

func (t *transaction) Abort() {
	if t.finished {
		return
	}
	t.finished = true
	defer t.db.Unlock()

	t.db.access.Abort()
}
