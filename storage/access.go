// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// Access - raw key/value operations of one database engine
//
// writes are staged between Begin and Commit; Get observes staged
// writes
type Access interface {
	Abort()
	Begin() error
	Close() error
	Commit() error
	Get([]byte) ([]byte, error)
	InUse() bool
	Iterate([]byte, []byte, func(key []byte, value []byte) error) error
	Put([]byte, []byte) error
}
