// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// PoolHandle - one prefixed table
type PoolHandle struct {
	prefix     byte
	limit      []byte // first key past the pool, nil for the last prefix
	dataAccess Access
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Prefix - the pool's prefix byte
func (p *PoolHandle) Prefix() byte {
	return p.prefix
}

// Map - run a function on all committed elements of the pool
//
// keys passed to f have the prefix stripped
func (p *PoolHandle) Map(f func(key []byte, value []byte) error) error {
	if nil == p.dataAccess {
		return nil
	}
	return p.dataAccess.Iterate([]byte{p.prefix}, p.limit, func(key []byte, value []byte) error {
		return f(key[1:], value)
	})
}

// Elements - all committed elements of the pool
func (p *PoolHandle) Elements() ([]Element, error) {
	results := make([]Element, 0, 16)
	err := p.Map(func(key []byte, value []byte) error {
		results = append(results, Element{
			Key:   key,
			Value: value,
		})
		return nil
	})
	return results, err
}
