// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

type levelDBAccess struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
	batch *leveldb.Batch
	cache Cache
}

func openLevelDB(name string, readOnly bool) (*levelDBAccess, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, errors.Wrapf(err, "open leveldb: %q", name)
	}
	return newLevelDBAccess(db, newCache()), nil
}

func newLevelDBAccess(db *leveldb.DB, cache Cache) *levelDBAccess {
	return &levelDBAccess{
		inUse: false,
		db:    db,
		batch: new(leveldb.Batch),
		cache: cache,
	}
}

func (d *levelDBAccess) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return errAccessInUse
	}

	d.inUse = true
	return nil
}

func (d *levelDBAccess) Put(key []byte, value []byte) error {
	staged := make([]byte, len(value))
	copy(staged, value)
	d.cache.Set(string(key), staged)
	d.batch.Put(key, value)
	return nil
}

func (d *levelDBAccess) Commit() error {
	d.Lock()
	defer d.Unlock()

	err := d.db.Write(d.batch, nil)
	d.reset()
	return err
}

func (d *levelDBAccess) Abort() {
	d.Lock()
	defer d.Unlock()

	d.reset()
}

func (d *levelDBAccess) reset() {
	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
}

func (d *levelDBAccess) Get(key []byte) ([]byte, error) {
	value, found := d.cache.Get(string(key))
	if found {
		result := make([]byte, len(value))
		copy(result, value)
		return result, nil
	}

	value, err := d.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	return value, err
}

func (d *levelDBAccess) InUse() bool {
	d.Lock()
	defer d.Unlock()

	return d.inUse
}

// Iterate - committed records in [start, limit), nil limit runs to the end
func (d *levelDBAccess) Iterate(start []byte, limit []byte, f func(key []byte, value []byte) error) error {
	iter := d.db.NewIterator(&ldb_util.Range{Start: start, Limit: limit}, nil)

	var err error
iterating:
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())

		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())

		err = f(key, value)
		if nil != err {
			break iterating
		}
	}
	iter.Release()
	if nil == err {
		err = iter.Error()
	}
	return err
}

func (d *levelDBAccess) Close() error {
	return d.db.Close()
}
