// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"sync"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// all pools share one bucket so the key layout matches LevelDB
var boltBucket = []byte("pools")

type boltAccess struct {
	sync.Mutex
	db       *bolt.DB
	tx       *bolt.Tx
	readOnly bool
}

func openBolt(name string, readOnly bool) (*boltAccess, error) {
	options := &bolt.Options{
		Timeout:  time.Second,
		ReadOnly: readOnly,
	}
	db, err := bolt.Open(name, 0600, options)
	if nil != err {
		return nil, errors.Wrapf(err, "open bbolt: %q", name)
	}

	if !readOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(boltBucket)
			return err
		})
		if nil != err {
			db.Close()
			return nil, errors.Wrap(err, "create bbolt bucket")
		}
	}

	return &boltAccess{
		db:       db,
		readOnly: readOnly,
	}, nil
}

func (d *boltAccess) Begin() error {
	d.Lock()
	defer d.Unlock()

	if nil != d.tx {
		return errAccessInUse
	}

	tx, err := d.db.Begin(!d.readOnly)
	if nil != err {
		return errors.Wrap(err, "begin bbolt transaction")
	}
	d.tx = tx
	return nil
}

func (d *boltAccess) bucket() (*bolt.Bucket, error) {
	if nil == d.tx {
		return nil, errNoTransaction
	}
	b := d.tx.Bucket(boltBucket)
	if nil == b {
		return nil, errNoBucket
	}
	return b, nil
}

func (d *boltAccess) Put(key []byte, value []byte) error {
	b, err := d.bucket()
	if nil != err {
		return err
	}

	// bbolt requires the value to stay valid until commit
	v := make([]byte, len(value))
	copy(v, value)
	return b.Put(key, v)
}

func (d *boltAccess) Commit() error {
	d.Lock()
	defer d.Unlock()

	if nil == d.tx {
		return errNoTransaction
	}
	var err error
	if d.tx.Writable() {
		err = d.tx.Commit()
	} else {
		err = d.tx.Rollback()
	}
	d.tx = nil
	return err
}

func (d *boltAccess) Abort() {
	d.Lock()
	defer d.Unlock()

	if nil != d.tx {
		_ = d.tx.Rollback()
		d.tx = nil
	}
}

func (d *boltAccess) Get(key []byte) ([]byte, error) {
	b, err := d.bucket()
	if nil != err {
		return nil, err
	}

	// value is only valid for the life of the transaction
	value := b.Get(key)
	if nil == value {
		return nil, nil
	}
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (d *boltAccess) InUse() bool {
	d.Lock()
	defer d.Unlock()

	return nil != d.tx
}

// Iterate - committed records in [start, limit), nil limit runs to the end
func (d *boltAccess) Iterate(start []byte, limit []byte, f func(key []byte, value []byte) error) error {
	return d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if nil == b {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(start); nil != k && (nil == limit || bytes.Compare(k, limit) < 0); k, v = c.Next() {
			key := make([]byte, len(k))
			copy(key, k)
			value := make([]byte, len(v))
			copy(value, v)
			if err := f(key, value); nil != err {
				return err
			}
		}
		return nil
	})
}

func (d *boltAccess) Close() error {
	d.Abort()
	return d.db.Close()
}
