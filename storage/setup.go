// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/bitmark-inc/slotstore/fault"
)

// supported database engines
const (
	LevelDB = "leveldb"
	BoltDB  = "bbolt"
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Accounts *PoolHandle `prefix:"A"`
	Faucet   *PoolHandle `prefix:"F"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

var (
	errAccessInUse   = errors.New("database access already in use")
	errNoTransaction = errors.New("no transaction in progress")
	errNoBucket      = errors.New("bucket does not exist")
)

// Database - one open data store
//
// the embedded mutex is held for the life of a transaction
type Database struct {
	sync.Mutex
	Pool   pools
	engine string
	access Access
}

// Engines - list of supported database engines
func Engines() []string {
	return []string{LevelDB, BoltDB}
}

// Open - open or create a database
func Open(engine string, name string, readOnly bool) (*Database, error) {
	var access Access
	switch engine {
	case LevelDB:
		a, err := openLevelDB(name, readOnly)
		if nil != err {
			return nil, err
		}
		access = a
	case BoltDB:
		a, err := openBolt(name, readOnly)
		if nil != err {
			return nil, err
		}
		access = a
	default:
		return nil, fault.ErrInvalidEngine
	}

	db, err := newDatabase(engine, access, readOnly)
	if nil != err {
		access.Close()
		return nil, err
	}
	return db, nil
}

func newDatabase(engine string, access Access, readOnly bool) (*Database, error) {
	db := &Database{
		engine: engine,
		access: access,
	}

	if err := db.checkVersion(readOnly); nil != err {
		return nil, err
	}

	// this will be a struct type
	poolType := reflect.TypeOf(db.Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&db.Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix:     prefix,
			limit:      limit,
			dataAccess: access,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	return db, nil
}

// tag an empty database with the current version, reject any other version
func (db *Database) checkVersion(readOnly bool) error {
	if err := db.access.Begin(); nil != err {
		return err
	}

	versionValue, err := db.access.Get(versionKey)
	if nil != err {
		db.access.Abort()
		return err
	}

	if nil == versionValue {
		if readOnly {
			db.access.Abort()
			return fault.ErrNotInitialised
		}
		currentVersion := make([]byte, 4)
		binary.BigEndian.PutUint32(currentVersion, currentDBVersion)
		if err := db.access.Put(versionKey, currentVersion); nil != err {
			db.access.Abort()
			return err
		}
		return db.access.Commit()
	}
	db.access.Abort()

	if 4 != len(versionValue) || currentDBVersion != binary.BigEndian.Uint32(versionValue) {
		return fault.ErrDatabaseVersion
	}
	return nil
}

// Engine - name of the database engine in use
func (db *Database) Engine() string {
	return db.engine
}

// Begin - start a transaction
//
// blocks until any other transaction has finished
func (db *Database) Begin() (Transaction, error) {
	db.Lock()
	if err := db.access.Begin(); nil != err {
		db.Unlock()
		return nil, err
	}
	return &transaction{
		db: db,
	}, nil
}

// Close - close the database
//
// waits for any transaction in progress to finish
func (db *Database) Close() error {
	db.Lock()
	defer db.Unlock()

	return db.access.Close()
}
