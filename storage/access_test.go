// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/slotstore/storage/mocks"
)

func setupTestDatabase(t *testing.T) (*Database, *mocks.MockAccess, *gomock.Controller) {
	ctl := gomock.NewController(t)
	mock := mocks.NewMockAccess(ctl)

	db := &Database{
		engine: "mock",
		access: mock,
	}
	return db, mock, ctl
}

func TestBeginFailureReleasesLock(t *testing.T) {
	db, mock, ctl := setupTestDatabase(t)
	defer ctl.Finish()

	mock.EXPECT().Begin().Return(errAccessInUse).Times(1)
	mock.EXPECT().Begin().Return(nil).Times(1)
	mock.EXPECT().Abort().Times(1)

	_, err := db.Begin()
	assert.Equal(t, errAccessInUse, err, "wrong error")

	// would deadlock if the failed Begin kept the lock
	tx, err := db.Begin()
	assert.Nil(t, err, "second begin")
	tx.Abort()
}

func TestCommitErrorReleasesLock(t *testing.T) {
	db, mock, ctl := setupTestDatabase(t)
	defer ctl.Finish()

	commitError := errors.New("disk full")

	gomock.InOrder(
		mock.EXPECT().Begin().Return(nil),
		mock.EXPECT().Put([]byte("Akey"), []byte("value")).Return(nil),
		mock.EXPECT().Commit().Return(commitError),
		mock.EXPECT().Begin().Return(nil),
		mock.EXPECT().Get([]byte("Fkey")).Return(nil, nil),
		mock.EXPECT().Abort(),
	)

	db.Pool.Accounts = &PoolHandle{prefix: 'A', dataAccess: mock}
	db.Pool.Faucet = &PoolHandle{prefix: 'F', dataAccess: mock}

	tx, err := db.Begin()
	assert.Nil(t, err)
	assert.Nil(t, tx.Put(db.Pool.Accounts, []byte("key"), []byte("value")))
	assert.Equal(t, commitError, tx.Commit(), "commit error not returned")

	tx, err = db.Begin()
	assert.Nil(t, err)
	value, err := tx.Get(db.Pool.Faucet, []byte("key"))
	assert.Nil(t, err)
	assert.Nil(t, value)
	tx.Abort()
	tx.Abort()
}

func TestPoolMapRange(t *testing.T) {
	db, mock, ctl := setupTestDatabase(t)
	defer ctl.Finish()

	db.Pool.Accounts = &PoolHandle{prefix: 'A', limit: []byte{'B'}, dataAccess: mock}
	last := &PoolHandle{prefix: 0xff, limit: nil, dataAccess: mock}

	records := func(start []byte, limit []byte, f func([]byte, []byte) error) error {
		return f(append(start, 'k'), []byte("v"))
	}

	gomock.InOrder(
		mock.EXPECT().Iterate([]byte{'A'}, []byte{'B'}, gomock.Any()).DoAndReturn(records),
		mock.EXPECT().Iterate([]byte{0xff}, gomock.Nil(), gomock.Any()).DoAndReturn(records),
	)

	elements, err := db.Pool.Accounts.Elements()
	assert.Nil(t, err)
	assert.Equal(t, []Element{{Key: []byte("k"), Value: []byte("v")}}, elements, "prefix not stripped")

	elements, err = last.Elements()
	assert.Nil(t, err)
	assert.Equal(t, 1, len(elements))
}

func TestCheckVersion(t *testing.T) {
	db, mock, ctl := setupTestDatabase(t)
	defer ctl.Finish()

	gomock.InOrder(
		mock.EXPECT().Begin().Return(nil),
		mock.EXPECT().Get(versionKey).Return([]byte{0, 0, 0, 9}, nil),
		mock.EXPECT().Abort(),
	)

	err := db.checkVersion(ReadWrite)
	assert.NotNil(t, err, "wrong version accepted")
}

func TestCheckVersionTagsEmptyDatabase(t *testing.T) {
	db, mock, ctl := setupTestDatabase(t)
	defer ctl.Finish()

	gomock.InOrder(
		mock.EXPECT().Begin().Return(nil),
		mock.EXPECT().Get(versionKey).Return(nil, nil),
		mock.EXPECT().Put(versionKey, []byte{0, 0, 1, 0}).Return(nil),
		mock.EXPECT().Commit().Return(nil),
	)

	err := db.checkVersion(ReadWrite)
	assert.Nil(t, err)
}
