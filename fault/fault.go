// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"github.com/pkg/errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	ErrAccountInUse         = ExistsError("account already in use")
	ErrAccountNotFound      = NotFoundError("account not found")
	ErrAccountTooLarge      = InvalidError("account size exceeds limit")
	ErrAddressMismatch      = InvalidError("supplied address does not match derived address")
	ErrAlreadyInitialised   = ExistsError("already initialised")
	ErrBalanceOverflow      = ProcessError("balance overflow")
	ErrBrokenChain          = RecordError("slot derivation chain is broken")
	ErrBumpMismatch         = InvalidError("bump does not match derived bump")
	ErrDatabaseVersion      = RecordError("incompatible database version")
	ErrInsufficientFunds    = ProcessError("insufficient funds")
	ErrInvalidAddress       = InvalidError("invalid address")
	ErrInvalidDiscriminator = RecordError("invalid record discriminator")
	ErrInvalidEngine        = InvalidError("invalid database engine")
	ErrInvalidLoggerChannel = InvalidError("invalid logger channel")
	ErrInvalidSlotFlag      = RecordError("invalid slot presence flag")
	ErrKeyTooLong           = InvalidError("key is too long")
	ErrNoViableBump         = ProcessError("no viable bump seed")
	ErrNotInitialised       = NotFoundError("not initialised")
	ErrNotOwner             = InvalidError("account is not owned by program")
	ErrOnCurve              = ProcessError("derived address is on the ed25519 curve")
	ErrRateLimited          = ProcessError("rate limited")
	ErrReadOnly             = ProcessError("write in read only transaction")
	ErrReferenceExists      = ExistsError("reference record already exists")
	ErrReferenceNotFound    = NotFoundError("reference record not found")
	ErrSeedTooLong          = InvalidError("seed is too long")
	ErrSeedsMismatch        = InvalidError("seeds do not derive account address")
	ErrSlotAlreadyOwned     = ExistsError("slot is already owned")
	ErrSlotNotEmpty         = ExistsError("slot is not empty")
	ErrSlotNotFound         = NotFoundError("slot not found")
	ErrSlotNotOwned         = InvalidError("slot is not owned by program")
	ErrStaleReference       = InvalidError("reference does not point to current slot")
	ErrTooManySeeds         = InvalidError("too many seeds")
	ErrTransactionAborted   = ProcessError("transaction aborted")
	ErrTruncatedRecord      = RecordError("truncated record")
	ErrWriteOutOfRange      = InvalidError("write exceeds account size")
	ErrZeroFunding          = InvalidError("funding amount must be non-zero")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// determine the class of an error
//
// wrapped errors are unwrapped to their cause first
func IsErrExists(e error) bool   { _, ok := errors.Cause(e).(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := errors.Cause(e).(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := errors.Cause(e).(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := errors.Cause(e).(ProcessError); return ok }
func IsErrRecord(e error) bool   { _, ok := errors.Cause(e).(RecordError); return ok }

// Is - true if the cause of err is the target error instance
func Is(err error, target error) bool {
	return errors.Cause(err) == target
}
