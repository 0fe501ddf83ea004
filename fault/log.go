// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
)

// hold a logger channel
var log struct {
	sync.Mutex
	l *logger.L
}

// Initialise - setup a log channel for last attempt to log something
//
// must be called after logger.Initialise
func Initialise() error {
	log.Lock()
	defer log.Unlock()

	if nil != log.l {
		return ErrAlreadyInitialised
	}
	log.l = logger.New("PANIC")
	if nil == log.l {
		return ErrInvalidLoggerChannel
	}
	return nil
}

// Finalise - flush any data
func Finalise() {
	log.Lock()
	defer log.Unlock()

	if nil != log.l {
		log.l.Flush()
		log.l = nil
	}
}

// Panicf - panic with a formatted message
//
// used for broken invariants that no caller can recover from
func Panicf(format string, arguments ...interface{}) {
	s := fmt.Sprintf(format, arguments...)
	if _, file, line, ok := runtime.Caller(1); ok {
		internalCriticalf("(%q:%d) %s", file, line, s)
	} else {
		internalCriticalf("%s", s)
	}
	time.Sleep(100 * time.Millisecond) // to allow logging output
	panic(s)
}

// PanicIfError - conditional panic
func PanicIfError(message string, err error) {
	if nil == err {
		return
	}
	Panicf("%s failed with error: %v", message, err)
}

// internal routines to handle uninitialised logger channel
func internalCriticalf(format string, arguments ...interface{}) {
	log.Lock()
	defer log.Unlock()

	if nil == log.l {
		fmt.Printf("*** "+format+"\n", arguments...)
	} else {
		log.l.Criticalf(format, arguments...)
		log.l.Flush() // make sure log file is saved
	}
}
