// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"strconv"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/ledger"
	"github.com/bitmark-inc/slotstore/record"
	"github.com/bitmark-inc/slotstore/storage"
)

func main() {
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "engine", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'e'},
		{Long: "count", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "raw", HasArg: getoptions.NO_ARGUMENT, Short: 'r'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("option parse error: %s", err)
	}

	if len(options["help"]) > 0 || 2 != len(arguments) {
		usage(program)
	}

	engine := storage.LevelDB
	if len(options["engine"]) > 0 {
		engine = options["engine"][0]
	}

	count := -1
	if len(options["count"]) > 0 {
		count, err = strconv.Atoi(options["count"][0])
		if nil != err || count <= 0 {
			exitwithstatus.Message("invalid count: %q", options["count"][0])
		}
	}
	raw := len(options["raw"]) > 0

	db, err := storage.Open(engine, arguments[0], storage.ReadOnly)
	if nil != err {
		exitwithstatus.Message("open: %q  error: %s", arguments[0], err)
	}
	defer db.Close()

	tag := arguments[1]
	p, name := findPool(&db.Pool, tag)
	if nil == p {
		exitwithstatus.Message("no pool corresponding to: %q", tag)
	}

	n := 0
	err = p.Map(func(key []byte, value []byte) error {
		if count >= 0 && n >= count {
			return errStop
		}
		if raw {
			fmt.Printf("%d: Key: %x\n", n, key)
			fmt.Printf("%d: Val: %x\n", n, value)
		} else {
			dump(n, name, key, value)
		}
		n += 1
		return nil
	})
	if nil != err && errStop != err {
		exitwithstatus.Message("dump error: %s", err)
	}
}

type stopError struct{}

func (stopError) Error() string { return "stop" }

var errStop error = stopError{}

func usage(program string) {
	fmt.Printf("usage: %s [--help] [--engine=%v] [--count=N] [--raw] database tag\n", program, storage.Engines())

	// this will be a struct type
	field, _ := reflect.TypeOf((*storage.Database)(nil)).Elem().FieldByName("Pool")
	poolType := field.Type

	// print all avalable tags
	fmt.Printf(" tags:\n")
	for i := 0; i < poolType.NumField(); i += 1 {
		fieldInfo := poolType.Field(i)
		prefixTag := fieldInfo.Tag.Get("prefix")
		fmt.Printf("       %s → %s\n", prefixTag, fieldInfo.Name)
	}
	exitwithstatus.Exit(1)
}

// locate the pool with a given prefix tag
func findPool(pools interface{}, tag string) (*storage.PoolHandle, string) {

	// read-only access
	poolValue := reflect.ValueOf(pools).Elem()

	// this will be a struct type
	poolType := poolValue.Type()

	// scan each field to locate tag
	for i := 0; i < poolType.NumField(); i += 1 {
		fieldInfo := poolType.Field(i)
		if tag == fieldInfo.Tag.Get("prefix") {
			p, ok := poolValue.Field(i).Interface().(*storage.PoolHandle)
			if ok {
				return p, fieldInfo.Name
			}
		}
	}
	return nil, ""
}

// decoded display of a record
func dump(n int, pool string, key []byte, value []byte) {
	a, err := address.New(key)
	if nil != err {
		fmt.Printf("%d: Key: %x  error: %s\n", n, key, err)
		return
	}

	switch pool {
	case "Accounts":
		account, err := ledger.UnpackAccount(a, value)
		if nil != err {
			fmt.Printf("%d: %s  error: %s\n", n, a, err)
			return
		}
		fmt.Printf("%d: %s  owner: %s  balance: %d  size: %d\n", n, a, account.Owner, account.Balance, len(account.Data))
		if r, err := record.UnpackReference(account.Data); nil == err {
			fmt.Printf("%d:   reference → %s\n", n, r.Current)
		} else if slot, err := record.UnpackSlot(account.Data); nil == err && !account.OwnedBy(address.System) {
			if slot.Present {
				fmt.Printf("%d:   slot value: %q\n", n, slot.Payload)
			} else {
				fmt.Printf("%d:   slot empty\n", n)
			}
		}

	case "Faucet":
		if 8 != len(value) {
			fmt.Printf("%d: %s  invalid total: %x\n", n, a, value)
			return
		}
		fmt.Printf("%d: %s  airdropped: %d\n", n, a, binary.BigEndian.Uint64(value))

	default:
		fmt.Printf("%d: Key: %x\n", n, key)
		fmt.Printf("%d: Val: %x\n", n, value)
	}
}
