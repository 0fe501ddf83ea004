// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/slotstore/address"
)

// a required address flag
func addressFlag(c *cli.Context, name string) (address.Address, error) {
	s := c.String(name)
	if "" == s {
		return address.Address{}, fmt.Errorf("%s is required", name)
	}
	a, err := address.FromBase58(s)
	if nil != err {
		return address.Address{}, fmt.Errorf("%s: %q is invalid: %s", name, s, err)
	}
	return a, nil
}

// exactly one of a text flag or a hex flag
//
// if neither is present and optional is set an empty value is returned
func bytesFlag(c *cli.Context, textName string, hexName string, optional bool) ([]byte, error) {
	text := c.String(textName)
	hexText := c.String(hexName)

	switch {
	case "" != text && "" != hexText:
		return nil, fmt.Errorf("only one of %s or %s is allowed", textName, hexName)
	case "" != text:
		return []byte(text), nil
	case "" != hexText:
		b, err := hex.DecodeString(hexText)
		if nil != err {
			return nil, fmt.Errorf("%s: %q is invalid: %s", hexName, hexText, err)
		}
		return b, nil
	case optional:
		return []byte{}, nil
	default:
		return nil, fmt.Errorf("one of %s or %s is required", textName, hexName)
	}
}
