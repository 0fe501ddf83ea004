// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/slotstore/fault"
	"github.com/bitmark-inc/slotstore/ledger"
	"github.com/bitmark-inc/slotstore/protocol"
	"github.com/bitmark-inc/slotstore/storage"
)

type metadata struct {
	config  *Configuration
	db      *storage.Database
	store   *ledger.Store
	program *protocol.Program
	faucet  *ledger.Faucet
	log     *logger.L
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	defer exitwithstatus.Handler()

	app := cli.NewApp()
	app.Name = "slotstore"
	app.Usage = "versioned write-once key/value slots"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config, c",
			Value: "slotstore.conf",
			Usage: " configuration `FILE`",
		},
	}

	callerFlag := cli.StringFlag{
		Name:  "caller, C",
		Value: "",
		Usage: "*paying account `ADDRESS`",
	}
	referenceFlag := cli.StringFlag{
		Name:  "reference, r",
		Value: "",
		Usage: "*reference record `ADDRESS`",
	}
	keyFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "key, k",
			Value: "",
			Usage: "+key as text `STRING`",
		},
		cli.StringFlag{
			Name:  "hex-key, K",
			Value: "",
			Usage: "+key as hex `HEX`",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "generate",
			Usage:     "generate a new caller key pair",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runGenerate,
		},
		{
			Name:      "airdrop",
			Usage:     "credit funds to an account from the faucet",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "to, t",
					Value: "",
					Usage: "*receiving `ADDRESS`",
				},
				cli.Uint64Flag{
					Name:  "amount, a",
					Value: 0,
					Usage: " `AMOUNT` to credit [default from configuration]",
				},
			},
			Action: runAirdrop,
		},
		{
			Name:      "balance",
			Usage:     "display an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "address, a",
					Value: "",
					Usage: "*account `ADDRESS`",
				},
			},
			Action: runBalance,
		},
		{
			Name:      "derive",
			Usage:     "show the reference and initial slot addresses of a key",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     append([]cli.Flag{callerFlag}, keyFlags...),
			Action:    runDerive,
		},
		{
			Name:      "init",
			Usage:     "create the reference record for a key",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     append([]cli.Flag{callerFlag}, keyFlags...),
			Action:    runInit,
		},
		{
			Name:      "set",
			Usage:     "store a new version of a key",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: []cli.Flag{
				callerFlag,
				referenceFlag,
				cli.StringFlag{
					Name:  "value, V",
					Value: "",
					Usage: "+value as text `STRING`",
				},
				cli.StringFlag{
					Name:  "hex-value, X",
					Value: "",
					Usage: "+value as hex `HEX`",
				},
			},
			Action: runSet,
		},
		{
			Name:      "clear",
			Usage:     "store an absent version of a key",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				callerFlag,
				referenceFlag,
			},
			Action: runClear,
		},
		{
			Name:      "get",
			Usage:     "display the current version of a key",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				referenceFlag,
			},
			Action: runGet,
		},
		{
			Name:      "history",
			Usage:     "display every version of a key",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				referenceFlag,
			},
			Action: runHistory,
		},
	}

	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// commands that do not need the database
		switch c.Args().Get(0) {
		case "", "help", "h", "generate":
			c.App.Metadata["config"] = &metadata{
				verbose: verbose,
				e:       e,
				w:       w,
			}
			return nil
		}

		file := c.GlobalString("config")
		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}

		m, err := setup(file, verbose, e, w)
		if nil != err {
			return err
		}
		c.App.Metadata["config"] = m
		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok || nil == m.db {
			return nil
		}
		teardown(m)
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		exitwithstatus.Message("terminated with error: %s", err)
	}
}

// open everything a database command needs
func setup(file string, verbose bool, e io.Writer, w io.Writer) (*metadata, error) {

	configuration, err := getConfiguration(file, nil)
	if nil != err {
		return nil, err
	}

	err = logger.Initialise(configuration.Logging)
	if nil != err {
		return nil, err
	}

	err = fault.Initialise()
	if nil != err {
		logger.Finalise()
		return nil, err
	}

	log := logger.New("main")
	log.Infof("starting…")
	log.Debugf("configuration: %+v", configuration)

	db, err := storage.Open(configuration.Database.Engine, configuration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage open error: %s", err)
		fault.Finalise()
		logger.Finalise()
		return nil, err
	}

	store := ledger.New(db, logger.New("ledger"))
	program := protocol.New(configuration.namespace, store, &configuration.Funding, logger.New("protocol"))
	faucet := ledger.NewFaucet(store, &configuration.Faucet, logger.New("faucet"))

	return &metadata{
		config:  configuration,
		db:      db,
		store:   store,
		program: program,
		faucet:  faucet,
		log:     log,
		verbose: verbose,
		e:       e,
		w:       w,
	}, nil
}

// a failed close may have lost committed writes
func teardown(m *metadata) {
	m.log.Info("shutting down…")
	fault.PanicIfError("storage close", m.db.Close())
	fault.Finalise()
	logger.Finalise()
}
