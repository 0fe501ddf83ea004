// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/configuration"
	"github.com/bitmark-inc/slotstore/ledger"
	"github.com/bitmark-inc/slotstore/protocol"
	"github.com/bitmark-inc/slotstore/storage"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultNamespace = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"

	defaultDatabaseEngine    = storage.LevelDB
	defaultDatabaseDirectory = "data"
	defaultDatabaseName      = "slotstore"

	defaultFaucetRate   = 1.0
	defaultFaucetBurst  = 5
	defaultFaucetAmount = 1000000

	defaultLogDirectory = "log"
	defaultLogFile      = "slotstore.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - storage engine and location
type DatabaseType struct {
	Engine    string `gluamapper:"engine" json:"engine"`
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// Configuration - the contents of the configuration file
type Configuration struct {
	DataDirectory string                     `gluamapper:"data_directory" json:"data_directory"`
	Namespace     string                     `gluamapper:"namespace" json:"namespace"`
	Database      DatabaseType               `gluamapper:"database" json:"database"`
	Funding       protocol.Configuration     `gluamapper:"funding" json:"funding"`
	Faucet        ledger.FaucetConfiguration `gluamapper:"faucet" json:"faucet"`
	Logging       logger.Configuration       `gluamapper:"logging" json:"logging"`

	namespace address.Address
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		Namespace:     defaultNamespace,

		Database: DatabaseType{
			Engine:    defaultDatabaseEngine,
			Directory: defaultDatabaseDirectory,
			Name:      defaultDatabaseName,
		},

		Funding: protocol.Configuration{
			Reference: protocol.DefaultReferenceFunding,
			Initial:   protocol.DefaultInitialFunding,
			Next:      protocol.DefaultNextFunding,
		},

		Faucet: ledger.FaucetConfiguration{
			Rate:   defaultFaucetRate,
			Burst:  defaultFaucetBurst,
			Amount: defaultFaucetAmount,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	options.namespace, err = address.FromBase58(options.Namespace)
	if nil != err {
		return nil, fmt.Errorf("namespace: %q is invalid: %s", options.Namespace, err)
	}

	if err := options.Funding.Validate(); nil != err {
		return nil, err
	}

	validEngine := false
	for _, engine := range storage.Engines() {
		if engine == options.Database.Engine {
			validEngine = true
		}
	}
	if !validEngine {
		return nil, fmt.Errorf("database engine: %q is not one of: %v", options.Database.Engine, storage.Engines())
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = configuration.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{&options.Database.Directory, &options.Logging.Directory} {
		*d = configuration.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
