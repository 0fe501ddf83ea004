// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/slotstore/address"
	"github.com/bitmark-inc/slotstore/storage"
)

func copySample(t *testing.T, extra string) (string, string) {
	dir, err := ioutil.TempDir("", "slotstore-configuration")
	require.Nil(t, err)

	sample, err := ioutil.ReadFile("slotstore.conf.sample")
	require.Nil(t, err)

	fileName := filepath.Join(dir, "slotstore.conf")
	err = ioutil.WriteFile(fileName, append(sample, []byte(extra)...), 0600)
	require.Nil(t, err)
	return dir, fileName
}

func TestSampleConfiguration(t *testing.T) {
	dir, fileName := copySample(t, "")
	defer os.RemoveAll(dir)

	options, err := getConfiguration(fileName, nil)
	require.Nil(t, err)

	expectedNamespace, err := address.FromBase58(defaultNamespace)
	require.Nil(t, err)

	assert.Equal(t, expectedNamespace, options.namespace)
	assert.Equal(t, storage.LevelDB, options.Database.Engine)
	assert.Equal(t, filepath.Join(dir, "data"), options.Database.Directory)
	assert.Equal(t, filepath.Join(dir, "data", "slotstore"), options.Database.Name)
	assert.Equal(t, filepath.Join(dir, "log"), options.Logging.Directory)
	assert.Equal(t, uint64(10000), options.Funding.Next)
	assert.Equal(t, 5, options.Faucet.Burst)
	assert.Equal(t, "info", options.Logging.Levels["protocol"])

	info, err := os.Stat(options.Database.Directory)
	require.Nil(t, err)
	assert.True(t, info.IsDir(), "database directory not created")
}

func TestDataDirectoryVariable(t *testing.T) {
	dir, fileName := copySample(t, "")
	defer os.RemoveAll(dir)

	other := filepath.Join(dir, "other")
	require.Nil(t, os.Mkdir(other, 0700))

	options, err := getConfiguration(fileName, map[string]string{"data_directory": other})
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(other, "data", "slotstore"), options.Database.Name)
}

func TestInvalidConfiguration(t *testing.T) {
	items := []struct {
		name   string
		script string
	}{
		{"engine", `M.database.engine = "sqlite"`},
		{"namespace", `M.namespace = "0OIl"`},
		{"funding", `M.funding.next = 0`},
		{"database name", `M.database.name = "a/b"`},
		{"data directory", `M.data_directory = ""`},
	}

	for _, item := range items {
		// insert the change before the final return
		dir, fileName := copySample(t, "")
		sample, err := ioutil.ReadFile(fileName)
		require.Nil(t, err)
		n := len(sample) - len("return M\n")
		script := string(sample[:n]) + item.script + "\nreturn M\n"
		require.Nil(t, ioutil.WriteFile(fileName, []byte(script), 0600))

		_, err = getConfiguration(fileName, nil)
		assert.NotNil(t, err, item.name)

		os.RemoveAll(dir)
	}
}
