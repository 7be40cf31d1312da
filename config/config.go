// Copyright (C) 2021 Toitware ApS.
//
// This library is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; version
// 2.1 only.
//
// This library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// The license can be found in the file `LICENSE` in the top level
// directory of this repository.

// Package config holds the CLI's ambient, non-resolution-affecting
// defaults: where the on-disk fragment-metadata index (§4.10) lives, and
// where an optional user config file for persisted flag defaults is read
// from. None of it is consulted by pkg/pkgconf; it only feeds cmd/pkgconf's
// flag defaults.
package config

import "os"

const (
	cacheSubDir = "pkgconf"
	// DiskIndexPathEnv, if set, overrides where the on-disk parsed-metadata
	// index (§4.10) is stored.
	DiskIndexPathEnv = "PKGCONF_CACHE_DIR"
)

func EnsureDirectory(dir string, err error) (string, error) {
	if err != nil {
		return dir, err
	}
	return dir, os.MkdirAll(dir, 0755)
}

func CachePath() (string, error) {
	if dir, ok := os.LookupEnv(DiskIndexPathEnv); ok {
		return dir, nil
	}
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return homedir + "/.cache/" + cacheSubDir, nil
}

// DiskIndexPath returns (and creates) the directory backing the on-disk
// parsed-metadata index of §4.10.
func DiskIndexPath() (string, error) {
	return EnsureDirectory(CachePath())
}
