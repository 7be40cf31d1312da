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

package pkgconf

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// PathList is an ordered, insertion-deduplicated list of directories,
// searched in order by the package loader (§4.5).
type PathList struct {
	dirs []string
	seen map[string]struct{}
}

// NewPathList returns an empty PathList.
func NewPathList() *PathList {
	return &PathList{seen: map[string]struct{}{}}
}

// normalize makes two paths comparable for dedup purposes: case-insensitive
// and backslash-to-slash on Windows, a no-op elsewhere.
func normalizePath(p string) string {
	p = filepath.Clean(p)
	if runtime.GOOS == "windows" {
		p = strings.ToLower(filepath.ToSlash(p))
	}
	return p
}

// Add appends path to the list unless an equivalent path is already
// present. If check is true, paths whose target does not exist on disk
// are silently dropped.
func (pl *PathList) Add(path string, check bool) {
	if path == "" {
		return
	}
	if check {
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			return
		}
	}
	key := normalizePath(path)
	if _, ok := pl.seen[key]; ok {
		return
	}
	pl.seen[key] = struct{}{}
	pl.dirs = append(pl.dirs, path)
}

// AddAll adds every entry of paths, in order.
func (pl *PathList) AddAll(paths []string, check bool) {
	for _, p := range paths {
		pl.Add(p, check)
	}
}

// Dirs returns the path list's directories in search order.
func (pl *PathList) Dirs() []string {
	return append([]string(nil), pl.dirs...)
}

// splitSearchPath splits a PKG_CONFIG_PATH-style environment value on the
// OS path-list separator (':' on Unix, ';' on Windows).
func splitSearchPath(value string) []string {
	if value == "" {
		return nil
	}
	sep := string(os.PathListSeparator)
	parts := strings.Split(value, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
