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
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/alexflint/go-filemutex"
)

// DiskIndex is an optional on-disk cache of parsed Package metadata,
// keyed by the absolute source path and its modification time (§4.10).
// It never changes a resolution's outcome: a missing, stale, or corrupt
// entry simply falls back to re-parsing. Concurrent `pkgconf` processes
// sharing the same cache directory coordinate through a go-filemutex lock
// file so the index's directory listing is never corrupted mid-write.
type DiskIndex struct {
	Dir string
}

// NewDiskIndex returns a DiskIndex rooted at dir, creating it if needed.
func NewDiskIndex(dir string) (*DiskIndex, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskIndex{Dir: dir}, nil
}

type diskIndexEntry struct {
	ModTime  int64
	ID       string
	RealName string
	Desc     string
	Version  string
	Filename string

	Uninstalled bool
	Virtual     bool
	StaticOnly  bool

	TupleKeys   []string
	TupleValues map[string]string

	CFlags          []diskFragment
	Libs            []diskFragment
	Requires        []diskDependency
	RequiresPrivate []diskDependency
	Conflicts       []diskDependency
	Provides        []diskDependency
}

type diskFragment struct {
	Type     byte
	Payload  string
	Private  bool
	Internal bool
}

type diskDependency struct {
	Name       string
	Comparator int
	Version    string
}

func (idx *DiskIndex) keyPath(sourcePath string) string {
	sum := sha256.Sum256([]byte(sourcePath))
	return filepath.Join(idx.Dir, hex.EncodeToString(sum[:])+".cache")
}

func (idx *DiskIndex) lockPath() string {
	return filepath.Join(idx.Dir, ".lock")
}

func (idx *DiskIndex) withLock(fn func() error) error {
	fm, err := filemutex.New(idx.lockPath())
	if err != nil {
		// A lock we can't acquire just means we skip the cache optimization.
		return fn()
	}
	defer fm.Close()
	if err := fm.Lock(); err != nil {
		return fn()
	}
	defer fm.Unlock()
	return fn()
}

// Load returns the cached Package for sourcePath if present and not
// stale (its stored mtime matches the file's current mtime).
func (idx *DiskIndex) Load(sourcePath string) (*Package, bool) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(idx.keyPath(sourcePath))
	if err != nil {
		return nil, false
	}
	var entry diskIndexEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, false
	}
	if entry.ModTime != info.ModTime().UnixNano() {
		return nil, false
	}
	return entry.toPackage(), true
}

// Store writes pkg's metadata to the index, guarded by the file lock.
func (idx *DiskIndex) Store(sourcePath string, pkg *Package) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}
	entry := fromPackage(pkg, info.ModTime().UnixNano())
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return err
	}
	return idx.withLock(func() error {
		return os.WriteFile(idx.keyPath(sourcePath), buf.Bytes(), 0o644)
	})
}

func fromPackage(pkg *Package, modTime int64) diskIndexEntry {
	toDiskFrags := func(fl FragmentList) []diskFragment {
		out := make([]diskFragment, len(fl))
		for i, f := range fl {
			out[i] = diskFragment{Type: byte(f.Type), Payload: f.Payload, Private: f.Private, Internal: f.Internal}
		}
		return out
	}
	toDiskDeps := func(dl DependencyList) []diskDependency {
		out := make([]diskDependency, len(dl))
		for i, d := range dl {
			out[i] = diskDependency{Name: d.Name, Comparator: int(d.Comparator), Version: d.Version}
		}
		return out
	}
	values := map[string]string{}
	for _, k := range pkg.Tuples.keys {
		values[k] = pkg.Tuples.values[k]
	}
	return diskIndexEntry{
		ModTime:         modTime,
		ID:              pkg.ID,
		RealName:        pkg.RealName,
		Desc:            pkg.Description,
		Version:         pkg.Version,
		Filename:        pkg.Filename,
		Uninstalled:     pkg.Uninstalled,
		Virtual:         pkg.Virtual,
		StaticOnly:      pkg.StaticOnly,
		TupleKeys:       append([]string(nil), pkg.Tuples.keys...),
		TupleValues:     values,
		CFlags:          toDiskFrags(pkg.CFlags),
		Libs:            toDiskFrags(pkg.Libs),
		Requires:        toDiskDeps(pkg.Requires),
		RequiresPrivate: toDiskDeps(pkg.RequiresPrivate),
		Conflicts:       toDiskDeps(pkg.Conflicts),
		Provides:        toDiskDeps(pkg.Provides),
	}
}

func (e diskIndexEntry) toPackage() *Package {
	fromDiskFrags := func(in []diskFragment) FragmentList {
		out := make(FragmentList, len(in))
		for i, f := range in {
			out[i] = Fragment{Type: fragmentType(f.Type), Payload: f.Payload, Private: f.Private, Internal: f.Internal}
		}
		return out
	}
	fromDiskDeps := func(in []diskDependency) DependencyList {
		out := make(DependencyList, len(in))
		for i, d := range in {
			out[i] = Dependency{Name: d.Name, Comparator: VersionComparator(d.Comparator), Version: d.Version}
		}
		return out
	}
	tuples := newTupleStore()
	for _, k := range e.TupleKeys {
		tuples.define(k, e.TupleValues[k])
	}
	return &Package{
		ID:              e.ID,
		RealName:        e.RealName,
		Description:     e.Desc,
		Version:         e.Version,
		Filename:        e.Filename,
		Uninstalled:     e.Uninstalled,
		Virtual:         e.Virtual,
		StaticOnly:      e.StaticOnly,
		Tuples:          tuples,
		CFlags:          fromDiskFrags(e.CFlags),
		Libs:            fromDiskFrags(e.Libs),
		Requires:        fromDiskDeps(e.Requires),
		RequiresPrivate: fromDiskDeps(e.RequiresPrivate),
		Conflicts:       fromDiskDeps(e.Conflicts),
		Provides:        fromDiskDeps(e.Provides),
	}
}
