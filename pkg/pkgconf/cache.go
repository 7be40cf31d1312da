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
	"strings"

	"github.com/gobwas/glob"
)

// PkgCache locates packages by name across a search path and interns them,
// so that a second lookup of the same file returns the same *Package
// (§4.5, §3 invariant).
type PkgCache struct {
	searchPath *PathList
	byID       map[string]*Package
	byFilename map[string]*Package

	// NoCache disables interning: every Find re-parses the file.
	NoCache bool
	// PreferUninstalled mirrors !NoUninstalled && !PKG_CONFIG_DISABLE_UNINSTALLED.
	PreferUninstalled bool
	// SkipProvides disables the Provides-alias fallback scan.
	SkipProvides bool

	// Index, if set, backs Find with an on-disk parsed-metadata cache
	// (§4.10). It never changes resolution results, only lookup latency.
	Index *DiskIndex

	// OnLoad, if set, is called once per freshly parsed Package (not on a
	// cache hit) before it is interned or persisted to Index. The Client
	// uses this to apply prefix redefinition (§4.1) right after parse.
	OnLoad func(*Package)
}

// NewPkgCache builds a cache over the given search path.
func NewPkgCache(searchPath *PathList) *PkgCache {
	return &PkgCache{
		searchPath: searchPath,
		byID:       map[string]*Package{},
		byFilename: map[string]*Package{},
	}
}

// Find locates the package named name (§4.5 steps 1-2): a literal path
// ending in .pc is loaded directly; otherwise each directory of the
// search path is checked in order for "<name>.pc", preferring
// "<name>-uninstalled.pc" unless PreferUninstalled is false. Returns nil,
// nil if nothing matches — callers decide whether that is an error.
func (c *PkgCache) Find(name string, global *tupleStore, ui UI, opts ParseOptions) (*Package, error) {
	if looksLikeExplicitPath(name) {
		return c.load(name, global, ui, opts)
	}

	for _, dir := range c.searchPath.Dirs() {
		if c.PreferUninstalled {
			uninstalledPath := filepath.Join(dir, name+"-uninstalled.pc")
			if fileExists(uninstalledPath) {
				return c.load(uninstalledPath, global, ui, opts)
			}
		}
		path := filepath.Join(dir, name+".pc")
		if fileExists(path) {
			return c.load(path, global, ui, opts)
		}
	}
	return nil, nil
}

// FindProvider scans every `.pc` file in the search path and returns the
// first package whose Provides list satisfies dep (§4.5 step 3). Returns
// nil, nil if none match.
func (c *PkgCache) FindProvider(dep Dependency, global *tupleStore, ui UI, opts ParseOptions) (*Package, error) {
	var found *Package
	err := c.ScanAll(global, ui, opts, func(pkg *Package) bool {
		if pkg.HasProvide(dep) {
			found = pkg
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ScanAll visits every `.pc` file in the search path once, in path-list
// order, invoking callback with each parsed Package. It stops early if
// callback returns true (§4.5's scan_all).
func (c *PkgCache) ScanAll(global *tupleStore, ui UI, opts ParseOptions, callback func(*Package) bool) error {
	seenFile := map[string]bool{}
	for _, dir := range c.searchPath.Dirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pc") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if seenFile[path] {
				continue
			}
			seenFile[path] = true
			pkg, err := c.load(path, global, ui, opts)
			if err != nil {
				continue
			}
			if callback(pkg) {
				return nil
			}
		}
	}
	return nil
}

// ListAll returns every package reachable from the search path whose id
// matches pattern, a shell-style glob compiled with gobwas/glob (an empty
// pattern matches everything). This backs the CLI's --list-all (§4.5a).
func (c *PkgCache) ListAll(pattern string, global *tupleStore, ui UI, opts ParseOptions) ([]*Package, error) {
	var g glob.Glob
	if pattern != "" {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		g = compiled
	}
	var result []*Package
	err := c.ScanAll(global, ui, opts, func(pkg *Package) bool {
		if g == nil || g.Match(pkg.ID) {
			result = append(result, pkg)
		}
		return false
	})
	return result, err
}

func (c *PkgCache) load(path string, global *tupleStore, ui UI, opts ParseOptions) (*Package, error) {
	if !c.NoCache {
		if pkg, ok := c.byFilename[path]; ok {
			return pkg, nil
		}
	}

	if !c.NoCache && c.Index != nil {
		if pkg, ok := c.Index.Load(path); ok {
			c.intern(pkg)
			return pkg, nil
		}
	}

	pkg, err := ParsePackageFile(path, global, ui, opts)
	if err != nil {
		return nil, err
	}
	if c.OnLoad != nil {
		c.OnLoad(pkg)
	}

	if !c.NoCache {
		c.intern(pkg)
		if c.Index != nil {
			_ = c.Index.Store(path, pkg)
		}
	}
	return pkg, nil
}

func (c *PkgCache) intern(pkg *Package) {
	c.byFilename[pkg.Filename] = pkg
	if _, ok := c.byID[pkg.ID]; !ok {
		c.byID[pkg.ID] = pkg
	}
}

func looksLikeExplicitPath(name string) bool {
	return strings.HasSuffix(name, ".pc") && strings.ContainsRune(name, os.PathSeparator)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
