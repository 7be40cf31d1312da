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

// Package is one installed library's metadata, parsed from a `.pc` file.
// Entries are immutable after parse except for the traversal epoch used
// by the resolver (§9: an epoch counter replaces a per-package boolean
// "seen" flag so traversal state never needs a global clear pass).
type Package struct {
	ID          string
	RealName    string
	Description string
	Version     string
	Filename    string

	Uninstalled bool
	Virtual     bool
	StaticOnly  bool

	Tuples *tupleStore

	CFlags FragmentList
	Libs   FragmentList

	Requires        DependencyList
	RequiresPrivate DependencyList
	Conflicts       DependencyList
	Provides        DependencyList

	// epoch is compared against the resolver's traversal epoch to decide
	// whether this package has already been visited in the current
	// resolution pass (§9 design note).
	epoch uint64
}

// NewVirtualPackage synthesizes the traversal root over the CLI's query
// list (§3's "virtual package" / §4.8's "synthesizes a virtual root").
func NewVirtualPackage(requires DependencyList) *Package {
	return &Package{
		ID:       "<virtual>",
		RealName: "virtual-root",
		Virtual:  true,
		Tuples:   newTupleStore(),
		Requires: requires,
	}
}

// HasProvide reports whether this package's Provides list satisfies dep.
func (p *Package) HasProvide(dep Dependency) bool {
	for _, provide := range p.Provides {
		if provide.Name != dep.Name {
			continue
		}
		if dep.Comparator == CompAny {
			return true
		}
		if provide.Version == "" {
			continue
		}
		if dep.Comparator.Check(provide.Version, dep.Version) {
			return true
		}
	}
	return false
}
