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

import "sync/atomic"

// traversalEpoch hands every Resolve call a fresh epoch, so stamps left on
// cached Packages by an earlier query never match a later one.
var traversalEpoch uint64

// defaultMaxTraverseDepth is the depth bound of §4.8 rule 2, overridable
// via PKG_CONFIG_MAXIMUM_TRAVERSE_DEPTH.
const defaultMaxTraverseDepth = 2000

// ResolveOptions configures a single traversal (§4.8, §4.9's inputs).
type ResolveOptions struct {
	SearchPrivate          bool
	MergePrivateFragments  bool
	Pure                   bool
	SkipConflicts          bool
	SkipProvides           bool
	MaximumTraverseDepth   int
	ParseOptions           ParseOptions
}

// visitor is invoked once per resolved Package in traversal order. pre is
// called before descending into a Package's dependencies (used for cflags,
// which wants the asker before its children); post is called after (used
// for libs, which wants leaves before the parent so the linker sees
// `-lchild -lparent`). depth is 0 for a package directly named in the
// input queue ("the root" of §4.9's collection rule) and increases for
// each level of transitive Requires/RequiresPrivate below it.
type visitor struct {
	pre  func(pkg *Package, depth int)
	post func(pkg *Package, depth int)
}

// resolver drives the bounded DFS of §4.8 over a single Client's cache.
type resolver struct {
	cache  *PkgCache
	global *tupleStore
	ui     UI
	opts   ResolveOptions

	epoch    uint64
	resolved map[string]*Package // by id, everything visited this pass
	depthCap int
}

func newResolver(cache *PkgCache, global *tupleStore, ui UI, opts ResolveOptions) *resolver {
	cap := opts.MaximumTraverseDepth
	if cap <= 0 {
		cap = defaultMaxTraverseDepth
	}
	return &resolver{
		cache:    cache,
		global:   global,
		ui:       ui,
		opts:     opts,
		resolved: map[string]*Package{},
		depthCap: cap,
	}
}

// Resolve walks the dependency graph rooted at a synthetic virtual package
// whose required list is queue (§4.8's "world"), invoking v at each newly
// visited Package. epoch is bumped once per call so repeated Resolve calls
// on the same cache (e.g. across CLI invocations sharing a Client) don't
// need an explicit sweep to clear `seen` (§9's epoch-counter design note,
// replacing "clear all seen bits in the cache" with an incrementing stamp).
func (r *resolver) Resolve(queue DependencyList, v visitor) error {
	r.epoch = atomic.AddUint64(&traversalEpoch, 1)
	root := NewVirtualPackage(queue)
	return r.visit(root, -1, r.depthCap, v)
}

func (r *resolver) visit(pkg *Package, depth, remaining int, v visitor) error {
	if pkg.epoch == r.epoch {
		// Shared subtree, already resolved on this pass: OK immediately.
		return nil
	}
	pkg.epoch = r.epoch
	remaining--
	if remaining < 0 {
		return r.ui.ReportError(ErrDepGraphBreak, "maximum traversal depth (%d) exceeded at %s", r.depthCap, pathOrID(pkg))
	}

	if v.pre != nil && !pkg.Virtual {
		v.pre(pkg, depth)
	}

	resolvedChildren, err := r.resolveList(pkg.Requires, false)
	if err != nil {
		return err
	}

	var privateChildren []*Package
	if r.opts.SearchPrivate {
		privateChildren, err = r.resolveList(pkg.RequiresPrivate, true)
		if err != nil {
			return err
		}
	}

	if err := r.checkConflicts(pkg); err != nil {
		return err
	}

	for _, child := range resolvedChildren {
		if err := r.visit(child, depth+1, remaining, v); err != nil {
			return err
		}
	}
	for _, child := range privateChildren {
		if err := r.visit(child, depth+1, remaining, v); err != nil {
			return err
		}
	}

	if v.post != nil && !pkg.Virtual {
		v.post(pkg, depth)
	}
	return nil
}

// resolveList resolves every entry of deps to a Package, recording the
// match on the Dependency itself, and returns them in order. private
// controls nothing here except documentation intent: both Requires and
// RequiresPrivate entries are resolved identically (§4.8 rule 3).
func (r *resolver) resolveList(deps DependencyList, private bool) ([]*Package, error) {
	var out []*Package
	for i := range deps {
		dep := &deps[i]
		pkg, err := r.cache.Find(dep.Name, r.global, r.ui, r.opts.ParseOptions)
		if err != nil {
			return nil, err
		}
		if pkg == nil && !r.opts.SkipProvides {
			pkg, err = r.cache.FindProvider(*dep, r.global, r.ui, r.opts.ParseOptions)
			if err != nil {
				return nil, err
			}
		}
		if pkg == nil {
			return nil, r.ui.ReportError(ErrPackageNotFound, "package '%s' could not be found in the search path", dep.Name)
		}
		if dep.Comparator != CompAny && !dep.Comparator.Check(pkg.Version, dep.Version) {
			return nil, r.ui.ReportError(ErrPackageVerMismatch, "package '%s' version '%s' does not satisfy '%s %s'", dep.Name, pkg.Version, dep.Comparator.String(), dep.Version)
		}
		dep.match = pkg.ID
		r.resolved[pkg.ID] = pkg
		out = append(out, pkg)
	}
	return out, nil
}

// checkConflicts enforces §4.8 rule 5: pkg's Conflicts list is checked
// against every Package already resolved in this pass.
func (r *resolver) checkConflicts(pkg *Package) error {
	if r.opts.SkipConflicts {
		return nil
	}
	for _, conflict := range pkg.Conflicts {
		other, ok := r.resolved[conflict.Name]
		if !ok {
			continue
		}
		if conflict.Comparator == CompAny || conflict.Comparator.Check(other.Version, conflict.Version) {
			return r.ui.ReportError(ErrPackageConflict, "'%s' conflicts with already-resolved '%s' (%s)", pkg.ID, other.ID, conflict.String())
		}
	}
	return nil
}
