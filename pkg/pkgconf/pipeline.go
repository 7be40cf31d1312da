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

import "strings"

// defaultSystemIncludePaths/defaultSystemLibraryPaths are the compiled-in
// fallbacks consulted by the filter stage when PKG_CONFIG_SYSTEM_INCLUDE_PATH
// / _LIBRARY_PATH are unset (§4.9).
var (
	defaultSystemIncludePaths = []string{"/usr/include"}
	defaultSystemLibraryPaths = []string{"/usr/lib", "/usr/lib64"}
)

// queryKind picks which of a Package's fragment lists the pipeline collects
// from, and whether traversal visits children before or after the node.
type queryKind int

const (
	QueryCFlags queryKind = iota
	QueryLibs
)

// PipelineOptions configures the merge/filter/render stages of §4.9.
type PipelineOptions struct {
	// PrivateQuery marks a cflags-private/libs-private request (§4.9's rule
	// (a)): every visited Package contributes its private fragments, root
	// or not.
	PrivateQuery             bool
	SearchPrivate            bool
	MergePrivateFragments    bool
	Pure                     bool
	KeepSystemCFlags         bool
	KeepSystemLibs           bool
	SystemIncludePaths       []string
	SystemLibraryPaths       []string
	DontFilterInternalCflags bool
	// FragmentFilter, if non-empty, retains only fragments whose type
	// character appears in this string (the CLI's --fragment-filter).
	FragmentFilter    string
	SysrootDir        string
	DontRelocatePaths bool
	RenderOps         RenderOps
	Escape            bool
}

// Collect runs the full traverse -> collect -> merge -> filter pipeline for
// one query kind over the dependency queue, using res to drive traversal,
// and returns the rendered flag string (§4.9's final stage).
func Collect(res *resolver, queue DependencyList, kind queryKind, opts PipelineOptions) (string, error) {
	var raw FragmentList
	collectFrom := func(pkg *Package, depth int) {
		includePrivate := opts.PrivateQuery || (opts.SearchPrivate && depth > 0)
		// Plain append, not FragmentList.Append: collection must preserve
		// every occurrence in traversal order so mergeFragments below is the
		// only place the merge/dedup rule is applied, gated correctly behind
		// MergePrivateFragments && !Pure (§4.9).
		raw = append(raw, selectFragments(pkg, kind, includePrivate)...)
	}

	v := visitor{}
	switch kind {
	case QueryCFlags:
		// Pre-order: the asker's own cflags are emitted before its children's.
		v.pre = collectFrom
	case QueryLibs:
		// Post-order: leaves are emitted before their parents, so the linker
		// sees `-lchild -lparent`.
		v.post = collectFrom
	}

	if err := res.Resolve(queue, v); err != nil {
		return "", err
	}

	merged := raw
	if opts.MergePrivateFragments && !opts.Pure {
		merged = mergeFragments(raw)
	}

	filtered := filterFragments(merged, kind, opts)

	if opts.SysrootDir != "" && !opts.DontRelocatePaths {
		filtered = applySysroot(filtered, opts.SysrootDir)
	}

	return filtered.Render(opts.RenderOps, opts.Escape), nil
}

func selectFragments(pkg *Package, kind queryKind, includePrivate bool) FragmentList {
	var base FragmentList
	switch kind {
	case QueryCFlags:
		base = pkg.CFlags
	case QueryLibs:
		base = pkg.Libs
	}
	if includePrivate {
		return base
	}
	return base.Filter(func(f Fragment) bool { return !f.Private })
}

// mergeFragments implements §4.9's merge stage: for each mergeable
// (type, payload), only the latest occurrence survives; non-mergeable
// fragments are left untouched, preserving order and duplicates.
func mergeFragments(fl FragmentList) FragmentList {
	var out FragmentList
	for _, f := range fl {
		out.Append(f)
	}
	return out
}

// filterFragments implements §4.9's filter stage: system-path suppression,
// internal-cflag suppression, and the optional --fragment-filter type set.
func filterFragments(fl FragmentList, kind queryKind, opts PipelineOptions) FragmentList {
	sysInclude := opts.SystemIncludePaths
	if sysInclude == nil {
		sysInclude = defaultSystemIncludePaths
	}
	sysLib := opts.SystemLibraryPaths
	if sysLib == nil {
		sysLib = defaultSystemLibraryPaths
	}

	return fl.Filter(func(f Fragment) bool {
		if kind == QueryCFlags && !opts.KeepSystemCFlags && hasSystemDir(f, sysInclude) {
			return false
		}
		if kind == QueryLibs && !opts.KeepSystemLibs && hasSystemDir(f, sysLib) {
			return false
		}
		if f.Internal && !opts.DontFilterInternalCflags {
			return false
		}
		if opts.FragmentFilter != "" {
			return strings.IndexByte(opts.FragmentFilter, typeChar(f.Type)) >= 0
		}
		return true
	})
}

// typeChar renders a fragmentType back to the single character used by
// --fragment-filter (§4.9), matching the keyword suffixes of §4.2.
func typeChar(t fragmentType) byte {
	if t == fragOther {
		return 'o'
	}
	return byte(t)
}

// applySysroot prefixes every path-bearing fragment's payload with dir,
// unless the payload already starts with it (§4.9's render stage).
func applySysroot(fl FragmentList, dir string) FragmentList {
	out := make(FragmentList, len(fl))
	for i, f := range fl {
		if (f.Type == fragInclude || f.Type == fragLibPath) && !strings.HasPrefix(f.Payload, dir) {
			f.Payload = dir + f.Payload
		}
		out[i] = f
	}
	return out
}
