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

// Dependency is a `name op version` constraint. After resolution, match
// holds the id of the Package it resolved to (a weak reference into the
// cache, per the design notes in §9 — implementations without native weak
// references store the interned id and resolve it at use).
type Dependency struct {
	Name       string
	Comparator VersionComparator
	Version    string

	match string
}

// DependencyList is an ordered list of Dependency, preserving input order.
type DependencyList []Dependency

func isOperatorByte(c byte) bool {
	return c == '=' || c == '!' || c == '<' || c == '>'
}

func isSeparatorByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == ','
}

// ParseDependencyList parses a `Requires`/`Conflicts`/`Provides`-style
// string of the form "name1 [op version1] [, ] name2 [op version2] ..."
// (§4.6). A comparator without a following version is a syntax error.
func ParseDependencyList(raw string, ui UI) (DependencyList, error) {
	var result DependencyList
	i := 0
	n := len(raw)
	for i < n {
		for i < n && isSeparatorByte(raw[i]) {
			i++
		}
		if i >= n {
			break
		}

		nameStart := i
		for i < n && !isSeparatorByte(raw[i]) && !isOperatorByte(raw[i]) {
			i++
		}
		name := raw[nameStart:i]
		if name == "" {
			return nil, ui.ReportError(ErrDependencySyntax, "unexpected operator in dependency list %q", raw)
		}

		for i < n && (raw[i] == ' ' || raw[i] == '\t') {
			i++
		}

		dep := Dependency{Name: name, Comparator: CompAny}

		if i < n && isOperatorByte(raw[i]) {
			opStart := i
			for i < n && isOperatorByte(raw[i]) {
				i++
			}
			opStr := raw[opStart:i]
			comp, ok := parseComparator(opStr)
			if !ok {
				return nil, ui.ReportError(ErrDependencySyntax, "invalid comparator %q in dependency list %q", opStr, raw)
			}
			for i < n && (raw[i] == ' ' || raw[i] == '\t') {
				i++
			}
			versionStart := i
			for i < n && !isSeparatorByte(raw[i]) {
				i++
			}
			version := raw[versionStart:i]
			if version == "" {
				return nil, ui.ReportError(ErrDependencySyntax, "missing version after comparator %q for package %q", opStr, name)
			}
			dep.Comparator = comp
			dep.Version = version
		}

		result = append(result, dep)
	}
	return result, nil
}

func parseComparator(op string) (VersionComparator, bool) {
	switch op {
	case "=":
		return CompEqual, true
	case "!=":
		return CompNotEqual, true
	case "<":
		return CompLess, true
	case "<=":
		return CompLessEqual, true
	case ">":
		return CompGreater, true
	case ">=":
		return CompGreaterEqual, true
	default:
		return CompAny, false
	}
}

// String renders the dependency back to its `name op version` form.
func (d Dependency) String() string {
	if d.Comparator == CompAny {
		return d.Name
	}
	return strings.Join([]string{d.Name, d.Comparator.String(), d.Version}, " ")
}
