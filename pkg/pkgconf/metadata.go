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
)

// ParseOptions configures how ParsePackageFile reacts to malformed input.
type ParseOptions struct {
	// ValidateMode keeps parsing after a syntax error to collect every
	// diagnostic, rather than stopping at the first one (§4.4 rule 3).
	ValidateMode bool
}

// ParsePackageFile reads one `.pc` file into a Package (§4.4). global is
// the Client's tuple store, consulted during expansion of fragment and
// dependency values once the package's own tuples don't resolve a
// reference.
func ParsePackageFile(path string, global *tupleStore, ui UI, opts ParseOptions) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id = strings.TrimSuffix(id, "-uninstalled")
	pkg := &Package{
		ID:          id,
		Filename:    path,
		Tuples:      newTupleStore(),
		Uninstalled: strings.HasSuffix(path, "-uninstalled.pc"),
	}
	if err := parsePackageBody(pkg, string(data), global, ui, opts); err != nil {
		return nil, err
	}
	return pkg, nil
}

// ParsePackageString parses data as though it came from a `.pc` file at
// the (possibly synthetic) path. An empty path marks the resulting
// Package as virtual (§4.4: "virtual flag if the file is synthesized").
// In ValidateMode the partly parsed Package is returned together with the
// first error; otherwise an error yields a nil Package.
func ParsePackageString(id, path, data string, global *tupleStore, ui UI, opts ParseOptions) (*Package, error) {
	pkg := &Package{
		ID:       id,
		Filename: path,
		Tuples:   newTupleStore(),
		Virtual:  path == "",
	}
	if err := parsePackageBody(pkg, data, global, ui, opts); err != nil {
		if opts.ValidateMode {
			return pkg, err
		}
		return nil, err
	}
	return pkg, nil
}

func parsePackageBody(pkg *Package, data string, global *tupleStore, ui UI, opts ParseOptions) error {
	var firstErr error
	fail := func(format string, a ...interface{}) error {
		err := ui.ReportError(ErrFileInvalidSyntax, "%s: "+format, append([]interface{}{pathOrID(pkg)}, a...)...)
		if firstErr == nil {
			firstErr = err
		}
		return err
	}

	for _, line := range joinContinuedLines(data) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		eq := strings.IndexByte(trimmed, '=')
		colon := strings.IndexByte(trimmed, ':')

		isVariable := eq >= 0 && (colon < 0 || eq < colon)
		if isVariable {
			name := strings.TrimSpace(trimmed[:eq])
			if name == "" {
				if err := fail("invalid variable assignment %q", trimmed); err != nil && !opts.ValidateMode {
					return err
				}
				continue
			}
			pkg.Tuples.define(name, strings.TrimSpace(trimmed[eq+1:]))
			continue
		}

		if colon < 0 {
			if err := fail("expected ':' or '=' in line %q", trimmed); err != nil && !opts.ValidateMode {
				return err
			}
			continue
		}

		keyword := strings.TrimSpace(trimmed[:colon])
		value := strings.TrimSpace(trimmed[colon+1:])

		private := false
		if strings.HasSuffix(keyword, "?") {
			keyword = strings.TrimSuffix(keyword, "?")
			private = true
		}
		if strings.HasSuffix(keyword, ".private") {
			keyword = strings.TrimSuffix(keyword, ".private")
			private = true
		}
		internal := false
		if strings.HasSuffix(keyword, ".internal") {
			keyword = strings.TrimSuffix(keyword, ".internal")
			internal = true
		}

		expanded, err := pkg.Tuples.parse(value, global, ui)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if !opts.ValidateMode {
				return err
			}
			continue
		}

		switch keyword {
		case "Name":
			pkg.RealName = expanded
		case "Description":
			pkg.Description = expanded
		case "Version":
			pkg.Version = expanded
		case "URL", "Copyright", "Maintainer":
			// Informational only; no structured field in this implementation.
		case "CFlags", "Cflags":
			frags, err := ParseFragments(expanded, private)
			if err != nil {
				if err2 := fail("invalid CFlags: %v", err); err2 != nil && !opts.ValidateMode {
					return err2
				}
				continue
			}
			if internal {
				for i := range frags {
					frags[i].Internal = true
				}
			}
			pkg.CFlags.AppendAll(frags)
		case "Libs":
			frags, err := ParseFragments(expanded, private)
			if err != nil {
				if err2 := fail("invalid Libs: %v", err); err2 != nil && !opts.ValidateMode {
					return err2
				}
				continue
			}
			pkg.Libs.AppendAll(frags)
		case "Requires":
			deps, err := ParseDependencyList(expanded, ui)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				if !opts.ValidateMode {
					return err
				}
				continue
			}
			if private {
				pkg.RequiresPrivate = append(pkg.RequiresPrivate, deps...)
			} else {
				pkg.Requires = append(pkg.Requires, deps...)
			}
		case "Conflicts":
			deps, err := ParseDependencyList(expanded, ui)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				if !opts.ValidateMode {
					return err
				}
				continue
			}
			pkg.Conflicts = append(pkg.Conflicts, deps...)
		case "Provides":
			deps, err := ParseDependencyList(expanded, ui)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				if !opts.ValidateMode {
					return err
				}
				continue
			}
			pkg.Provides = append(pkg.Provides, deps...)
		default:
			ui.ReportWarning("%s: unknown keyword '%s'", pathOrID(pkg), keyword)
		}
	}

	if pkg.RealName != "" && pkg.Version == "" {
		ui.ReportWarning("%s: package '%s' has no version", pathOrID(pkg), pkg.RealName)
	}

	return firstErr
}

func pathOrID(pkg *Package) string {
	if pkg.Filename != "" {
		return pkg.Filename
	}
	return pkg.ID
}

// joinContinuedLines splits data into logical lines, joining any physical
// line ending in a trailing backslash with the next one (§4.4 rule 4).
func joinContinuedLines(data string) []string {
	raw := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	var result []string
	var cur strings.Builder
	hasCur := false
	for _, line := range raw {
		if strings.HasSuffix(line, "\\") {
			cur.WriteString(strings.TrimSuffix(line, "\\"))
			hasCur = true
			continue
		}
		if hasCur {
			cur.WriteString(line)
			result = append(result, cur.String())
			cur.Reset()
			hasCur = false
		} else {
			result = append(result, line)
		}
	}
	if hasCur {
		result = append(result, cur.String())
	}
	return result
}
