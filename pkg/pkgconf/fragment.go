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
	"strings"

	"github.com/alessio/shellescape"
)

// fragmentType identifies what kind of flag a Fragment carries. The zero
// value means the fragment is a literal opaque token (e.g. "-pthread"),
// matching §4.2's "type \0 means literal opaque token".
type fragmentType byte

const (
	fragOther    fragmentType = 0
	fragInclude  fragmentType = 'I'
	fragLibPath  fragmentType = 'L'
	fragLib      fragmentType = 'l'
	fragDefine   fragmentType = 'D'
	fragUndefine fragmentType = 'U'
	fragLinker   fragmentType = 'W' // -Wl,...
	fragFramework fragmentType = 'f'
)

// mergeableTypes dedup by (type, payload); non-mergeable fragments permit
// duplicates and never change order.
func (t fragmentType) mergeable() bool {
	switch t {
	case fragInclude, fragLibPath, fragLib, fragDefine, fragUndefine, fragFramework:
		return true
	default:
		return false
	}
}

// Fragment is a single compile or link flag atom.
type Fragment struct {
	Type    fragmentType
	Payload string
	// Private marks a fragment as coming from a `.private` field (CFlags.private,
	// Libs.private); the pipeline only collects these under §4.9's rules.
	Private bool
	// Internal marks a fragment listed in `CFlags.internal`, suppressed by
	// the filter stage unless DontFilterInternalCflags is set (§4.9).
	Internal bool
}

func (f Fragment) key() (fragmentType, string) { return f.Type, f.Payload }

// FragmentList is an ordered sequence of fragments with §4.2 merge/filter/
// render semantics.
type FragmentList []Fragment

// Append adds a fragment. Mergeable (type, payload) pairs move an existing
// equal entry to the end of the list instead of duplicating it; other
// fragments are always appended, duplicates and all.
func (fl *FragmentList) Append(f Fragment) {
	if f.Type.mergeable() {
		for i, existing := range *fl {
			if existing.key() == f.key() {
				*fl = append((*fl)[:i], (*fl)[i+1:]...)
				break
			}
		}
	}
	*fl = append(*fl, f)
}

// AppendAll appends every fragment of other via Append, preserving its
// merge semantics.
func (fl *FragmentList) AppendAll(other FragmentList) {
	for _, f := range other {
		fl.Append(f)
	}
}

// Filter returns a new list containing only fragments for which keep
// returns true. The input list is unmodified.
func (fl FragmentList) Filter(keep func(Fragment) bool) FragmentList {
	result := make(FragmentList, 0, len(fl))
	for _, f := range fl {
		if keep(f) {
			result = append(result, f)
		}
	}
	return result
}

// RenderOps configures how Render turns fragment types into flag
// prefixes/suffixes. Default (gcc-style) and MSVC variants are provided.
type RenderOps struct {
	IncludePrefix string
	LibPathPrefix string
	LibPrefix     string
	LibSuffix     string
}

// DefaultRenderOps matches gcc/clang-style flags: -I, -L, -l.
var DefaultRenderOps = RenderOps{IncludePrefix: "-I", LibPathPrefix: "-L", LibPrefix: "-l"}

// MSVCRenderOps matches cl.exe-style flags: /I, /libpath:, foo.lib.
var MSVCRenderOps = RenderOps{IncludePrefix: "/I", LibPathPrefix: "/libpath:", LibSuffix: ".lib"}

// Render renders the fragment list to a single space-separated string.
// When escape is true, payloads containing shell metacharacters are
// quoted via shellescape, matching how a generated command line would be
// safely re-used in a shell.
func (fl FragmentList) Render(ops RenderOps, escape bool) string {
	tokens := make([]string, 0, len(fl))
	for _, f := range fl {
		tokens = append(tokens, renderOne(f, ops, escape))
	}
	return strings.Join(tokens, " ")
}

func renderOne(f Fragment, ops RenderOps, escape bool) string {
	quote := func(s string) string {
		if !escape {
			return s
		}
		return shellescape.Quote(s)
	}
	switch f.Type {
	case fragInclude:
		return quote(ops.IncludePrefix + f.Payload)
	case fragLibPath:
		return quote(ops.LibPathPrefix + f.Payload)
	case fragLib:
		if ops.LibSuffix != "" {
			return quote(f.Payload + ops.LibSuffix)
		}
		return quote(ops.LibPrefix + f.Payload)
	case fragFramework:
		return quote("-framework " + f.Payload)
	default:
		return quote(f.Payload)
	}
}

// hasSystemDir reports whether f is an -I or -L fragment whose payload is
// one of sysDirs, used by the filter stage (§4.9) to suppress redundant
// system-path flags.
func hasSystemDir(f Fragment, sysDirs []string) bool {
	if f.Type != fragInclude && f.Type != fragLibPath {
		return false
	}
	for _, d := range sysDirs {
		if f.Payload == d {
			return true
		}
	}
	return false
}

// ParseFragments tokenizes a raw Cflags/Libs value (after variable
// expansion) into a FragmentList, respecting shell-style quoting and
// backslash escapes (§4.2).
func ParseFragments(raw string, private bool) (FragmentList, error) {
	tokens, err := tokenizeShellWords(raw)
	if err != nil {
		return nil, err
	}
	var result FragmentList
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		typ, payload, takesArg := classifyToken(tok)
		if takesArg && payload == "" && i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
			i++
			payload = tokens[i]
		}
		result.Append(Fragment{Type: typ, Payload: payload, Private: private})
	}
	return result, nil
}

// classifyToken inspects a single whitespace-delimited token and decides
// its fragment type, payload, and whether it consumes the following token
// as an argument (e.g. "-framework Foo").
func classifyToken(tok string) (typ fragmentType, payload string, takesArg bool) {
	switch {
	case strings.HasPrefix(tok, "-I"):
		return fragInclude, tok[2:], false
	case strings.HasPrefix(tok, "-L"):
		return fragLibPath, tok[2:], false
	case strings.HasPrefix(tok, "-l"):
		return fragLib, tok[2:], false
	case strings.HasPrefix(tok, "-D"):
		return fragDefine, tok[2:], false
	case strings.HasPrefix(tok, "-U"):
		return fragUndefine, tok[2:], false
	case strings.HasPrefix(tok, "-Wl,"):
		return fragLinker, tok, false
	case tok == "-framework":
		return fragFramework, "", true
	default:
		return fragOther, tok, false
	}
}

// tokenizeShellWords splits raw into shell-style words, honoring single
// and double quotes and backslash escapes. Unterminated quotes are a
// FILE_INVALID_SYNTAX error at the caller (metadata.go), so this returns
// a plain error here and lets the caller attach the code and path.
func tokenizeShellWords(raw string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	hasCur := false
	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			if hasCur {
				tokens = append(tokens, cur.String())
				cur.Reset()
				hasCur = false
			}
			i++
		case c == '\\':
			if i+1 >= len(raw) {
				return nil, errUnterminatedEscape
			}
			cur.WriteByte(raw[i+1])
			hasCur = true
			i += 2
		case c == '\'':
			end := strings.IndexByte(raw[i+1:], '\'')
			if end < 0 {
				return nil, errUnterminatedQuote
			}
			cur.WriteString(raw[i+1 : i+1+end])
			hasCur = true
			i += end + 2
		case c == '"':
			j := i + 1
			for j < len(raw) && raw[j] != '"' {
				if raw[j] == '\\' && j+1 < len(raw) {
					cur.WriteByte(raw[j+1])
					j += 2
					continue
				}
				cur.WriteByte(raw[j])
				j++
			}
			if j >= len(raw) {
				return nil, errUnterminatedQuote
			}
			hasCur = true
			i = j + 1
		default:
			cur.WriteByte(c)
			hasCur = true
			i++
		}
	}
	if hasCur {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

var (
	errUnterminatedQuote  = strErr("unterminated quote")
	errUnterminatedEscape = strErr("trailing backslash")
)

type strErr string

func (e strErr) Error() string { return string(e) }
