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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePC writes a `.pc` file under dir/pkgconfig, grounding each end-to-end
// test in a real search-path directory rather than ParsePackageString.
func writePC(t *testing.T, dir, name, content string) {
	t.Helper()
	pkgconfigDir := filepath.Join(dir, "pkgconfig")
	require.NoError(t, os.MkdirAll(pkgconfigDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgconfigDir, name+".pc"), []byte(content), 0644))
}

func newTestClient(t *testing.T, dir string) *Client {
	t.Helper()
	c := NewClient(NullUI, true)
	c.SearchPath.Add(filepath.Join(dir, "pkgconfig"), false)
	c.Cache = NewPkgCache(c.SearchPath)
	c.Cache.OnLoad = c.applyPrefixRedefinition
	return c
}

func Test_Client_CFlagsAndLibs_resolveTransitiveDependency(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writePC(t, dir, "bar", `
prefix=`+dir+`
Name: bar
Version: 1.0
Cflags: -I${prefix}/include/bar
Libs: -L${prefix}/lib -lbar
`)
	writePC(t, dir, "foo", `
prefix=`+dir+`
Name: foo
Version: 1.0
Requires: bar
Cflags: -I${prefix}/include/foo
Libs: -L${prefix}/lib -lfoo
`)
	c := newTestClient(t, dir)

	queue, err := ParseDependencyList("foo", NullUI)
	require.NoError(t, err)

	cflags, err := c.CFlags(queue, false)
	require.NoError(t, err)
	assert.Equal(t, "-I"+dir+"/include/foo -I"+dir+"/include/bar", cflags)

	libs, err := c.Libs(queue, false)
	require.NoError(t, err)
	// libs is post-order: the leaf (bar) is emitted before its parent (foo).
	assert.Equal(t, "-L"+dir+"/lib -lbar -lfoo", libs)
}

func Test_Client_Libs_mergePrivateFragmentsGatesDedupNotPure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// Two unrelated roots emitting the same mergeable fragment: only the
	// merge stage may collapse the duplicate, and only when
	// MergePrivateFragments is set and Pure is not (§4.9).
	writePC(t, dir, "a", `
Name: a
Version: 1.0
Libs: -lshared
`)
	writePC(t, dir, "b", `
Name: b
Version: 1.0
Libs: -lshared
`)
	queue, err := ParseDependencyList("a b", NullUI)
	require.NoError(t, err)

	c := newTestClient(t, dir)
	libs, err := c.Libs(queue, false)
	require.NoError(t, err)
	assert.Equal(t, "-lshared -lshared", libs, "default options collect without merging")

	c = newTestClient(t, dir)
	c.MergePrivateFragments = true
	libs, err = c.Libs(queue, false)
	require.NoError(t, err)
	assert.Equal(t, "-lshared", libs, "MergePrivateFragments && !Pure merges the duplicate")

	c = newTestClient(t, dir)
	c.MergePrivateFragments = true
	c.Pure = true
	libs, err = c.Libs(queue, false)
	require.NoError(t, err)
	assert.Equal(t, "-lshared -lshared", libs, "Pure disables the merge stage even with MergePrivateFragments set")
}

func Test_Client_Exists_missingPackageIsError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := newTestClient(t, dir)
	queue, err := ParseDependencyList("doesnotexist", NullUI)
	require.NoError(t, err)

	err = c.Exists(queue)
	require.Error(t, err)
	assert.Equal(t, ErrPackageNotFound, Code(err))
}

func Test_Client_CFlags_versionMismatchIsError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writePC(t, dir, "foo", "Name: foo\nVersion: 1.0\n")
	c := newTestClient(t, dir)
	queue, err := ParseDependencyList("foo >= 2.0", NullUI)
	require.NoError(t, err)

	_, err = c.CFlags(queue, false)
	require.Error(t, err)
	assert.Equal(t, ErrPackageVerMismatch, Code(err))
}

func Test_Client_CFlags_conflictIsError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writePC(t, dir, "bar", "Name: bar\nVersion: 1.0\n")
	writePC(t, dir, "foo", "Name: foo\nVersion: 1.0\nRequires: bar\nConflicts: bar\n")
	c := newTestClient(t, dir)
	queue, err := ParseDependencyList("foo", NullUI)
	require.NoError(t, err)

	_, err = c.Libs(queue, false)
	require.Error(t, err)
	assert.Equal(t, ErrPackageConflict, Code(err))
}

func Test_Client_FindProvider_resolvesAliasedName(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writePC(t, dir, "bar-impl", "Name: bar-impl\nVersion: 1.0\nProvides: bar = 1.0\nLibs: -lbar\n")
	writePC(t, dir, "foo", "Name: foo\nVersion: 1.0\nRequires: bar\n")
	c := newTestClient(t, dir)
	queue, err := ParseDependencyList("foo", NullUI)
	require.NoError(t, err)

	libs, err := c.Libs(queue, false)
	require.NoError(t, err)
	assert.Equal(t, "-lbar", libs)
}

func Test_Client_ModVersion_andCheckVersion(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writePC(t, dir, "foo", "Name: foo\nVersion: 2.5\n")
	c := newTestClient(t, dir)

	v, err := c.ModVersion("foo")
	require.NoError(t, err)
	assert.Equal(t, "2.5", v)

	ok, err := c.CheckVersion("foo", CompGreaterEqual, "2.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CheckVersion("foo", CompGreaterEqual, "3.0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_Client_depthCapReportsDepGraphBreak(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// A genuine (acyclic) chain: the epoch-based visited check short-circuits
	// cycles before the depth cap would ever see them, so exercising the cap
	// needs a chain longer than MaximumTraverseDepth, not a cycle.
	writePC(t, dir, "a0", "Name: a0\nVersion: 1.0\nRequires: a1\n")
	writePC(t, dir, "a1", "Name: a1\nVersion: 1.0\nRequires: a2\n")
	writePC(t, dir, "a2", "Name: a2\nVersion: 1.0\nRequires: a3\n")
	writePC(t, dir, "a3", "Name: a3\nVersion: 1.0\n")
	c := newTestClient(t, dir)
	c.MaximumTraverseDepth = 2
	queue, err := ParseDependencyList("a0", NullUI)
	require.NoError(t, err)

	_, err = c.Libs(queue, false)
	require.Error(t, err)
	assert.Equal(t, ErrDepGraphBreak, Code(err))
}

func Test_Client_applyPrefixRedefinition_rewritesStoredPrefixTuple(t *testing.T) {
	t.Parallel()
	// .pc files conventionally live at <prefix>/lib/pkgconfig/name.pc;
	// applyPrefixRedefinition strips exactly that shape back off Filename.
	dir := t.TempDir()
	pkgconfigDir := filepath.Join(dir, "lib", "pkgconfig")
	require.NoError(t, os.MkdirAll(pkgconfigDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgconfigDir, "foo.pc"), []byte(`
prefix=/some/build-time/path
Name: foo
Version: 1.0
`), 0644))

	c := NewClient(NullUI, true)
	c.SearchPath.Add(pkgconfigDir, false)
	c.Cache = NewPkgCache(c.SearchPath)
	c.Cache.OnLoad = c.applyPrefixRedefinition

	v, err := c.Variable("foo", "prefix")
	require.NoError(t, err)
	assert.Equal(t, dir, v)
}

func Test_Client_Validate_collectsAllDiagnosticsWithoutFailingOnFirst(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writePC(t, dir, "foo", "bad line one\nbad line two\nName: foo\nVersion: 1\n")
	c := newTestClient(t, dir)

	err := c.Validate("foo")
	require.Error(t, err)
}
