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

func newTestCache(t *testing.T, dir string) *PkgCache {
	t.Helper()
	pl := NewPathList()
	pl.Add(dir, false)
	return NewPkgCache(pl)
}

func Test_PkgCache_Find_interns(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.pc"), []byte("Name: foo\nVersion: 1.0\n"), 0644))
	c := newTestCache(t, dir)

	a, err := c.Find("foo", nil, NullUI, ParseOptions{})
	require.NoError(t, err)
	require.NotNil(t, a)

	b, err := c.Find("foo", nil, NullUI, ParseOptions{})
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func Test_PkgCache_Find_prefersUninstalled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.pc"), []byte("Name: foo\nVersion: 1.0\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo-uninstalled.pc"), []byte("Name: foo\nVersion: 2.0\n"), 0644))
	c := newTestCache(t, dir)
	c.PreferUninstalled = true

	pkg, err := c.Find("foo", nil, NullUI, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "2.0", pkg.Version)
	assert.True(t, pkg.Uninstalled)
}

func Test_PkgCache_Find_missingReturnsNilNil(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := newTestCache(t, dir)
	pkg, err := c.Find("nope", nil, NullUI, ParseOptions{})
	require.NoError(t, err)
	assert.Nil(t, pkg)
}

func Test_PkgCache_ListAll_globFiltersByID(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.pc"), []byte("Name: foo\nVersion: 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bar.pc"), []byte("Name: bar\nVersion: 1\n"), 0644))
	c := newTestCache(t, dir)

	all, err := c.ListAll("", nil, NullUI, ParseOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyFoo, err := c.ListAll("fo*", nil, NullUI, ParseOptions{})
	require.NoError(t, err)
	require.Len(t, onlyFoo, 1)
	assert.Equal(t, "foo", onlyFoo[0].ID)
}

func Test_PkgCache_NoCache_reparsesEveryCall(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.pc"), []byte("Name: foo\nVersion: 1.0\n"), 0644))
	c := newTestCache(t, dir)
	c.NoCache = true

	a, err := c.Find("foo", nil, NullUI, ParseOptions{})
	require.NoError(t, err)
	b, err := c.Find("foo", nil, NullUI, ParseOptions{})
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}
