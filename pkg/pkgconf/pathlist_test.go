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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PathList_Add_dedupsEquivalentPaths(t *testing.T) {
	t.Parallel()
	pl := NewPathList()
	pl.Add("/usr/lib/pkgconfig", false)
	pl.Add("/usr/lib/pkgconfig/", false)
	pl.Add("/usr/lib/./pkgconfig", false)
	pl.Add("/opt/lib/pkgconfig", false)

	assert.Equal(t, []string{"/usr/lib/pkgconfig", "/opt/lib/pkgconfig"}, pl.Dirs())
}

func Test_PathList_Add_skipsEmpty(t *testing.T) {
	t.Parallel()
	pl := NewPathList()
	pl.Add("", false)
	assert.Empty(t, pl.Dirs())
}

func Test_PathList_Add_checkDropsNonexistentDir(t *testing.T) {
	t.Parallel()
	pl := NewPathList()
	pl.Add("/this/does/not/exist/hopefully", true)
	assert.Empty(t, pl.Dirs())
}

func Test_splitSearchPath(t *testing.T) {
	t.Parallel()
	got := splitSearchPath("/a:/b::/c")
	assert.Equal(t, []string{"/a", "/b", "/c"}, got)
}

func Test_splitSearchPath_empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, splitSearchPath(""))
}
