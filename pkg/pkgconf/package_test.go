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

func Test_Package_HasProvide_matchesNameAndVersion(t *testing.T) {
	t.Parallel()
	pkg := &Package{Provides: DependencyList{{Name: "bar", Version: "1.5"}}}

	assert.True(t, pkg.HasProvide(Dependency{Name: "bar", Comparator: CompAny}))
	assert.True(t, pkg.HasProvide(Dependency{Name: "bar", Comparator: CompGreaterEqual, Version: "1.0"}))
	assert.False(t, pkg.HasProvide(Dependency{Name: "bar", Comparator: CompGreaterEqual, Version: "2.0"}))
	assert.False(t, pkg.HasProvide(Dependency{Name: "other", Comparator: CompAny}))
}

func Test_NewVirtualPackage_isMarkedVirtual(t *testing.T) {
	t.Parallel()
	queue := DependencyList{{Name: "foo"}}
	pkg := NewVirtualPackage(queue)
	assert.True(t, pkg.Virtual)
	assert.Equal(t, queue, pkg.Requires)
}
