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

func Test_CompareVersions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.1", "1.0", 1},
		{"1.0.0", "1.0", 1},
		{"2.0", "10.0", -1},
		{"1.0a", "1.0b", -1},
		{"1.0", "1.0a", -1},
		{"1.0~rc1", "1.0", -1},
		{"1.0~rc1", "1.0~rc2", -1},
		{"1.0.0", "1.0.0.1", -1},
	}
	for _, test := range tests {
		t.Run(test.a+"_vs_"+test.b, func(t *testing.T) {
			got := CompareVersions(test.a, test.b)
			switch {
			case test.want < 0:
				assert.Negative(t, got)
			case test.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func Test_VersionComparator_Check(t *testing.T) {
	t.Parallel()
	assert.True(t, CompGreaterEqual.Check("1.2", "1.0"))
	assert.False(t, CompLess.Check("1.2", "1.0"))
	assert.True(t, CompEqual.Check("1.0", "1.0"))
	assert.True(t, CompAny.Check("anything", "1.0"))
}

func Test_VersionComparator_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ">=", CompGreaterEqual.String())
	assert.Equal(t, "", CompAny.String())
}
