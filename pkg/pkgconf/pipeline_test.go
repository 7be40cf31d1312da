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

func Test_filterFragments_suppressesDefaultSystemIncludeDir(t *testing.T) {
	t.Parallel()
	fl := FragmentList{
		{Type: fragInclude, Payload: "/usr/include"},
		{Type: fragInclude, Payload: "/opt/foo/include"},
	}
	got := filterFragments(fl, QueryCFlags, PipelineOptions{})
	assert.Equal(t, FragmentList{{Type: fragInclude, Payload: "/opt/foo/include"}}, got)
}

func Test_filterFragments_keepSystemCFlagsDisablesSuppression(t *testing.T) {
	t.Parallel()
	fl := FragmentList{{Type: fragInclude, Payload: "/usr/include"}}
	got := filterFragments(fl, QueryCFlags, PipelineOptions{KeepSystemCFlags: true})
	assert.Equal(t, fl, got)
}

func Test_filterFragments_suppressesInternalCflagsByDefault(t *testing.T) {
	t.Parallel()
	fl := FragmentList{{Type: fragDefine, Payload: "FOO", Internal: true}}
	got := filterFragments(fl, QueryCFlags, PipelineOptions{})
	assert.Empty(t, got)

	got = filterFragments(fl, QueryCFlags, PipelineOptions{DontFilterInternalCflags: true})
	assert.Equal(t, fl, got)
}

func Test_filterFragments_fragmentFilterNarrowsByType(t *testing.T) {
	t.Parallel()
	fl := FragmentList{
		{Type: fragInclude, Payload: "/a"},
		{Type: fragLib, Payload: "foo"},
	}
	got := filterFragments(fl, QueryCFlags, PipelineOptions{FragmentFilter: "I"})
	assert.Equal(t, FragmentList{{Type: fragInclude, Payload: "/a"}}, got)
}

func Test_mergeFragments_onlyLatestMergeableOccurrenceSurvives(t *testing.T) {
	t.Parallel()
	fl := FragmentList{
		{Type: fragInclude, Payload: "/a"},
		{Type: fragOther, Payload: "-pthread"},
		{Type: fragInclude, Payload: "/a"},
	}
	got := mergeFragments(fl)
	assert.Equal(t, FragmentList{
		{Type: fragOther, Payload: "-pthread"},
		{Type: fragInclude, Payload: "/a"},
	}, got)
}

func Test_applySysroot_prefixesPathFragmentsOnly(t *testing.T) {
	t.Parallel()
	fl := FragmentList{
		{Type: fragInclude, Payload: "/usr/include"},
		{Type: fragLib, Payload: "foo"},
	}
	got := applySysroot(fl, "/sysroot")
	assert.Equal(t, "/sysroot/usr/include", got[0].Payload)
	assert.Equal(t, "foo", got[1].Payload)
}

func Test_applySysroot_doesNotDoublePrefix(t *testing.T) {
	t.Parallel()
	fl := FragmentList{{Type: fragInclude, Payload: "/sysroot/usr/include"}}
	got := applySysroot(fl, "/sysroot")
	assert.Equal(t, "/sysroot/usr/include", got[0].Payload)
}

func Test_typeChar(t *testing.T) {
	t.Parallel()
	assert.Equal(t, byte('I'), typeChar(fragInclude))
	assert.Equal(t, byte('o'), typeChar(fragOther))
}
