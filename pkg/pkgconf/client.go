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

// defaultPrefixStripComponents is how many trailing path components are
// stripped from a package's filename to find its install prefix during
// REDEFINE_PREFIX (§4.1): "<prefix>/lib/pkgconfig/foo.pc" strips
// "lib/pkgconfig/foo.pc", i.e. 2 directory components plus the file itself.
const defaultPrefixStripComponents = 2

// Client is the process-wide entry point for all operations (§3): the
// search path, the global tuple store, the package cache, the UI handler,
// and every feature flag a query can be run under.
type Client struct {
	SearchPath *PathList
	Global     *tupleStore
	Cache      *PkgCache
	UI         UI

	SearchPrivate            bool
	MergePrivateFragments    bool
	SkipConflicts            bool
	RedefinePrefix           bool
	NoUninstalled            bool
	SkipProvides             bool
	NoCache                  bool
	EnvOnly                  bool
	SimplifyErrors           bool
	SkipRootVirtual          bool
	DontFilterInternalCflags bool
	DontRelocatePaths        bool
	Pure                     bool
	MSVCSyntax               bool

	SysrootDir       string
	TopBuildDir      string
	PrefixVarName    string
	MaximumTraverseDepth int

	SystemIncludePaths []string
	SystemLibraryPaths []string
	KeepSystemCFlags   bool
	KeepSystemLibs     bool

	ParseOptions ParseOptions
}

// NewClient builds a Client with the compiled-in defaults of §4.3/§6,
// consuming PKG_CONFIG_* environment variables the way the teacher's
// config layer consumes TOIT_* ones (grounded on config/config.go,
// generalized to this domain's variable set). envOnly suppresses the
// compiled-in default search path (§4.3's "unless ENV_ONLY is set") and
// must be known before the search path is built, so it is a constructor
// argument rather than a field set after the fact.
func NewClient(ui UI, envOnly bool) *Client {
	c := &Client{
		SearchPath:            NewPathList(),
		Global:                newTupleStore(),
		UI:                    ui,
		PrefixVarName:         "prefix",
		RedefinePrefix:        true,
		MergePrivateFragments: false,
		EnvOnly:               envOnly,
	}
	c.Cache = NewPkgCache(c.SearchPath)
	c.Cache.OnLoad = c.applyPrefixRedefinition
	c.loadEnvironment()
	return c
}

// loadEnvironment applies the environment variables of §6 in the order the
// spec lists them. Called once at construction; later mutation of the
// process environment has no effect on an already-built Client, matching
// §5's "global tuple store ... write-once-at-startup."
func (c *Client) loadEnvironment() {
	if libdir := os.Getenv("PKG_CONFIG_LIBDIR"); libdir != "" {
		c.SearchPath.AddAll(splitSearchPath(libdir), false)
	} else if !c.EnvOnly {
		c.SearchPath.AddAll(defaultSystemPkgConfigDirs(), false)
	}
	if path := os.Getenv("PKG_CONFIG_PATH"); path != "" {
		prepend := NewPathList()
		prepend.AddAll(splitSearchPath(path), false)
		prepend.AddAll(c.SearchPath.Dirs(), false)
		c.SearchPath = prepend
		c.Cache.searchPath = c.SearchPath
	}

	c.SysrootDir = os.Getenv("PKG_CONFIG_SYSROOT_DIR")
	if topBuild := os.Getenv("PKG_CONFIG_TOP_BUILD_DIR"); topBuild != "" {
		c.Global.define("pc_top_builddir", topBuild)
	} else {
		c.Global.define("pc_top_builddir", "$(top_builddir)")
	}

	if v := os.Getenv("PKG_CONFIG_SYSTEM_INCLUDE_PATH"); v != "" {
		c.SystemIncludePaths = splitSearchPath(v)
	}
	if v := os.Getenv("PKG_CONFIG_SYSTEM_LIBRARY_PATH"); v != "" {
		c.SystemLibraryPaths = splitSearchPath(v)
	}
	c.KeepSystemCFlags = os.Getenv("PKG_CONFIG_ALLOW_SYSTEM_CFLAGS") != ""
	c.KeepSystemLibs = os.Getenv("PKG_CONFIG_ALLOW_SYSTEM_LIBS") != ""

	c.NoUninstalled = os.Getenv("PKG_CONFIG_DISABLE_UNINSTALLED") != ""
	c.Cache.PreferUninstalled = !c.NoUninstalled

	if v := os.Getenv("PKG_CONFIG_MAXIMUM_TRAVERSE_DEPTH"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			c.MaximumTraverseDepth = n
		}
	}
	c.Pure = os.Getenv("PKG_CONFIG_PURE_DEPGRAPH") != ""
	c.SkipConflicts = os.Getenv("PKG_CONFIG_IGNORE_CONFLICTS") != ""
	c.DontRelocatePaths = os.Getenv("PKG_CONFIG_DONT_RELOCATE_PATHS") != ""
}

// defaultSystemPkgConfigDirs returns the compiled-in search path, used when
// PKG_CONFIG_LIBDIR is unset and the Client is not env-only; PKG_CONFIG_PATH
// entries are prepended to it rather than replacing it (§4.3).
func defaultSystemPkgConfigDirs() []string {
	return []string{
		"/usr/lib/pkgconfig",
		"/usr/lib64/pkgconfig",
		"/usr/share/pkgconfig",
	}
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errInvalidInt
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

var errInvalidInt = strErr("not a positive integer")

// WithPath prepends dir to the search path, mirroring --with-path (§6).
func (c *Client) WithPath(dir string) {
	prepend := NewPathList()
	prepend.Add(dir, false)
	prepend.AddAll(c.SearchPath.Dirs(), false)
	c.SearchPath = prepend
	c.Cache.searchPath = c.SearchPath
}

// DefineVariable installs a global variable from a --define-variable=N=V
// argument.
func (c *Client) DefineVariable(assignment string) bool {
	return c.Global.defineGlobal(assignment)
}

// applyPrefixRedefinition implements §4.1's REDEFINE_PREFIX rule. It is
// installed as the cache's OnLoad hook so every freshly parsed Package
// (not cache hits) is adjusted exactly once, before interning.
func (c *Client) applyPrefixRedefinition(pkg *Package) {
	if !c.RedefinePrefix || pkg.Filename == "" {
		return
	}
	varName := c.PrefixVarName
	if varName == "" {
		varName = "prefix"
	}
	oldPrefix, ok := pkg.Tuples.find(varName)
	if !ok {
		return
	}

	dir := filepath.Dir(pkg.Filename)
	for i := 0; i < defaultPrefixStripComponents-1; i++ {
		dir = filepath.Dir(dir)
	}
	actualPrefix := filepath.Dir(dir)

	if oldPrefix == actualPrefix {
		return
	}
	pkg.Tuples.define(varName, actualPrefix)
	if oldPrefix == "" {
		return
	}
	for _, key := range pkg.Tuples.entries() {
		if key == varName {
			continue
		}
		raw, _ := pkg.Tuples.find(key)
		if strings.HasPrefix(raw, oldPrefix) {
			pkg.Tuples.define(key, actualPrefix+strings.TrimPrefix(raw, oldPrefix))
		}
	}
}

// newResolver builds a resolver bound to this Client's cache/flags for one
// query.
func (c *Client) newResolver() *resolver {
	return newResolver(c.Cache, c.Global, c.UI, ResolveOptions{
		SearchPrivate:         c.SearchPrivate,
		MergePrivateFragments: c.MergePrivateFragments,
		Pure:                  c.Pure,
		SkipConflicts:         c.SkipConflicts,
		SkipProvides:          c.SkipProvides,
		MaximumTraverseDepth:  c.MaximumTraverseDepth,
		ParseOptions:          c.ParseOptions,
	})
}

func (c *Client) renderOps() RenderOps {
	if c.MSVCSyntax {
		return MSVCRenderOps
	}
	return DefaultRenderOps
}

func (c *Client) pipelineOptions(private bool) PipelineOptions {
	return PipelineOptions{
		PrivateQuery:             private,
		SearchPrivate:            c.SearchPrivate,
		MergePrivateFragments:    c.MergePrivateFragments,
		Pure:                     c.Pure,
		KeepSystemCFlags:         c.KeepSystemCFlags,
		KeepSystemLibs:           c.KeepSystemLibs,
		SystemIncludePaths:       c.SystemIncludePaths,
		SystemLibraryPaths:       c.SystemLibraryPaths,
		DontFilterInternalCflags: c.DontFilterInternalCflags,
		SysrootDir:               c.SysrootDir,
		DontRelocatePaths:        c.DontRelocatePaths,
		RenderOps:                c.renderOps(),
		Escape:                   true,
	}
}

// CFlags resolves queue and returns the rendered compile-flag string
// (§4.9, cflags query kind).
func (c *Client) CFlags(queue DependencyList, private bool) (string, error) {
	return Collect(c.newResolver(), queue, QueryCFlags, c.pipelineOptions(private))
}

// Libs resolves queue and returns the rendered link-flag string (§4.9,
// libs query kind).
func (c *Client) Libs(queue DependencyList, private bool) (string, error) {
	return Collect(c.newResolver(), queue, QueryLibs, c.pipelineOptions(private))
}

// FragmentFilter narrows a Libs/CFlags call to only the given type
// characters, implementing the CLI's -only-I/-only-L/-only-l/-only-other
// and --fragment-filter (§6).
func (c *Client) FragmentFilter(queue DependencyList, kind queryKind, private bool, types string) (string, error) {
	opts := c.pipelineOptions(private)
	opts.FragmentFilter = types
	return Collect(c.newResolver(), queue, kind, opts)
}

// Exists resolves queue purely for its side effect of reporting the first
// unsatisfied constraint, matching --exists' exit-code-only contract.
func (c *Client) Exists(queue DependencyList) error {
	_, err := c.Libs(queue, false)
	return err
}

// ModVersion returns the resolved package's version string, for
// --modversion.
func (c *Client) ModVersion(name string) (string, error) {
	pkg, err := c.Cache.Find(name, c.Global, c.UI, c.ParseOptions)
	if err != nil {
		return "", err
	}
	if pkg == nil {
		return "", c.UI.ReportError(ErrPackageNotFound, "package '%s' could not be found in the search path", name)
	}
	return pkg.Version, nil
}

// CheckVersion resolves name and checks its version against cmp/required,
// for --atleast-version/--exact-version/--max-version.
func (c *Client) CheckVersion(name string, cmp VersionComparator, required string) (bool, error) {
	version, err := c.ModVersion(name)
	if err != nil {
		return false, err
	}
	return cmp.Check(version, required), nil
}

// Variable returns the expanded value of varName on the resolved package,
// for --variable=NAME.
func (c *Client) Variable(name, varName string) (string, error) {
	pkg, err := c.Cache.Find(name, c.Global, c.UI, c.ParseOptions)
	if err != nil {
		return "", err
	}
	if pkg == nil {
		return "", c.UI.ReportError(ErrPackageNotFound, "package '%s' could not be found in the search path", name)
	}
	raw, ok := pkg.Tuples.find(varName)
	if !ok {
		return "", nil
	}
	return pkg.Tuples.parse(raw, c.Global, c.UI)
}

// PrintVariables returns every variable name defined on the resolved
// package, in definition order, for --print-variables.
func (c *Client) PrintVariables(name string) ([]string, error) {
	pkg, err := c.Cache.Find(name, c.Global, c.UI, c.ParseOptions)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, c.UI.ReportError(ErrPackageNotFound, "package '%s' could not be found in the search path", name)
	}
	return pkg.Tuples.entries(), nil
}

// PrintRequires returns the Requires (or, if private, RequiresPrivate)
// list of the resolved package, for --print-requires[-private].
func (c *Client) PrintRequires(name string, private bool) (DependencyList, error) {
	pkg, err := c.Cache.Find(name, c.Global, c.UI, c.ParseOptions)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, c.UI.ReportError(ErrPackageNotFound, "package '%s' could not be found in the search path", name)
	}
	if private {
		return pkg.RequiresPrivate, nil
	}
	return pkg.Requires, nil
}

// PrintProvides returns the resolved package's Provides list, for
// --print-provides.
func (c *Client) PrintProvides(name string) (DependencyList, error) {
	pkg, err := c.Cache.Find(name, c.Global, c.UI, c.ParseOptions)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, c.UI.ReportError(ErrPackageNotFound, "package '%s' could not be found in the search path", name)
	}
	return pkg.Provides, nil
}

// ListAll returns every package on the search path matching pattern, for
// --list-all (§4.5a).
func (c *Client) ListAll(pattern string) ([]*Package, error) {
	return c.Cache.ListAll(pattern, c.Global, c.UI, c.ParseOptions)
}

// Validate re-parses name in validate mode, collecting every diagnostic
// instead of failing on the first (§4.4 rule 3, §7's validate-mode
// handler contract).
func (c *Client) Validate(name string) error {
	opts := c.ParseOptions
	opts.ValidateMode = true
	_, err := c.Cache.Find(name, c.Global, c.UI, opts)
	return err
}
