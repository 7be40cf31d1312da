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

// Package commands wires the pkg/pkgconf core to a cobra command, matching
// the CLI surface of §6.
package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-pkgconf/pkgconf/config"
	"github.com/go-pkgconf/pkgconf/pkg/pkgconf"
)

// ConfigStore persists CLI-level defaults (system dirs, static/msvc
// toggles) across invocations, analogous to the teacher's registry
// config store but over pkgconf's own key set.
type ConfigStore interface {
	Load(ctx context.Context) (*Config, error)
}

// Config holds the persisted CLI defaults of §6's viper-backed convenience
// layer: extra system dirs for filtering and default --static/--msvc-syntax.
type Config struct {
	SystemIncludePaths []string
	SystemLibraryPaths []string
	DefaultStatic      bool
	DefaultMSVCSyntax  bool
}

type CobraCommand func(cmd *cobra.Command, args []string)
type CobraErrorCommand func(cmd *cobra.Command, args []string) error
type Run func(CobraErrorCommand) CobraCommand

type exitError struct{ code int }

func (e *exitError) ExitCode() int { return e.code }
func (e *exitError) Silent() bool  { return true }
func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

func newExitError(code int) *exitError { return &exitError{code: code} }

// cliUI routes diagnostics to the stream configured by --errors-to-stdout
// / --silence-errors (§6's "error output" contract).
type cliUI struct {
	out    *os.File
	silent bool
}

func newCLIUI(errorsToStdout, silenceErrors bool) *cliUI {
	out := os.Stderr
	if errorsToStdout {
		out = os.Stdout
	}
	debugSpew := os.Getenv("PKG_CONFIG_DEBUG_SPEW") != ""
	return &cliUI{out: out, silent: silenceErrors && !debugSpew}
}

func (u *cliUI) ReportError(code pkgconf.ErrCode, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	if !u.silent {
		fmt.Fprintf(u.out, "Error: %s\n", msg)
	}
	return pkgconf.NewError(code, msg)
}

func (u *cliUI) ReportWarning(format string, a ...interface{}) {
	if !u.silent {
		fmt.Fprintf(u.out, "Warning: %s\n", fmt.Sprintf(format, a...))
	}
}

func (u *cliUI) ReportInfo(format string, a ...interface{}) {
	if os.Getenv("PKG_CONFIG_DEBUG_SPEW") != "" {
		fmt.Fprintf(u.out, "Info: %s\n", fmt.Sprintf(format, a...))
	}
}

// New builds the root pkgconf command.
func New(run Run, cfgStore ConfigStore) *cobra.Command {
	var (
		flagCacheDir        string
		flagNoCache         bool
		flagCFlags          bool
		flagLibs             bool
		flagStatic           bool
		flagPure             bool
		flagMSVC             bool
		flagModVersion       bool
		flagExists           bool
		flagUninstalled      bool
		flagOnlyI            bool
		flagOnlyL            bool
		flagOnlyl            bool
		flagOnlyOther        bool
		flagVariable         string
		flagPrintRequires    bool
		flagPrintRequiresPriv bool
		flagPrintProvides    bool
		flagPrintVariables   bool
		flagAtLeastVersion   string
		flagExactVersion     string
		flagMaxVersion       string
		flagListAll          bool
		flagValidate         bool
		flagDefineVariable   []string
		flagEnv              string
		flagFragmentFilter   string
		flagWithPath         []string
		flagErrorsToStdout   bool
		flagSilenceErrors    bool
		flagSimulate         bool
	)

	cmd := &cobra.Command{
		Use:   "pkgconf [flags] [package ...]",
		Short: "Resolve compiler/linker flags for installed packages",
		Args:  cobra.ArbitraryArgs,
	}

	cmd.Flags().BoolVar(&flagCFlags, "cflags", false, "output all pre-processor and compiler flags")
	cmd.Flags().BoolVar(&flagLibs, "libs", false, "output all linker flags")
	cmd.Flags().BoolVar(&flagStatic, "static", false, "output libraries for static linking")
	cmd.Flags().BoolVar(&flagPure, "pure", false, "disable private-fragment merging even with --static")
	cmd.Flags().BoolVar(&flagMSVC, "msvc-syntax", false, "output flags in MSVC syntax")
	cmd.Flags().BoolVar(&flagModVersion, "modversion", false, "output the package's version")
	cmd.Flags().BoolVar(&flagExists, "exists", false, "check whether the given packages exist")
	cmd.Flags().BoolVar(&flagUninstalled, "uninstalled", false, "prefer uninstalled (*-uninstalled.pc) variants")
	cmd.Flags().BoolVar(&flagOnlyI, "only-I", false, "restrict --cflags output to -I flags")
	cmd.Flags().BoolVar(&flagOnlyL, "only-L", false, "restrict --libs output to -L flags")
	cmd.Flags().BoolVar(&flagOnlyl, "only-l", false, "restrict --libs output to -l flags")
	cmd.Flags().BoolVar(&flagOnlyOther, "only-other", false, "restrict output to untyped flags (not -I/-L/-l/-D/-U/-Wl,/-framework)")
	cmd.Flags().StringVar(&flagVariable, "variable", "", "print the value of the given variable")
	cmd.Flags().BoolVar(&flagPrintRequires, "print-requires", false, "print the Requires list")
	cmd.Flags().BoolVar(&flagPrintRequiresPriv, "print-requires-private", false, "print the Requires.private list")
	cmd.Flags().BoolVar(&flagPrintProvides, "print-provides", false, "print the Provides list")
	cmd.Flags().BoolVar(&flagPrintVariables, "print-variables", false, "print all variable names")
	cmd.Flags().StringVar(&flagAtLeastVersion, "atleast-version", "", "check for at least the given version")
	cmd.Flags().StringVar(&flagExactVersion, "exact-version", "", "check for exactly the given version")
	cmd.Flags().StringVar(&flagMaxVersion, "max-version", "", "check for at most the given version")
	cmd.Flags().BoolVar(&flagListAll, "list-all", false, "list every package visible on the search path")
	cmd.Flags().BoolVar(&flagValidate, "validate", false, "parse and report every diagnostic in the given package")
	cmd.Flags().StringArrayVar(&flagDefineVariable, "define-variable", nil, "define a global variable as name=value")
	cmd.Flags().StringVar(&flagEnv, "env", "", "print a shell-style 'export'-able PREFIX_CFLAGS/PREFIX_LIBS pair")
	cmd.Flags().StringVar(&flagFragmentFilter, "fragment-filter", "", "retain only fragments whose type is in this set")
	cmd.Flags().StringArrayVar(&flagWithPath, "with-path", nil, "prepend a directory to the search path")
	cmd.Flags().BoolVar(&flagErrorsToStdout, "errors-to-stdout", false, "print errors to stdout instead of stderr")
	cmd.Flags().BoolVar(&flagSilenceErrors, "silence-errors", false, "suppress error output")
	cmd.Flags().BoolVar(&flagSimulate, "simulate", false, "resolve and report success/failure without printing flags")
	cmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "override the on-disk metadata index directory")
	cmd.Flags().MarkHidden("cache-dir")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable both the in-process and on-disk package caches")
	cmd.Flags().MarkHidden("no-cache")

	cmd.Run = run(func(cobraCmd *cobra.Command, args []string) error {
		ui := newCLIUI(flagErrorsToStdout, flagSilenceErrors)
		cfg, err := cfgStore.Load(cobraCmd.Context())
		if err != nil {
			return err
		}

		client := pkgconf.NewClient(ui, false)
		client.SystemIncludePaths = append(client.SystemIncludePaths, cfg.SystemIncludePaths...)
		client.SystemLibraryPaths = append(client.SystemLibraryPaths, cfg.SystemLibraryPaths...)
		if flagUninstalled {
			client.Cache.PreferUninstalled = true
		}
		client.MSVCSyntax = flagMSVC || cfg.DefaultMSVCSyntax
		client.Pure = flagPure || client.Pure
		staticQuery := flagStatic || cfg.DefaultStatic
		if staticQuery {
			client.SearchPrivate = true
			client.MergePrivateFragments = true
		}
		if !flagNoCache {
			idx, err := newDiskIndex(flagCacheDir)
			if err == nil {
				client.Cache.Index = idx
			}
		}
		client.Cache.NoCache = flagNoCache

		for _, dir := range flagWithPath {
			client.WithPath(dir)
		}
		for _, assignment := range flagDefineVariable {
			client.DefineVariable(assignment)
		}

		switch {
		case flagListAll:
			return runListAll(client)
		case flagValidate:
			return runValidate(client, args)
		case flagModVersion:
			return runModVersion(client, args)
		case flagVariable != "":
			return runVariable(client, args, flagVariable)
		case flagPrintRequires || flagPrintRequiresPriv:
			return runPrintRequires(client, args, flagPrintRequiresPriv)
		case flagPrintProvides:
			return runPrintProvides(client, args)
		case flagPrintVariables:
			return runPrintVariables(client, args)
		case flagAtLeastVersion != "":
			return runCheckVersion(client, args, pkgconf.CompGreaterEqual, flagAtLeastVersion)
		case flagExactVersion != "":
			return runCheckVersion(client, args, pkgconf.CompEqual, flagExactVersion)
		case flagMaxVersion != "":
			return runCheckVersion(client, args, pkgconf.CompLessEqual, flagMaxVersion)
		case flagExists:
			return runExists(client, args)
		case flagEnv != "":
			return runEnv(client, args, flagEnv, staticQuery)
		}

		queue, err := parseQueue(args, ui)
		if err != nil {
			return err
		}

		types := fragmentTypesFor(flagOnlyI, flagOnlyL, flagOnlyl, flagOnlyOther, flagFragmentFilter)

		if flagSimulate {
			if flagCFlags {
				if _, err := client.FragmentFilter(queue, pkgconf.QueryCFlags, staticQuery, types); err != nil {
					return err
				}
			}
			if flagLibs {
				if _, err := client.FragmentFilter(queue, pkgconf.QueryLibs, staticQuery, types); err != nil {
					return err
				}
			}
			return nil
		}

		var out []string
		if flagCFlags {
			s, err := client.FragmentFilter(queue, pkgconf.QueryCFlags, staticQuery, types)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		if flagLibs {
			s, err := client.FragmentFilter(queue, pkgconf.QueryLibs, staticQuery, types)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		fmt.Println(strings.Join(out, " "))
		return nil
	})

	return cmd
}

func fragmentTypesFor(onlyI, onlyL, onlyl, onlyOther bool, filter string) string {
	if filter != "" {
		return filter
	}
	var b strings.Builder
	if onlyI {
		b.WriteByte('I')
	}
	if onlyL {
		b.WriteByte('L')
	}
	if onlyl {
		b.WriteByte('l')
	}
	if onlyOther {
		b.WriteByte('o')
	}
	return b.String()
}

func parseQueue(args []string, ui pkgconf.UI) (pkgconf.DependencyList, error) {
	return pkgconf.ParseDependencyList(strings.Join(args, " "), ui)
}

func runListAll(client *pkgconf.Client) error {
	pkgs, err := client.ListAll("")
	if err != nil {
		return err
	}
	for _, pkg := range pkgs {
		fmt.Printf("%-30s %s - %s\n", pkg.ID, pkg.RealName, pkg.Description)
	}
	return nil
}

func runValidate(client *pkgconf.Client, args []string) error {
	for _, name := range args {
		if err := client.Validate(name); err != nil {
			return newExitError(1)
		}
	}
	return nil
}

func runModVersion(client *pkgconf.Client, args []string) error {
	for _, name := range args {
		v, err := client.ModVersion(name)
		if err != nil {
			return newExitError(1)
		}
		fmt.Println(v)
	}
	return nil
}

func runVariable(client *pkgconf.Client, args []string, varName string) error {
	for _, name := range args {
		v, err := client.Variable(name, varName)
		if err != nil {
			return newExitError(1)
		}
		fmt.Println(v)
	}
	return nil
}

func runPrintRequires(client *pkgconf.Client, args []string, private bool) error {
	for _, name := range args {
		deps, err := client.PrintRequires(name, private)
		if err != nil {
			return newExitError(1)
		}
		for _, d := range deps {
			fmt.Println(d.String())
		}
	}
	return nil
}

func runPrintProvides(client *pkgconf.Client, args []string) error {
	for _, name := range args {
		deps, err := client.PrintProvides(name)
		if err != nil {
			return newExitError(1)
		}
		for _, d := range deps {
			fmt.Println(d.String())
		}
	}
	return nil
}

func runPrintVariables(client *pkgconf.Client, args []string) error {
	for _, name := range args {
		vars, err := client.PrintVariables(name)
		if err != nil {
			return newExitError(1)
		}
		for _, v := range vars {
			fmt.Println(v)
		}
	}
	return nil
}

func runCheckVersion(client *pkgconf.Client, args []string, cmp pkgconf.VersionComparator, required string) error {
	for _, name := range args {
		ok, err := client.CheckVersion(name, cmp, required)
		if err != nil || !ok {
			return newExitError(1)
		}
	}
	return nil
}

func runExists(client *pkgconf.Client, args []string) error {
	queue, err := parseQueue(args, client.UI)
	if err != nil {
		return newExitError(1)
	}
	if err := client.Exists(queue); err != nil {
		return newExitError(1)
	}
	return nil
}

func runEnv(client *pkgconf.Client, args []string, prefix string, static bool) error {
	queue, err := parseQueue(args, client.UI)
	if err != nil {
		return err
	}
	cflags, err := client.CFlags(queue, static)
	if err != nil {
		return err
	}
	libs, err := client.Libs(queue, static)
	if err != nil {
		return err
	}
	fmt.Printf("export %s_CFLAGS=%q\n", prefix, cflags)
	fmt.Printf("export %s_LIBS=%q\n", prefix, libs)
	return nil
}

func newDiskIndex(dir string) (*pkgconf.DiskIndex, error) {
	if dir == "" {
		var err error
		dir, err = config.DiskIndexPath()
		if err != nil {
			return nil, err
		}
	}
	return pkgconf.NewDiskIndex(dir)
}
