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

import "fmt"

// UI lets this package report diagnostics without deciding how they are
// displayed. The CLI front-end owns the stderr/stdout/silence choice (see
// DESIGN.md); this package only ever calls through the handler.
//
// Handlers are free to keep going after an error (as validate-mode does,
// to collect every diagnostic) or to treat the first error as fatal.
type UI interface {
	// ReportError signals an error to the user and returns a *status.Status
	// wrapped error describing it (see errors.go). Callers propagate the
	// returned error.
	ReportError(code ErrCode, format string, a ...interface{}) error

	// ReportWarning signals a non-fatal problem, e.g. an unknown keyword
	// in a `.pc` file or an unresolved `${var}` reference.
	ReportWarning(format string, a ...interface{})

	// ReportInfo reports informational tracing; the CLI's UI prints it only
	// when PKG_CONFIG_DEBUG_SPEW is set.
	ReportInfo(format string, a ...interface{})
}

// fmtUI implements UI on top of fmt, printing everything to stdout. It is
// meant for tests and simple embeddings; the CLI front-end installs its own
// UI that routes to the configured error stream.
type fmtUI struct{}

func (fmtUI) ReportError(code ErrCode, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	fmt.Printf("Error: %s\n", msg)
	return newStatusError(code, msg)
}

func (fmtUI) ReportWarning(format string, a ...interface{}) {
	fmt.Printf("Warning: %s\n", fmt.Sprintf(format, a...))
}

func (fmtUI) ReportInfo(format string, a ...interface{}) {
	fmt.Printf("Info: %s\n", fmt.Sprintf(format, a...))
}

// nullUI discards everything. Useful when callers only care about the
// returned error value, not about printed diagnostics.
type nullUI struct{}

func (nullUI) ReportError(code ErrCode, format string, a ...interface{}) error {
	return newStatusError(code, fmt.Sprintf(format, a...))
}

func (nullUI) ReportWarning(format string, a ...interface{}) {}
func (nullUI) ReportInfo(format string, a ...interface{})    {}

var (
	// FmtUI is a UI that prints to stdout using fmt. Handy for quick
	// embeddings and for tests that don't care about output routing.
	FmtUI UI = fmtUI{}

	// NullUI discards every diagnostic.
	NullUI UI = nullUI{}
)
