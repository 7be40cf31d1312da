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

// Package pkgconf resolves compiler and linker flags for installed
// libraries described by `.pc` metadata files.
//
// Key concepts:
//   - Package: one parsed `.pc` file. Has a version, compile/link
//     fragments, variables, and dependency lists (required, required
//     private, conflicts, provides).
//   - Dependency: a `name op version` constraint, resolved against the
//     package cache during traversal.
//   - Fragment: a single typed compiler/linker flag (`-I`, `-L`, `-l`, ...).
//   - Client: process-wide context holding the search path, the global
//     tuple store, the package cache, feature flags, and a UI for
//     reporting errors/warnings.
//
// Resolution never downloads or installs anything: the cache only reads
// `.pc` files that already exist on the search path.
package pkgconf
