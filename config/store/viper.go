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

package store

import (
	"context"

	"github.com/spf13/viper"

	"github.com/go-pkgconf/pkgconf/commands"
)

const (
	configKeySystemIncludePaths = "pkgconf.system_include_paths"
	configKeySystemLibraryPaths = "pkgconf.system_library_paths"
	configKeyDefaultStatic      = "pkgconf.static"
	configKeyDefaultMSVCSyntax  = "pkgconf.msvc_syntax"
)

// Viper loads the CLI's persisted defaults from an optional config.yaml in
// config.UserConfigPath() ($PKGCONF_USER_CONFIG_DIR, else
// $HOME/.config/pkgconf) (§6), purely a convenience layer:
// every value it produces can also be set via flag or environment
// variable, and it is never consulted by pkg/pkgconf itself.
type Viper struct{}

// Init points viper at cfgFile and reads it if present; a missing file is
// not an error, since the config layer is optional.
func (v *Viper) Init(cfgFile string) error {
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}

func (v *Viper) Load(ctx context.Context) (*commands.Config, error) {
	return &commands.Config{
		SystemIncludePaths: viper.GetStringSlice(configKeySystemIncludePaths),
		SystemLibraryPaths: viper.GetStringSlice(configKeySystemLibraryPaths),
		DefaultStatic:      viper.GetBool(configKeyDefaultStatic),
		DefaultMSVCSyntax:  viper.GetBool(configKeyDefaultMSVCSyntax),
	}, nil
}
