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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-pkgconf/pkgconf/commands"
	"github.com/go-pkgconf/pkgconf/config"
	"github.com/go-pkgconf/pkgconf/config/store"
)

var cfgFile string

func main() {
	cobra.OnInitialize(initConfig)

	cfgStore := &store.Viper{}

	runWrapper := func(f commands.CobraErrorCommand) commands.CobraCommand {
		return func(cmd *cobra.Command, args []string) {
			err := f(cmd, args)
			if err != nil {
				_, silent := err.(commands.WithSilent)
				if !silent {
					fmt.Fprintf(os.Stderr, "Unhandled error: %v\n", err)
				}
				if e, ok := err.(commands.WithExitCode); ok {
					os.Exit(e.ExitCode())
				}
				os.Exit(1)
			}
		}
	}

	root := commands.New(runWrapper, cfgStore)
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	root.Flags().MarkHidden("config")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile == "" {
		cfgFile, _ = config.UserConfigFile()
	}
	(&store.Viper{}).Init(cfgFile)
}
