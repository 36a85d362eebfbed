// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pm demonstrates a command tree with in-process and out-of-process
// subcommands. "pm install" and "pm search" are dispatched to sibling
// executables named pm-install and pm-search.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yeetrun/cmdr/pkg/cmdr"
)

func main() {
	root := cmdr.New("pm").
		Description("tiny package manager front end").
		Version("0.1.0").
		Option("-v, --verbose", "chatty output")

	root.ExecutableCommand("install [pkgs...]", "install packages")
	root.ExecutableCommand("search <query>", "search the registry")

	root.Command("list", "list installed packages").
		Option("--json", "machine-readable output").
		Action(func(ctx context.Context, cmd *cmdr.Command) error {
			if cmd.Bool("json") {
				fmt.Println(`[]`)
				return nil
			}
			fmt.Println("no packages installed")
			return nil
		})

	if err := root.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
