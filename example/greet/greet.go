// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command greet demonstrates options, positional arguments and value
// transforms.
//
//	greet --shout alice
//	greet -g hola alice bob
//	greet --repeat 3 alice
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yeetrun/cmdr/pkg/cmdr"
)

func main() {
	root := cmdr.New("greet").
		Description("greet people from the command line").
		Version("0.1.0").
		Option("-s, --shout", "print the greeting in caps").
		AddOption(cmdr.NewOption("-g, --greeting <word>", "greeting to use").
			Default("hello").
			Env("GREET_GREETING")).
		AddOption(cmdr.NewOption("-r, --repeat <n>", "repeat the greeting").
			Default(1).
			ArgParser(func(value string, previous any) (any, error) {
				n, err := strconv.Atoi(value)
				if err != nil || n < 1 {
					return nil, fmt.Errorf("'%s' is not a positive count", value)
				}
				return n, nil
			})).
		Argument("<names...>", "who to greet")

	root.Action(func(ctx context.Context, cmd *cmdr.Command) error {
		greeting := cmd.String("greeting")
		repeat, _ := cmd.OptionValue("repeat").(int)
		names := cmd.ProcessedArgs()[0].([]string)

		line := fmt.Sprintf("%s, %s!", greeting, strings.Join(names, " and "))
		if cmd.Bool("shout") {
			line = strings.ToUpper(line)
		}
		for range repeat {
			fmt.Println(line)
		}
		return nil
	})

	if err := root.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
