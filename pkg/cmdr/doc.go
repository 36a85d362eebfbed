// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmdr builds command-line interfaces from a tree of commands with
// typed options, positional arguments and automatic help.
//
// A program declares a root command, registers options, positionals and
// subcommands on it with chainable builders, then calls Parse with
// os.Args[1:]:
//
//	root := cmdr.New("serve").
//	    Description("tiny file server").
//	    Version("1.4.0").
//	    Option("-p, --port <number>", "port to listen on").
//	    Option("-v, --verbose", "chatty logging").
//	    Argument("[dir]", "directory to serve")
//
//	root.Action(func(ctx context.Context, cmd *cmdr.Command) error {
//	    return serve(ctx, cmd.String("port"), cmd.Bool("verbose"), cmd.Args())
//	})
//
//	if err := root.Parse(os.Args[1:]); err != nil {
//	    os.Exit(1)
//	}
//
// # Options
//
// An option is declared from a flags spec string: a short flag, a long flag,
// or both, optionally followed by a value placeholder. "<x>" requires a
// value, "[x]" makes it optional, and a "..." suffix inside the placeholder
// collects repeats into a slice:
//
//	Option("-d, --debug", "boolean flag")
//	Option("-p, --port <number>", "required option-argument")
//	Option("-c, --cheese [kind]", "optional option-argument")
//	Option("-l, --list <items...>", "variadic")
//
// Resolved values are stored under the camelCase form of the long flag
// ("--dry-run" stores under "dryRun") and read back with OptionValue, String,
// Bool or Strings. Every value carries a provenance tag (default, config,
// env, cli, implied) available via OptionValueSource.
//
// For richer behavior build the option explicitly:
//
//	cmd.AddOption(cmdr.NewOption("-t, --timeout <secs>", "give up after secs").
//	    Default("30").
//	    Env("APP_TIMEOUT").
//	    ArgParser(parseSeconds))
//
// A long flag spelled "--no-x" negates: it stores false under key "x", and
// when registered alone defaults the key to true.
//
// # Subcommands
//
// Command attaches a child parsed recursively; unrecognized option-shaped
// tokens at one level flow down for a descendant to claim. A child declared
// with ExecutableCommand is handled out of process by a sibling executable
// named "<parent>-<child>".
//
// # Errors
//
// Every parse-time failure is reported as a *ParseError with a stable Code
// category, its message written to the error sink, and the process ended via
// os.Exit. Installing ExitOverride turns termination into an ordinary
// returned error, which embedding programs and tests inspect:
//
//	root.ExitOverride()
//	err := root.Parse(args)
//	var perr *cmdr.ParseError
//	if errors.As(err, &perr) && perr.Code == cmdr.CodeHelpDisplayed {
//	    return nil
//	}
package cmdr
