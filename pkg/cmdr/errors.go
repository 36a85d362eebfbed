// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"fmt"
	"os"
)

// Stable error categories carried by ParseError.Code. These are identifiers
// for machine handling, not prose.
const (
	CodeUnknownOption               = "unknownOption"
	CodeUnknownCommand              = "unknownCommand"
	CodeOptionMissingArgument       = "optionMissingArgument"
	CodeMissingArgument             = "missingArgument"
	CodeMissingMandatoryOptionValue = "missingMandatoryOptionValue"
	CodeExcessArguments             = "excessArguments"
	CodeConflictingOption           = "conflictingOption"
	CodeInvalidArgument             = "invalidArgument"
	CodeHelp                        = "help"
	CodeHelpDisplayed               = "helpDisplayed"
	CodeVersion                     = "version"
	CodeExecuteSubcommand           = "executeSubCommandAsync"
)

// ParseError is the uniform error shape produced by parsing, dispatch and
// validation. ExitCode is the process exit status the default terminator
// would use, Code is one of the stable category constants above, and Err
// optionally carries a nested cause (e.g. a transform's own error).
type ParseError struct {
	ExitCode int
	Code     string
	Message  string
	Err      error
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(exitCode int, code, message string) *ParseError {
	return &ParseError{ExitCode: exitCode, Code: code, Message: message}
}

// informational reports whether the error is a non-error termination (help
// or version display) whose message must not be written to the error sink.
func (e *ParseError) informational() bool {
	switch e.Code {
	case CodeHelp, CodeHelpDisplayed, CodeVersion:
		return true
	}
	return false
}

// exit hook, swapped in tests.
var osExit = os.Exit

// raise is the single funnel for parse failures: it writes the human message
// to the error sink, then hands off to the terminator. With an exit override
// installed the error value is returned to the caller instead of ending the
// process.
func (c *Command) raise(pe *ParseError) error {
	if !pe.informational() {
		fmt.Fprintln(c.errWriter(), pe.Message)
	}
	return c.exit(pe)
}

// exit hands an already-reported error to the terminator collaborator.
func (c *Command) exit(pe *ParseError) error {
	if fn := c.exitFn(); fn != nil {
		if err := fn(pe); err != nil {
			return err
		}
		return pe
	}
	osExit(pe.ExitCode)
	return pe // unreachable
}
