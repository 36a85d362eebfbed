// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func parseErrorCode(t *testing.T, err error) *ParseError {
	t.Helper()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	return perr
}

func TestMissingRequiredArgument(t *testing.T) {
	root, _, errOut := testRoot("app")
	root.Argument("<file>", "").Action(func(ctx context.Context, cmd *Command) error { return nil })

	perr := parseErrorCode(t, root.Parse(nil))
	if perr.Code != CodeMissingArgument {
		t.Errorf("Code = %q, want %q", perr.Code, CodeMissingArgument)
	}
	if perr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", perr.ExitCode)
	}
	if want := "error: missing required argument 'file'\n"; errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
}

func TestMissingRequiredVariadicArgument(t *testing.T) {
	root, _, _ := testRoot("app")
	root.Argument("<files...>", "").Action(func(ctx context.Context, cmd *Command) error { return nil })

	perr := parseErrorCode(t, root.Parse(nil))
	if perr.Code != CodeMissingArgument {
		t.Errorf("Code = %q, want %q", perr.Code, CodeMissingArgument)
	}
}

func TestExcessArguments(t *testing.T) {
	root, _, errOut := testRoot("app")
	root.Argument("[file]", "").Action(func(ctx context.Context, cmd *Command) error { return nil })

	perr := parseErrorCode(t, root.Parse([]string{"a", "b"}))
	if perr.Code != CodeExcessArguments {
		t.Errorf("Code = %q, want %q", perr.Code, CodeExcessArguments)
	}
	if !strings.Contains(errOut.String(), "Expected 1 argument but got 2") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestMissingMandatoryOption(t *testing.T) {
	root, _, _ := testRoot("app")
	root.RequiredOption("--pepper <type>", "pepper kind")
	root.Action(func(ctx context.Context, cmd *Command) error { return nil })

	perr := parseErrorCode(t, root.Parse(nil))
	if perr.Code != CodeMissingMandatoryOptionValue {
		t.Errorf("Code = %q, want %q", perr.Code, CodeMissingMandatoryOptionValue)
	}
}

func TestMandatoryOptionSatisfiedByEnv(t *testing.T) {
	root, _, _ := testRoot("app")
	root.AddOption(NewOption("--pepper <type>", "").Env("CMDR_TEST_PEPPER").Mandatory())
	root.Action(func(ctx context.Context, cmd *Command) error { return nil })
	t.Setenv("CMDR_TEST_PEPPER", "habanero")

	if err := root.Parse(nil); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := root.String("pepper"); got != "habanero" {
		t.Errorf("pepper = %q, want %q", got, "habanero")
	}
}

func TestMandatoryOptionInheritedBySubcommand(t *testing.T) {
	root, _, _ := testRoot("app")
	root.RequiredOption("--pepper <type>", "")
	root.Command("cook", "").Action(func(ctx context.Context, cmd *Command) error { return nil })

	perr := parseErrorCode(t, root.Parse([]string{"cook"}))
	if perr.Code != CodeMissingMandatoryOptionValue {
		t.Errorf("Code = %q, want %q", perr.Code, CodeMissingMandatoryOptionValue)
	}
}

func TestConflictingOptions(t *testing.T) {
	root, _, errOut := testRoot("app")
	root.AddOption(NewOption("--debug", "").Conflicts("silent"))
	root.Option("--silent", "")
	root.Action(func(ctx context.Context, cmd *Command) error { return nil })

	perr := parseErrorCode(t, root.Parse([]string{"--debug", "--silent"}))
	if perr.Code != CodeConflictingOption {
		t.Errorf("Code = %q, want %q", perr.Code, CodeConflictingOption)
	}
	if want := "error: option '--debug' cannot be used with option '--silent'\n"; errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
}

func TestConflictingOptionFromEnvNamesVariable(t *testing.T) {
	root, _, errOut := testRoot("app")
	root.AddOption(NewOption("--debug", "").Conflicts("silent"))
	root.AddOption(NewOption("--silent", "").Env("CMDR_TEST_SILENT"))
	root.Action(func(ctx context.Context, cmd *Command) error { return nil })
	t.Setenv("CMDR_TEST_SILENT", "1")

	perr := parseErrorCode(t, root.Parse([]string{"--debug"}))
	if perr.Code != CodeConflictingOption {
		t.Errorf("Code = %q, want %q", perr.Code, CodeConflictingOption)
	}
	if !strings.Contains(errOut.String(), "environment variable 'CMDR_TEST_SILENT'") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestConflictNotReportedForDefaults(t *testing.T) {
	root, _, _ := testRoot("app")
	root.AddOption(NewOption("--debug", "").Conflicts("silent"))
	root.AddOption(NewOption("--silent", "").Default(false))
	root.Action(func(ctx context.Context, cmd *Command) error { return nil })

	if err := root.Parse([]string{"--debug"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
}

func TestInvalidOptionArgument(t *testing.T) {
	parsePort := func(value string, previous any) (any, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("'%s' is not a valid port", value)
		}
		return n, nil
	}

	root, _, errOut := testRoot("app")
	root.AddOption(NewOption("-p, --port <number>", "").ArgParser(parsePort))
	root.Action(func(ctx context.Context, cmd *Command) error { return nil })

	perr := parseErrorCode(t, root.Parse([]string{"--port", "nope"}))
	if perr.Code != CodeInvalidArgument {
		t.Errorf("Code = %q, want %q", perr.Code, CodeInvalidArgument)
	}
	if !strings.Contains(errOut.String(), "'nope' is not a valid port") {
		t.Errorf("stderr = %q", errOut.String())
	}

	if err := root.Parse([]string{"--port", "8080"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := root.OptionValue("port"); got != 8080 {
		t.Errorf("port = %v, want 8080", got)
	}
}

func TestInvalidPositionalArgument(t *testing.T) {
	root, _, errOut := testRoot("app")
	root.AddArgument(NewArgument("<count>", "").ArgParser(func(value string, previous any) (any, error) {
		return strconv.Atoi(value)
	}))
	root.Action(func(ctx context.Context, cmd *Command) error { return nil })

	perr := parseErrorCode(t, root.Parse([]string{"five"}))
	if perr.Code != CodeInvalidArgument {
		t.Errorf("Code = %q, want %q", perr.Code, CodeInvalidArgument)
	}
	if !strings.Contains(errOut.String(), "value 'five' is invalid for argument 'count'") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestProcessedArguments(t *testing.T) {
	root, _, _ := testRoot("app")
	root.Argument("<source>", "").
		AddArgument(NewArgument("[dest]", "").Default("out")).
		Argument("[extras...]", "")
	var processed []any
	root.Action(func(ctx context.Context, cmd *Command) error {
		processed = cmd.ProcessedArgs()
		return nil
	})

	if err := root.Parse([]string{"in"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []any{"in", "out", []string{}}
	if !reflect.DeepEqual(processed, want) {
		t.Errorf("ProcessedArgs = %v, want %v", processed, want)
	}

	if err := root.Parse([]string{"in", "d", "x", "y"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want = []any{"in", "d", []string{"x", "y"}}
	if !reflect.DeepEqual(processed, want) {
		t.Errorf("ProcessedArgs = %v, want %v", processed, want)
	}
}

func TestVariadicPositionalTransformReduces(t *testing.T) {
	root, _, _ := testRoot("app")
	root.AddArgument(NewArgument("<nums...>", "").Default(0).ArgParser(func(value string, previous any) (any, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		return previous.(int) + n, nil
	}))
	var sum any
	root.Action(func(ctx context.Context, cmd *Command) error {
		sum = cmd.ProcessedArgs()[0]
		return nil
	})

	if err := root.Parse([]string{"1", "2", "3"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sum != 6 {
		t.Errorf("sum = %v, want 6", sum)
	}
}

func TestAllowExcessArguments(t *testing.T) {
	root, _, _ := testRoot("app")
	root.AllowExcessArguments().Action(func(ctx context.Context, cmd *Command) error { return nil })

	if err := root.Parse([]string{"a", "b"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := root.Args(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Args = %v", got)
	}
}
