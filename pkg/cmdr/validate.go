// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"fmt"
	"slices"
	"strings"
)

// checkNumberOfArguments reports the first missing required positional, then
// excess operands when the last declared positional is not variadic.
func (c *Command) checkNumberOfArguments() error {
	for i, arg := range c.arguments {
		if arg.required && i >= len(c.args) {
			return c.missingArgument(arg.name)
		}
	}
	if n := len(c.arguments); n > 0 && c.arguments[n-1].variadic {
		return nil
	}
	if len(c.args) > len(c.arguments) {
		return c.excessArguments()
	}
	return nil
}

// processArguments validates operand counts and materializes processed
// positional values: transforms applied, defaults filled, variadic tails
// collected.
func (c *Command) processArguments() error {
	if err := c.checkNumberOfArguments(); err != nil {
		return err
	}

	parseOne := func(arg *Argument, value string, previous any) (any, error) {
		if arg.parseArg == nil {
			return value, nil
		}
		parsed, err := arg.parseArg(value, previous)
		if err != nil {
			msg := fmt.Sprintf("error: command-argument value '%s' is invalid for argument '%s'. %s", value, arg.name, err.Error())
			return nil, c.raise(&ParseError{ExitCode: 1, Code: CodeInvalidArgument, Message: msg, Err: err})
		}
		return parsed, nil
	}

	processed := make([]any, len(c.arguments))
	for i, arg := range c.arguments {
		value := arg.defaultValue
		if arg.variadic {
			if i < len(c.args) {
				if arg.parseArg != nil {
					acc := arg.defaultValue
					for _, raw := range c.args[i:] {
						parsed, err := parseOne(arg, raw, acc)
						if err != nil {
							return err
						}
						acc = parsed
					}
					value = acc
				} else {
					value = append([]string(nil), c.args[i:]...)
				}
			} else if value == nil {
				value = []string{}
			}
		} else if i < len(c.args) {
			parsed, err := parseOne(arg, c.args[i], arg.defaultValue)
			if err != nil {
				return err
			}
			value = parsed
		}
		processed[i] = value
	}
	c.processedArgs = processed
	return nil
}

// checkForMissingMandatoryOptions walks this command and its ancestors so a
// subcommand inherits validation of options registered higher up.
func (c *Command) checkForMissingMandatoryOptions() error {
	for _, cmd := range c.ancestors() {
		for _, opt := range cmd.options {
			if opt.mandatory && !cmd.hasOptionValue(opt.Key()) {
				return c.missingMandatoryOptionValue(opt)
			}
		}
	}
	return nil
}

func (c *Command) checkForConflictingOptions() error {
	for _, cmd := range c.ancestors() {
		if err := cmd.checkForConflictingLocalOptions(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Command) checkForConflictingLocalOptions() error {
	definedNonDefault := func(opt *Option) bool {
		key := opt.Key()
		return c.hasOptionValue(key) && c.sources[key] != SourceDefault
	}
	var defined []*Option
	for _, opt := range c.options {
		if definedNonDefault(opt) {
			defined = append(defined, opt)
		}
	}
	for _, opt := range defined {
		if len(opt.conflictsWith) == 0 {
			continue
		}
		for _, other := range defined {
			if other == opt {
				continue
			}
			if slices.Contains(opt.conflictsWith, other.Key()) {
				return c.conflictingOption(opt, other)
			}
		}
	}
	return nil
}

// conflictingOption reports both flags' effective identities, preferring the
// spelling that supplied the stored truthy/falsy value when an option and
// its negation are both registered.
func (c *Command) conflictingOption(opt, conflicting *Option) error {
	dual := newDualOptions(c.options)
	bestFromValue := func(opt *Option) *Option {
		key := opt.Key()
		value := c.values[key]
		neg := dual.negative[key]
		pos := dual.positive[key]
		if neg != nil {
			negValue := any(false)
			if neg.presetArg != nil {
				negValue = neg.presetArg
			}
			if sameValue(value, negValue) {
				return neg
			}
		}
		if pos != nil {
			return pos
		}
		return opt
	}
	describe := func(opt *Option) string {
		best := bestFromValue(opt)
		if c.sources[best.Key()] == SourceEnv && best.envVar != "" {
			return fmt.Sprintf("environment variable '%s'", best.envVar)
		}
		return fmt.Sprintf("option '%s'", best.Flags)
	}
	msg := fmt.Sprintf("error: %s cannot be used with %s", describe(opt), describe(conflicting))
	return c.raise(newParseError(1, CodeConflictingOption, msg))
}

func (c *Command) unknownOption(flag string) error {
	if c.allowUnknownOption {
		return nil
	}
	msg := fmt.Sprintf("error: unknown option '%s'", flag)
	return c.raise(newParseError(1, CodeUnknownOption, msg))
}

func (c *Command) unknownCommand(name string) error {
	msg := fmt.Sprintf("error: unknown command '%s'", name)
	return c.raise(newParseError(1, CodeUnknownCommand, msg))
}

func (c *Command) optionMissingArgument(opt *Option) error {
	msg := fmt.Sprintf("error: option '%s' argument missing", opt.Flags)
	return c.raise(newParseError(1, CodeOptionMissingArgument, msg))
}

func (c *Command) missingArgument(name string) error {
	msg := fmt.Sprintf("error: missing required argument '%s'", name)
	return c.raise(newParseError(1, CodeMissingArgument, msg))
}

func (c *Command) missingMandatoryOptionValue(opt *Option) error {
	msg := fmt.Sprintf("error: required option '%s' not specified", opt.Flags)
	return c.raise(newParseError(1, CodeMissingMandatoryOptionValue, msg))
}

func (c *Command) excessArguments() error {
	if c.allowExcessArguments {
		return nil
	}
	expected := len(c.arguments)
	forSubcommand := ""
	if c.parent != nil {
		forSubcommand = fmt.Sprintf(" for '%s'", c.name)
	}
	plural := ""
	if expected != 1 {
		plural = "s"
	}
	msg := fmt.Sprintf("error: too many arguments%s. Expected %d argument%s but got %d: %s",
		forSubcommand, expected, plural, len(c.args), strings.Join(c.args, " "))
	return c.raise(newParseError(1, CodeExcessArguments, msg))
}
