// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseArgFunc transforms a raw captured value. previous holds the value
// accumulated so far (the default, or earlier occurrences of a variadic
// option), letting transforms reduce repeated occurrences.
type ParseArgFunc func(value string, previous any) (any, error)

// Option describes one flag: its spellings, whether it takes a value, and
// how a captured value is resolved. Shape is fixed at construction; the
// chainable setters are meant to run before the option is registered.
type Option struct {
	Flags       string
	Description string

	short     string
	long      string
	valueName string

	required bool // value must follow the flag
	optional bool // value may follow the flag
	variadic bool
	negate   bool // --no-* spelling

	mandatory bool // must be resolved by end of parse
	hidden    bool
	helpGroup string

	defaultValue     any
	defaultValueDesc string
	presetArg        any
	envVar           string
	conflictsWith    []string
	implied          map[string]any
	parseArg         ParseArgFunc

	// onMatch runs before value assignment when the flag is seen on the
	// command line; used for self-terminating options like --version.
	onMatch func(c *Command) error
}

var (
	shortFlagRe      = regexp.MustCompile(`^-[^-]$`)
	requiredArgRe    = regexp.MustCompile(`<([^>]+)>`)
	optionalArgRe    = regexp.MustCompile(`\[([^\]]+)\]`)
	flagSeparatorRe  = regexp.MustCompile(`[ |,]+`)
	negativeNumberRe = regexp.MustCompile(`^-\d*\.?\d+(e[+-]?\d+)?$`)
	digitShortFlagRe = regexp.MustCompile(`^-\d$`)
	longFlagWithEqRe = regexp.MustCompile(`^--[^=]+=`)
	camelBoundaryRe  = regexp.MustCompile(`-(\w)`)
)

// NewOption builds an option from a flags spec string, e.g.
// "-p, --port <number>", "--tag <tags...>", "-c, --cheese [type]", or
// "--no-color". Panics when the spec declares no flag at all; flag spec
// mistakes are programmer errors, not user input.
func NewOption(flags, description string) *Option {
	o := &Option{Flags: flags, Description: description}
	o.short, o.long = splitOptionFlags(flags)
	if o.short == "" && o.long == "" {
		panic(fmt.Sprintf("cmdr: option %q declares neither a short nor a long flag", flags))
	}
	o.negate = strings.HasPrefix(o.long, "--no-")
	if m := requiredArgRe.FindStringSubmatch(flags); m != nil {
		o.required = true
		o.valueName = m[1]
	} else if m := optionalArgRe.FindStringSubmatch(flags); m != nil {
		o.optional = true
		o.valueName = m[1]
	}
	if strings.HasSuffix(o.valueName, "...") {
		o.variadic = true
		o.valueName = strings.TrimSuffix(o.valueName, "...")
	}
	return o
}

func splitOptionFlags(flags string) (short, long string) {
	parts := flagSeparatorRe.Split(strings.TrimSpace(flags), -1)
	if len(parts) > 0 && shortFlagRe.MatchString(parts[0]) {
		short = parts[0]
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.HasPrefix(parts[0], "--") {
		long = parts[0]
	}
	return short, long
}

// Default sets the value used when the option is never resolved from a
// higher-precedence source. desc optionally overrides how the default is
// shown in help.
func (o *Option) Default(value any, desc ...string) *Option {
	o.defaultValue = value
	if len(desc) > 0 {
		o.defaultValueDesc = desc[0]
	}
	return o
}

// Preset sets the value assigned when an optional-argument flag is supplied
// without a value (e.g. --cheese with no type given).
func (o *Option) Preset(value any) *Option {
	o.presetArg = value
	return o
}

// Env binds the option to an environment variable, consulted when no
// command-line occurrence resolved a value.
func (o *Option) Env(name string) *Option {
	o.envVar = name
	return o
}

// Conflicts declares option keys (or flag spellings) this option must not be
// combined with.
func (o *Option) Conflicts(names ...string) *Option {
	for _, name := range names {
		o.conflictsWith = append(o.conflictsWith, optionKeyFromName(name))
	}
	return o
}

// Implies sets values applied to other option keys when this option resolves
// from a non-default source and no explicit value claimed those keys.
func (o *Option) Implies(values map[string]any) *Option {
	if o.implied == nil {
		o.implied = map[string]any{}
	}
	for k, v := range values {
		o.implied[optionKeyFromName(k)] = v
	}
	return o
}

// ArgParser installs a transform applied to each captured raw value.
func (o *Option) ArgParser(fn ParseArgFunc) *Option {
	o.parseArg = fn
	return o
}

// Mandatory marks the option as required to resolve a value by end of parse,
// from any source.
func (o *Option) Mandatory() *Option {
	o.mandatory = true
	return o
}

// Hide excludes the option from help output. It still parses.
func (o *Option) Hide() *Option {
	o.hidden = true
	return o
}

// Group assigns the help-group label under which the option is listed.
func (o *Option) Group(name string) *Option {
	o.helpGroup = name
	return o
}

// Name returns the kebab-case name derived from the long flag, falling back
// to the short flag. The --no- prefix is retained here; Key strips it.
func (o *Option) Name() string {
	if o.long != "" {
		return strings.TrimPrefix(o.long, "--")
	}
	return strings.TrimPrefix(o.short, "-")
}

// Key returns the camelCase key under which the option's value is stored.
// Negated options share the key of their positive twin.
func (o *Option) Key() string {
	return camelcase(strings.TrimPrefix(o.Name(), "no-"))
}

// IsBool reports whether the option takes no argument at all.
func (o *Option) IsBool() bool { return !o.required && !o.optional }

// matches reports whether the given token spells this option.
func (o *Option) matches(flag string) bool {
	return (o.short != "" && o.short == flag) || (o.long != "" && o.long == flag)
}

// concatValue appends a variadic occurrence to the values collected so far.
// The declared default is not extended, it is replaced.
func (o *Option) concatValue(value any, previous any) []any {
	prev, ok := previous.([]any)
	if !ok || sameValue(previous, o.defaultValue) {
		prev = nil
	}
	return append(prev, value)
}

func camelcase(s string) string {
	return camelBoundaryRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ToUpper(m[1:])
	})
}

// optionKeyFromName accepts "--flag-name", "flag-name" or "flagName" and
// normalizes to the storage key.
func optionKeyFromName(name string) string {
	return camelcase(strings.TrimPrefix(strings.TrimLeft(name, "-"), "no-"))
}

// negativeNumber reports whether the token matches a negative numeric
// literal such as -1, -3.14 or -2e7.
func negativeNumber(arg string) bool {
	return negativeNumberRe.MatchString(arg)
}
