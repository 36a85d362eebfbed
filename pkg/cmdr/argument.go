// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"fmt"
	"strings"
)

// Argument describes one declared positional slot. The name grammar follows
// the usual convention: "<file>" is required, "[file]" optional, and a
// trailing "..." makes the slot variadic ("[files...]").
type Argument struct {
	Description string

	name     string
	required bool
	variadic bool

	defaultValue     any
	defaultValueDesc string
	parseArg         ParseArgFunc
}

// NewArgument builds a positional-argument descriptor from its display name.
// A bare name (no brackets) is treated as required.
func NewArgument(name, description string) *Argument {
	a := &Argument{Description: description, required: true}
	switch {
	case strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">"):
		a.name = name[1 : len(name)-1]
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		a.required = false
		a.name = name[1 : len(name)-1]
	default:
		a.name = name
	}
	if strings.HasSuffix(a.name, "...") {
		a.variadic = true
		a.name = strings.TrimSuffix(a.name, "...")
	}
	return a
}

// Default sets the value used when no operand fills the slot.
func (a *Argument) Default(value any, desc ...string) *Argument {
	a.defaultValue = value
	if len(desc) > 0 {
		a.defaultValueDesc = desc[0]
	}
	return a
}

// ArgParser installs a transform applied to each captured operand. For a
// variadic slot the transform is reduced across occurrences, starting from
// the default value.
func (a *Argument) ArgParser(fn ParseArgFunc) *Argument {
	a.parseArg = fn
	return a
}

// Name returns the bare argument name without bracket or ellipsis markers.
func (a *Argument) Name() string { return a.name }

// Required reports whether the slot must be filled.
func (a *Argument) Required() bool { return a.required }

// Variadic reports whether the slot collects all remaining operands.
func (a *Argument) Variadic() bool { return a.variadic }

// displayName renders the argument for usage strings.
func (a *Argument) displayName() string {
	name := a.name
	if a.variadic {
		name += "..."
	}
	if a.required {
		return fmt.Sprintf("<%s>", name)
	}
	return fmt.Sprintf("[%s]", name)
}
