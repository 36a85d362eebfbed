// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import "reflect"

// ValueSource records where a resolved option value came from. Sources are
// ordered by precedence: implied and default values never displace a value
// set from the command line.
type ValueSource string

const (
	SourceDefault ValueSource = "default"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceImplied ValueSource = "implied"
)

// OptionValue returns the resolved value stored under key, or nil when the
// option never resolved.
func (c *Command) OptionValue(key string) any {
	return c.values[optionKeyFromName(key)]
}

// OptionValueSource returns the provenance tag for the value under key, or
// the empty string when no value is stored.
func (c *Command) OptionValueSource(key string) ValueSource {
	return c.sources[optionKeyFromName(key)]
}

// SetOptionValue stores a value with no provenance tag. Embedding code that
// injects values from external configuration should prefer
// SetOptionValueWithSource with SourceConfig.
func (c *Command) SetOptionValue(key string, value any) *Command {
	return c.SetOptionValueWithSource(key, value, "")
}

// SetOptionValueWithSource stores a resolved option value together with its
// provenance.
func (c *Command) SetOptionValueWithSource(key string, value any, source ValueSource) *Command {
	k := optionKeyFromName(key)
	c.values[k] = value
	if source == "" {
		delete(c.sources, k)
	} else {
		c.sources[k] = source
	}
	return c
}

// Opts returns a copy of the resolved option-value map.
func (c *Command) Opts() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// String returns the value under key as a string, or "" when unset or of
// another type.
func (c *Command) String(key string) string {
	s, _ := c.OptionValue(key).(string)
	return s
}

// Bool returns the value under key as a bool, false when unset.
func (c *Command) Bool(key string) bool {
	b, _ := c.OptionValue(key).(bool)
	return b
}

// Strings returns the values collected by a variadic option under key.
func (c *Command) Strings(key string) []string {
	switch v := c.OptionValue(key).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// hasOptionValue reports whether any value (from any source) is stored.
func (c *Command) hasOptionValue(key string) bool {
	_, ok := c.values[key]
	return ok
}

// sameValue compares stored option values; values may be slices, so plain
// equality is not enough.
func sameValue(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
