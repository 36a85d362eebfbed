// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import "testing"

func TestNewArgumentGrammar(t *testing.T) {
	tests := []struct {
		spec     string
		name     string
		required bool
		variadic bool
		display  string
	}{
		{spec: "<file>", name: "file", required: true, display: "<file>"},
		{spec: "[file]", name: "file", display: "[file]"},
		{spec: "file", name: "file", required: true, display: "<file>"},
		{spec: "<files...>", name: "files", required: true, variadic: true, display: "<files...>"},
		{spec: "[files...]", name: "files", variadic: true, display: "[files...]"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			a := NewArgument(tt.spec, "")
			if a.Name() != tt.name {
				t.Errorf("Name = %q, want %q", a.Name(), tt.name)
			}
			if a.Required() != tt.required {
				t.Errorf("Required = %v, want %v", a.Required(), tt.required)
			}
			if a.Variadic() != tt.variadic {
				t.Errorf("Variadic = %v, want %v", a.Variadic(), tt.variadic)
			}
			if got := a.displayName(); got != tt.display {
				t.Errorf("displayName = %q, want %q", got, tt.display)
			}
		})
	}
}

func TestArgumentsSpecOrder(t *testing.T) {
	c := New("app").Arguments("<source> [dest]")
	spec := c.ArgumentsSpec()
	if len(spec) != 2 {
		t.Fatalf("len = %d, want 2", len(spec))
	}
	if spec[0].Name() != "source" || !spec[0].Required() {
		t.Errorf("first = (%q, required=%v)", spec[0].Name(), spec[0].Required())
	}
	if spec[1].Name() != "dest" || spec[1].Required() {
		t.Errorf("second = (%q, required=%v)", spec[1].Name(), spec[1].Required())
	}
}
