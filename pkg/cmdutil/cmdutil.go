// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmdutil provides helpers for spawning child processes.
package cmdutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// NewStdCmd returns an exec.Cmd wired to the parent's stdio.
func NewStdCmd(name string, arg ...string) *exec.Cmd {
	cmd := exec.Command(name, arg...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// LookSibling returns the path of an executable file named name inside dir,
// or "" when no such file exists. Unlike exec.LookPath it never consults
// PATH.
func LookSibling(dir, name string) string {
	p := filepath.Join(dir, name)
	if runtime.GOOS == "windows" && filepath.Ext(p) == "" {
		p += ".exe"
	}
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return ""
	}
	if runtime.GOOS != "windows" && info.Mode()&0111 == 0 {
		return ""
	}
	return p
}
