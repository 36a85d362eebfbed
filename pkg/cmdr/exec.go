// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yeetrun/cmdr/pkg/cmdutil"
)

// executableName returns the file name searched for an executable child: an
// explicit override, or the command-path names joined with dashes
// ("prog-sub" for child "sub" of root "prog").
func (c *Command) executableName() string {
	if c.executableFile != "" {
		return c.executableFile
	}
	return strings.ReplaceAll(c.commandPath(), " ", "-")
}

// executableSearchDir returns the directory searched before PATH: an
// ExecutableDir set anywhere up the chain, else the directory holding the
// invoking binary.
func (c *Command) executableSearchDir() string {
	for _, cmd := range c.ancestors() {
		if cmd.executableDir != "" {
			return cmd.executableDir
		}
	}
	self, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(self)
}

func (c *Command) resolveExecutable(name string) (string, error) {
	if dir := c.executableSearchDir(); dir != "" {
		if p := cmdutil.LookSibling(dir, name); p != "" {
			return p, nil
		}
	}
	return exec.LookPath(name)
}

// executeSubCommand hands the remaining tokens to a stand-alone executable.
// The child inherits the parent's stdio; signals delivered to the parent
// while the child runs are forwarded to it, and the child's exit status
// becomes the parent's through the terminator.
func (c *Command) executeSubCommand(sub *Command, args []string) error {
	name := sub.executableName()
	path, err := c.resolveExecutable(name)
	if err != nil {
		msg := fmt.Sprintf("error: '%s' does not exist\n - if '%s' is not meant to be an executable command, bind an action handler to it\n - if the default executable name is not suitable, supply one with ExecutableFile", name, sub.name)
		return c.raise(newParseError(1, CodeExecuteSubcommand, msg))
	}

	cmd := cmdutil.NewStdCmd(path, adjustDebugArgs(args)...)
	if err := cmd.Start(); err != nil {
		msg := fmt.Sprintf("error: failed to start '%s': %v", name, err)
		return c.raise(&ParseError{ExitCode: 1, Code: CodeExecuteSubcommand, Message: msg, Err: err})
	}

	root := c
	for root.parent != nil {
		root = root.parent
	}
	root.runningCmd = cmd

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, forwardedSignals...)
	done := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		return cmd.Wait()
	})
	g.Go(func() error {
		for {
			select {
			case s := <-sigs:
				// Best effort; the child may already be gone.
				_ = cmd.Process.Signal(s)
			case <-done:
				return nil
			}
		}
	})
	waitErr := g.Wait()
	signal.Stop(sigs)
	root.runningCmd = nil

	if waitErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			code = 1
		}
		// The child reported its own failure; terminate without re-printing.
		return c.exit(&ParseError{ExitCode: code, Code: CodeExecuteSubcommand, Message: waitErr.Error(), Err: waitErr})
	}
	msg := fmt.Sprintf("error: waiting on '%s': %v", name, waitErr)
	return c.raise(&ParseError{ExitCode: 1, Code: CodeExecuteSubcommand, Message: msg, Err: waitErr})
}

// adjustDebugArgs rewrites inspector flags in the forwarded tokens so a child
// debugger never collides with one already bound in the parent. The default
// endpoint 127.0.0.1:9229 becomes 127.0.0.1:9230; an explicit port is bumped
// by one unless it is 0 (pick-any).
func adjustDebugArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = adjustDebugArg(arg)
	}
	return out
}

func adjustDebugArg(arg string) string {
	flag := arg
	tail := ""
	if idx := strings.Index(arg, "="); idx >= 0 {
		flag, tail = arg[:idx], arg[idx+1:]
	}
	switch flag {
	case "--inspect", "--inspect-brk", "--inspect-port", "--debug-port":
	default:
		return arg
	}

	host := "127.0.0.1"
	port := "9229"
	if tail != "" {
		if h, p, ok := strings.Cut(tail, ":"); ok {
			host, port = h, p
		} else if _, err := strconv.Atoi(tail); err == nil {
			port = tail
		} else {
			host = tail
		}
	}
	if port != "0" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return arg
		}
		port = strconv.Itoa(n + 1)
	}
	return fmt.Sprintf("%s=%s:%s", flag, host, port)
}
