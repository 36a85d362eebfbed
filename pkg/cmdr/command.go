// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// ActionFunc is a command's bound action, invoked after classification and
// validation with the command's processed positional values available via
// cmd.Args and cmd.ProcessedArgs.
type ActionFunc func(ctx context.Context, cmd *Command) error

// HookFunc is a lifecycle hook. cmd is the command the hook was registered
// on; actionCmd is the command whose action is being dispatched.
type HookFunc func(ctx context.Context, cmd, actionCmd *Command) error

// CommandListener is the legacy post-dispatch notification delivered on a
// parent after a child command completed classification.
type CommandListener func(operands, unknown []string)

// HookEvent names a lifecycle hook point.
type HookEvent string

const (
	HookPreSubcommand HookEvent = "preSubcommand"
	HookPreAction     HookEvent = "preAction"
	HookPostAction    HookEvent = "postAction"
)

// optionListener receives a value-assignment signal for one recognized
// option occurrence. raw is nil for flags seen without a value.
type optionListener func(raw *string) error

// Command is one node in the command tree. Build the tree once, then call
// Parse on the root; parse-scoped state is reset at the start of every
// parse, so a tree may be parsed repeatedly.
type Command struct {
	name        string
	aliases     []string
	description string
	version     string
	hidden      bool

	parent    *Command
	commands  []*Command
	options   []*Option
	arguments []*Argument

	// configuration
	allowUnknownOption          bool
	allowExcessArguments        bool
	enablePositionalOptions     bool
	passThroughOptions          bool
	combineFlagAndOptionalValue bool
	defaultCommandName          string
	helpOption                  *Option
	helpOptionDisabled          bool
	helpCommandDisabled         bool
	usageOverride               string

	actionHandler    ActionFunc
	hooks            map[HookEvent][]HookFunc
	optionListeners  map[string][]optionListener
	envListeners     map[string][]optionListener
	commandListeners map[string][]CommandListener

	exitHandler  func(*ParseError) error
	out          io.Writer
	errOut       io.Writer
	helpRenderer Helper

	executableHandler bool
	executableFile    string
	executableDir     string
	runningCmd        *exec.Cmd

	// parse-scoped state, reset by resetTree
	rawArgs       []string
	args          []string
	processedArgs []any
	values        map[string]any
	sources       map[string]ValueSource
}

// New returns a new root command.
func New(name string) *Command {
	c := &Command{
		name:                        name,
		combineFlagAndOptionalValue: true,
		hooks:                       map[HookEvent][]HookFunc{},
		optionListeners:             map[string][]optionListener{},
		envListeners:                map[string][]optionListener{},
		commandListeners:            map[string][]CommandListener{},
		values:                      map[string]any{},
		sources:                     map[string]ValueSource{},
	}
	return c
}

// Name returns the command's name.
func (c *Command) Name() string { return c.name }

// Description sets the one-line description shown in help.
func (c *Command) Description(desc string) *Command {
	c.description = desc
	return c
}

// Alias adds alternative names for the command. Aliases must be unique among
// the parent's children; uniqueness is checked when the command is attached.
func (c *Command) Alias(aliases ...string) *Command {
	c.aliases = append(c.aliases, aliases...)
	if c.parent != nil {
		for _, alias := range aliases {
			c.parent.checkChildNameAvailable(alias, c)
		}
	}
	return c
}

// Usage overrides the generated usage line.
func (c *Command) Usage(usage string) *Command {
	c.usageOverride = usage
	return c
}

// Hide excludes the command from help listings. It still dispatches.
func (c *Command) Hide() *Command {
	c.hidden = true
	return c
}

// Version registers a version option (default "-V, --version") that prints
// str and terminates through the error funnel with category "version".
func (c *Command) Version(str string, flags ...string) *Command {
	c.version = str
	spec := "-V, --version"
	if len(flags) > 0 {
		spec = flags[0]
	}
	opt := NewOption(spec, "output the version number")
	opt.onMatch = func(cmd *Command) error {
		fmt.Fprintln(cmd.outWriter(), str)
		return cmd.exit(&ParseError{ExitCode: 0, Code: CodeVersion, Message: str})
	}
	return c.AddOption(opt)
}

// Option registers a boolean or value-taking option from a flags spec
// string, e.g. Option("-p, --port <number>", "port to listen on").
func (c *Command) Option(flags, description string) *Command {
	return c.AddOption(NewOption(flags, description))
}

// RequiredOption registers an option that must resolve a value by the end of
// parsing (from any source).
func (c *Command) RequiredOption(flags, description string) *Command {
	return c.AddOption(NewOption(flags, description).Mandatory())
}

// AddOption registers a fully built option. Flag collisions with options
// already registered on this command are a programmer error and panic.
func (c *Command) AddOption(opt *Option) *Command {
	c.registerOption(opt)

	key := opt.Key()
	if opt.negate {
		// A lone negated flag defaults its shared key to true so the
		// negation has something to turn off.
		positive := "--" + strings.TrimPrefix(opt.Name(), "no-")
		if c.findOption(positive) == nil {
			def := any(true)
			if opt.defaultValue != nil {
				def = opt.defaultValue
			}
			c.SetOptionValueWithSource(key, def, SourceDefault)
		}
	} else if opt.defaultValue != nil {
		c.SetOptionValueWithSource(key, opt.defaultValue, SourceDefault)
	}

	name := opt.Name()
	c.optionListeners[name] = append(c.optionListeners[name], func(raw *string) error {
		if opt.onMatch != nil {
			if err := opt.onMatch(c); err != nil {
				return err
			}
		}
		return c.applyOptionValue(opt, raw, SourceCLI)
	})
	if opt.envVar != "" {
		c.envListeners[name] = append(c.envListeners[name], func(raw *string) error {
			return c.applyOptionValue(opt, raw, SourceEnv)
		})
	}
	return c
}

func (c *Command) registerOption(opt *Option) {
	for _, existing := range c.options {
		if opt.short != "" && (existing.short == opt.short || existing.long == opt.short) {
			panic(fmt.Sprintf("cmdr: cannot add option %q due to conflicting flag %q on option %q", opt.Flags, opt.short, existing.Flags))
		}
		if opt.long != "" && (existing.short == opt.long || existing.long == opt.long) {
			panic(fmt.Sprintf("cmdr: cannot add option %q due to conflicting flag %q on option %q", opt.Flags, opt.long, existing.Flags))
		}
	}
	c.options = append(c.options, opt)
}

// Argument declares one positional slot, e.g. Argument("<file>", "input").
func (c *Command) Argument(name, description string) *Command {
	return c.AddArgument(NewArgument(name, description))
}

// Arguments declares several positionals from a space-separated spec, e.g.
// Arguments("<source> [dest...]").
func (c *Command) Arguments(names string) *Command {
	for _, name := range strings.Fields(names) {
		c.Argument(name, "")
	}
	return c
}

// AddArgument registers a fully built positional descriptor. Declaring a
// positional after a variadic one, or a required positional whose default
// could never be reached, is a programmer error and panics.
func (c *Command) AddArgument(arg *Argument) *Command {
	if n := len(c.arguments); n > 0 && c.arguments[n-1].variadic {
		panic(fmt.Sprintf("cmdr: only the last argument can be variadic %q", c.arguments[n-1].name))
	}
	if arg.required && arg.defaultValue != nil && arg.parseArg == nil {
		panic(fmt.Sprintf("cmdr: a default value for a required argument %q is only used with a transform", arg.name))
	}
	c.arguments = append(c.arguments, arg)
	return c
}

// Command creates, attaches and returns a child command. nameAndArgs may
// declare positionals inline, e.g. Command("clone <repo> [dest]", "...").
func (c *Command) Command(nameAndArgs, description string) *Command {
	fields := strings.Fields(nameAndArgs)
	if len(fields) == 0 {
		panic("cmdr: Command requires a name")
	}
	sub := New(fields[0])
	sub.description = description
	for _, f := range fields[1:] {
		sub.Argument(f, "")
	}
	sub.copyInheritedSettings(c)
	c.AddCommand(sub)
	return sub
}

// ExecutableCommand registers a child handled by a stand-alone executable,
// by convention named "<parent>-<child>" next to the invoking binary.
// Dispatch to it spawns the executable with the remaining tokens.
func (c *Command) ExecutableCommand(nameAndArgs, description string) *Command {
	sub := c.Command(nameAndArgs, description)
	sub.executableHandler = true
	return sub
}

// ExecutableFile overrides the file name searched for an executable child.
func (c *Command) ExecutableFile(name string) *Command {
	c.executableFile = name
	return c
}

// ExecutableDir sets the directory searched for executable children,
// instead of the directory of the invoking binary.
func (c *Command) ExecutableDir(dir string) *Command {
	c.executableDir = dir
	return c
}

// AddCommand attaches an already-built command as a child. A command belongs
// to exactly one tree; attaching it twice panics.
func (c *Command) AddCommand(sub *Command) *Command {
	if sub.parent != nil {
		panic(fmt.Sprintf("cmdr: command %q is already attached to %q", sub.name, sub.parent.name))
	}
	if sub.name == "" {
		panic("cmdr: cannot attach a command without a name")
	}
	c.checkChildNameAvailable(sub.name, sub)
	for _, alias := range sub.aliases {
		c.checkChildNameAvailable(alias, sub)
	}
	sub.parent = c
	c.commands = append(c.commands, sub)
	return c
}

func (c *Command) checkChildNameAvailable(name string, incoming *Command) {
	for _, existing := range c.commands {
		if existing == incoming {
			continue
		}
		if existing.name == name || slices.Contains(existing.aliases, name) {
			panic(fmt.Sprintf("cmdr: cannot add command %q as it conflicts with command %q", name, existing.name))
		}
	}
}

// AsDefault marks this command as its parent's default subcommand: when no
// child name matches, all tokens route here. At most one child may be the
// default.
func (c *Command) AsDefault() *Command {
	if c.parent == nil {
		panic("cmdr: AsDefault requires the command to be attached first")
	}
	if d := c.parent.defaultCommandName; d != "" && d != c.name {
		panic(fmt.Sprintf("cmdr: command %q already has default subcommand %q", c.parent.name, d))
	}
	c.parent.defaultCommandName = c.name
	return c
}

// Action binds the function invoked when this command consumes the tokens.
func (c *Command) Action(fn ActionFunc) *Command {
	c.actionHandler = fn
	return c
}

// Hook registers a lifecycle hook. preAction hooks run root-first along the
// ancestor chain; postAction hooks run in the reverse order.
func (c *Command) Hook(event HookEvent, fn HookFunc) *Command {
	c.hooks[event] = append(c.hooks[event], fn)
	return c
}

// OnCommand registers a legacy listener notified synchronously after the
// named child completes classification and argument processing.
func (c *Command) OnCommand(name string, fn CommandListener) *Command {
	c.commandListeners[name] = append(c.commandListeners[name], fn)
	return c
}

// AllowUnknownOptions makes unrecognized option-shaped tokens operandish
// instead of an error at this command level.
func (c *Command) AllowUnknownOptions() *Command {
	c.allowUnknownOption = true
	return c
}

// AllowExcessArguments suppresses the error for more operands than declared
// positionals.
func (c *Command) AllowExcessArguments() *Command {
	c.allowExcessArguments = true
	return c
}

// EnablePositionalOptions requires global options to precede subcommand
// names, so subcommands may reuse flag spellings.
func (c *Command) EnablePositionalOptions() *Command {
	c.enablePositionalOptions = true
	return c
}

// PassThroughOptions stops option interpretation at the first positional;
// everything after it is delivered verbatim.
func (c *Command) PassThroughOptions() *Command {
	c.passThroughOptions = true
	c.enablePositionalOptions = true
	return c
}

// CombineFlagAndOptionalValue controls whether "-cvalue" assigns "value" to
// an optional-argument short flag -c (the default) or is processed as a
// cluster of boolean shorts.
func (c *Command) CombineFlagAndOptionalValue(combine bool) *Command {
	c.combineFlagAndOptionalValue = combine
	return c
}

// DisableHelpOption removes the automatic -h/--help handling.
func (c *Command) DisableHelpOption() *Command {
	c.helpOptionDisabled = true
	return c
}

// DisableHelpCommand removes the implicit "help [command]" subcommand.
func (c *Command) DisableHelpCommand() *Command {
	c.helpCommandDisabled = true
	return c
}

// SetOut sets the sink for normal output (help, version).
func (c *Command) SetOut(w io.Writer) *Command {
	c.out = w
	return c
}

// SetErr sets the sink for error messages.
func (c *Command) SetErr(w io.Writer) *Command {
	c.errOut = w
	return c
}

// ExitOverride substitutes the process terminator: instead of exiting, Parse
// returns the ParseError (or the handler's own error) to the caller.
func (c *Command) ExitOverride(fn ...func(*ParseError) error) *Command {
	if len(fn) > 0 && fn[0] != nil {
		c.exitHandler = fn[0]
		return c
	}
	c.exitHandler = func(*ParseError) error { return nil }
	return c
}

// SetHelpRenderer substitutes the help renderer collaborator.
func (c *Command) SetHelpRenderer(h Helper) *Command {
	c.helpRenderer = h
	return c
}

// Args returns the raw operand tokens consumed by this command.
func (c *Command) Args() []string { return c.args }

// ProcessedArgs returns positional values after transforms and defaults, one
// entry per declared positional.
func (c *Command) ProcessedArgs() []any { return c.processedArgs }

// RawArgs returns the token list handed to Parse, captured on the root.
func (c *Command) RawArgs() []string { return c.rawArgs }

// Parent returns the parent command, or nil on the root.
func (c *Command) Parent() *Command { return c.parent }

// Commands returns the registered child commands in registration order.
func (c *Command) Commands() []*Command { return c.commands }

// Options returns the registered options in registration order.
func (c *Command) Options() []*Option { return c.options }

// ArgumentsSpec returns the declared positional descriptors in order.
func (c *Command) ArgumentsSpec() []*Argument { return c.arguments }

func (c *Command) copyInheritedSettings(from *Command) {
	c.out = from.out
	c.errOut = from.errOut
	c.exitHandler = from.exitHandler
	c.helpRenderer = from.helpRenderer
	c.combineFlagAndOptionalValue = from.combineFlagAndOptionalValue
	c.allowExcessArguments = from.allowExcessArguments
	c.enablePositionalOptions = from.enablePositionalOptions
	c.helpOption = from.helpOption
	c.helpOptionDisabled = from.helpOptionDisabled
}

// ancestors returns the chain from this command up to the root, self first.
func (c *Command) ancestors() []*Command {
	var out []*Command
	for cmd := c; cmd != nil; cmd = cmd.parent {
		out = append(out, cmd)
	}
	return out
}

func (c *Command) findCommand(name string) *Command {
	if name == "" {
		return nil
	}
	for _, sub := range c.commands {
		if sub.name == name || slices.Contains(sub.aliases, name) {
			return sub
		}
	}
	return nil
}

func (c *Command) findOption(flag string) *Option {
	for _, opt := range c.options {
		if opt.matches(flag) {
			return opt
		}
	}
	return nil
}

// emitOption delivers one value-assignment signal synchronously; listeners
// finish before the next token is scanned.
func (c *Command) emitOption(name string, raw *string) error {
	for _, fn := range c.optionListeners[name] {
		if err := fn(raw); err != nil {
			return err
		}
	}
	return nil
}

func (c *Command) emitOptionEnv(name string, raw *string) error {
	for _, fn := range c.envListeners[name] {
		if err := fn(raw); err != nil {
			return err
		}
	}
	return nil
}

func (c *Command) emitCommand(name string, operands, unknown []string) {
	for _, fn := range c.commandListeners[name] {
		fn(operands, unknown)
	}
}

func (c *Command) hasCommandListener(name string) bool {
	return len(c.commandListeners[name]) > 0
}

// applyOptionValue resolves one occurrence (or env/preset fallback) into the
// value store with its provenance tag.
func (c *Command) applyOptionValue(opt *Option, raw *string, source ValueSource) error {
	key := opt.Key()
	var val any
	if raw != nil {
		val = *raw
	} else if opt.presetArg != nil {
		val = opt.presetArg
	}

	old := c.values[key]
	if val != nil && opt.parseArg != nil {
		if s, ok := val.(string); ok {
			parsed, err := opt.parseArg(s, old)
			if err != nil {
				return c.invalidOptionArgument(opt, s, source, err)
			}
			val = parsed
		}
	} else if val != nil && opt.variadic {
		val = opt.concatValue(val, old)
	}

	if val == nil {
		switch {
		case opt.negate:
			val = false
		case opt.IsBool() || opt.optional:
			val = true
		default:
			val = ""
		}
	}
	c.SetOptionValueWithSource(key, val, source)
	return nil
}

func (c *Command) invalidOptionArgument(opt *Option, value string, source ValueSource, cause error) error {
	var msg string
	if source == SourceEnv {
		msg = fmt.Sprintf("error: option '%s' value '%s' from env '%s' is invalid. %s", opt.Flags, value, opt.envVar, cause.Error())
	} else {
		msg = fmt.Sprintf("error: option '%s' argument '%s' is invalid. %s", opt.Flags, value, cause.Error())
	}
	return c.raise(&ParseError{ExitCode: 1, Code: CodeInvalidArgument, Message: msg, Err: cause})
}

// anyAncestorHasDigitShortFlag reports whether a single-digit short flag is
// registered anywhere up the chain; digit flags take precedence over
// negative-number literals.
func (c *Command) anyAncestorHasDigitShortFlag() bool {
	for _, cmd := range c.ancestors() {
		for _, opt := range cmd.options {
			if digitShortFlagRe.MatchString(opt.short) {
				return true
			}
		}
	}
	return false
}

// resetTree clears parse-scoped state on the whole subtree and re-applies
// registration-time defaults, so the same tree can be parsed repeatedly.
func (c *Command) resetTree() {
	c.rawArgs = nil
	c.args = nil
	c.processedArgs = nil
	c.values = map[string]any{}
	c.sources = map[string]ValueSource{}
	c.runningCmd = nil
	for _, opt := range c.options {
		key := opt.Key()
		if opt.negate {
			positive := "--" + strings.TrimPrefix(opt.Name(), "no-")
			if c.findOption(positive) == nil {
				def := any(true)
				if opt.defaultValue != nil {
					def = opt.defaultValue
				}
				c.SetOptionValueWithSource(key, def, SourceDefault)
			}
		} else if opt.defaultValue != nil {
			c.SetOptionValueWithSource(key, opt.defaultValue, SourceDefault)
		}
	}
	for _, sub := range c.commands {
		sub.resetTree()
	}
}

func (c *Command) outWriter() io.Writer {
	for _, cmd := range c.ancestors() {
		if cmd.out != nil {
			return cmd.out
		}
	}
	return os.Stdout
}

func (c *Command) errWriter() io.Writer {
	for _, cmd := range c.ancestors() {
		if cmd.errOut != nil {
			return cmd.errOut
		}
	}
	return os.Stderr
}

func (c *Command) exitFn() func(*ParseError) error {
	for _, cmd := range c.ancestors() {
		if cmd.exitHandler != nil {
			return cmd.exitHandler
		}
	}
	return nil
}
