// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"context"
	"os"
	"strings"
)

// Parse classifies and dispatches args (the tokens after the program name,
// os.Args[1:] by convention). On failure the error funnel writes a message
// and terminates the process unless ExitOverride was installed, in which
// case the ParseError is returned.
func (c *Command) Parse(args []string) error {
	return c.ParseContext(context.Background(), args)
}

// ParseContext is Parse with a caller-supplied context handed through to
// hooks and actions.
func (c *Command) ParseContext(ctx context.Context, args []string) error {
	if c.parent != nil {
		panic("cmdr: Parse must be called on the root command")
	}
	c.resetTree()
	c.rawArgs = append([]string(nil), args...)
	return c.parseCommand(ctx, nil, args)
}

// parseOptions scans one command level's share of the token stream and
// partitions it into operands and unknown tokens, emitting a synchronous
// value-assignment signal per recognized option occurrence.
//
// The walk is left to right with one token of lookahead for option
// arguments. An unrecognized option-shaped token diverges the destination to
// unknown for the remainder, so a descendant command may reinterpret those
// tokens.
func (c *Command) parseOptions(args []string) (operands, unknown []string, err error) {
	// Cluster splitting rewrites tokens in place; work on a copy so the
	// caller's slice is never touched.
	args = append([]string(nil), args...)
	operands = []string{}
	unknown = []string{}
	dest := &operands

	// negativeNumberOperand: a negative numeric literal is not option-shaped
	// unless a single-digit short flag is registered up the chain.
	negativeNumberOperand := func(arg string) bool {
		return negativeNumber(arg) && !c.anyAncestorHasDigitShortFlag()
	}
	maybeOption := func(arg string) bool {
		return len(arg) > 1 && arg[0] == '-'
	}

	var activeVariadic *Option

	for i := 0; i < len(args); i++ {
		arg := args[i]
		rest := args[i+1:]

		// "--" ends option scanning; the tail is delivered verbatim.
		if arg == "--" {
			if dest == &unknown {
				*dest = append(*dest, arg)
			}
			*dest = append(*dest, rest...)
			break
		}

		if activeVariadic != nil && (!maybeOption(arg) || negativeNumberOperand(arg)) {
			if err := c.emitOption(activeVariadic.Name(), &arg); err != nil {
				return nil, nil, err
			}
			continue
		}
		activeVariadic = nil

		if maybeOption(arg) && !negativeNumberOperand(arg) {
			if opt := c.findOption(arg); opt != nil {
				switch {
				case opt.required:
					if len(rest) == 0 {
						return nil, nil, c.optionMissingArgument(opt)
					}
					value := rest[0]
					i++
					if err := c.emitOption(opt.Name(), &value); err != nil {
						return nil, nil, err
					}
				case opt.optional:
					var value *string
					if len(rest) > 0 && (!maybeOption(rest[0]) || negativeNumberOperand(rest[0])) {
						value = &rest[0]
						i++
					}
					if err := c.emitOption(opt.Name(), value); err != nil {
						return nil, nil, err
					}
				default:
					if err := c.emitOption(opt.Name(), nil); err != nil {
						return nil, nil, err
					}
				}
				if opt.variadic {
					activeVariadic = opt
				}
				continue
			}
		}

		// Combined short flag: "-abc" either carries a value for -a or is a
		// cluster of boolean shorts processed one at a time.
		if len(arg) > 2 && arg[0] == '-' && arg[1] != '-' {
			if opt := c.findOption(arg[:2]); opt != nil {
				if opt.required || (opt.optional && c.combineFlagAndOptionalValue) {
					value := arg[2:]
					if err := c.emitOption(opt.Name(), &value); err != nil {
						return nil, nil, err
					}
				} else {
					if err := c.emitOption(opt.Name(), nil); err != nil {
						return nil, nil, err
					}
					// Re-queue the remainder as a fresh cluster.
					args[i] = "-" + arg[2:]
					i--
				}
				continue
			}
		}

		// Long flag with inline value: --name=value.
		if longFlagWithEqRe.MatchString(arg) {
			idx := strings.Index(arg, "=")
			if opt := c.findOption(arg[:idx]); opt != nil && (opt.required || opt.optional) {
				value := arg[idx+1:]
				if err := c.emitOption(opt.Name(), &value); err != nil {
					return nil, nil, err
				}
				continue
			}
		}

		// Not recognized at this level. An option-shaped token flips the
		// destination to unknown, except that a negative number reaching a
		// leaf command is an operand: there is no deeper level left to
		// claim it.
		if maybeOption(arg) && !negativeNumberOperand(arg) && !(len(c.commands) == 0 && negativeNumber(arg)) {
			dest = &unknown
		}

		// Positional-options / pass-through boundary: while nothing has
		// been collected yet, a known child name (or the help command)
		// stops scanning so the child re-parses everything after it.
		if (c.enablePositionalOptions || c.passThroughOptions) && len(operands) == 0 && len(unknown) == 0 {
			if c.findCommand(arg) != nil {
				operands = append(operands, arg)
				unknown = append(unknown, rest...)
				break
			}
			if c.hasHelpCommand() && arg == helpCommandName {
				operands = append(operands, arg)
				operands = append(operands, rest...)
				break
			}
			if c.defaultCommandName != "" {
				unknown = append(unknown, arg)
				unknown = append(unknown, rest...)
				break
			}
		}

		// Pass-through: stop interpreting at the first collected token.
		if c.passThroughOptions {
			*dest = append(*dest, arg)
			*dest = append(*dest, rest...)
			break
		}

		*dest = append(*dest, arg)
	}

	return operands, unknown, nil
}

// parseCommand classifies this level's tokens and walks the dispatch
// decision order: child dispatch, help command, default child, help
// dead-end, own action, validated fallthrough.
func (c *Command) parseCommand(ctx context.Context, operands, unknown []string) error {
	parsedOps, parsedUnknown, err := c.parseOptions(unknown)
	if err != nil {
		return err
	}
	if err := c.parseOptionsEnv(); err != nil {
		return err
	}
	c.parseOptionsImplied()

	operands = append(append([]string(nil), operands...), parsedOps...)
	unknown = parsedUnknown
	c.args = append(append([]string(nil), operands...), unknown...)

	if len(operands) > 0 && c.findCommand(operands[0]) != nil {
		return c.dispatchSubcommand(ctx, operands[0], operands[1:], unknown)
	}
	if c.hasHelpCommand() && len(operands) > 0 && operands[0] == helpCommandName {
		target := ""
		if len(operands) > 1 {
			target = operands[1]
		}
		return c.dispatchHelpCommand(ctx, target)
	}
	if c.defaultCommandName != "" {
		// A help flag at this level pre-empts the default handler.
		if err := c.outputHelpIfRequested(unknown); err != nil {
			return err
		}
		return c.dispatchSubcommand(ctx, c.defaultCommandName, operands, unknown)
	}
	if len(c.commands) > 0 && len(c.args) == 0 && c.actionHandler == nil {
		// No subcommand, no tokens, no handler: the user is lost.
		return c.help(true)
	}

	if err := c.outputHelpIfRequested(unknown); err != nil {
		return err
	}
	if err := c.checkForMissingMandatoryOptions(); err != nil {
		return err
	}
	if err := c.checkForConflictingOptions(); err != nil {
		return err
	}

	checkUnknown := func() error {
		if len(unknown) > 0 {
			return c.unknownOption(unknown[0])
		}
		return nil
	}

	if c.actionHandler != nil {
		if err := checkUnknown(); err != nil {
			return err
		}
		if err := c.processArguments(); err != nil {
			return err
		}
		if err := c.runLifecycleHooks(ctx, HookPreAction); err != nil {
			return err
		}
		if err := c.actionHandler(ctx, c); err != nil {
			return err
		}
		if c.parent != nil {
			c.parent.emitCommand(c.name, operands, unknown)
		}
		return c.runLifecycleHooks(ctx, HookPostAction)
	}

	if c.parent != nil && c.parent.hasCommandListener(c.name) {
		if err := checkUnknown(); err != nil {
			return err
		}
		if err := c.processArguments(); err != nil {
			return err
		}
		c.parent.emitCommand(c.name, operands, unknown)
		return nil
	}

	if len(operands) > 0 && len(c.commands) > 0 {
		return c.unknownCommand(operands[0])
	}
	if len(c.commands) > 0 {
		if err := checkUnknown(); err != nil {
			return err
		}
		return c.help(true)
	}

	// Leaf with no handler: validate and process, leaving state inspectable
	// by the caller. Not having a handler is not an error.
	if err := checkUnknown(); err != nil {
		return err
	}
	return c.processArguments()
}

func (c *Command) dispatchSubcommand(ctx context.Context, name string, operands, unknown []string) error {
	sub := c.findCommand(name)
	if sub == nil {
		return c.help(true)
	}
	for _, hook := range c.hooks[HookPreSubcommand] {
		if err := hook(ctx, c, sub); err != nil {
			return err
		}
	}
	if sub.executableHandler {
		return c.executeSubCommand(sub, append(append([]string(nil), operands...), unknown...))
	}
	return sub.parseCommand(ctx, operands, unknown)
}

func (c *Command) dispatchHelpCommand(ctx context.Context, target string) error {
	if target == "" {
		return c.help(false)
	}
	sub := c.findCommand(target)
	if sub != nil && !sub.executableHandler {
		return sub.help(false)
	}
	// Executable children render their own help; unknown targets fall into
	// the dispatcher's dead-end handling.
	return c.dispatchSubcommand(ctx, target, nil, []string{c.helpFlagForForwarding()})
}

// runLifecycleHooks runs preAction/postAction hooks gathered along the
// ancestor chain: preAction root-first, postAction in reverse.
func (c *Command) runLifecycleHooks(ctx context.Context, event HookEvent) error {
	type binding struct {
		cmd *Command
		fn  HookFunc
	}
	var chain []binding
	chainCmds := c.ancestors()
	for i := len(chainCmds) - 1; i >= 0; i-- {
		for _, fn := range chainCmds[i].hooks[event] {
			chain = append(chain, binding{chainCmds[i], fn})
		}
	}
	if event == HookPostAction {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
	}
	for _, b := range chain {
		if err := b.fn(ctx, b.cmd, c); err != nil {
			return err
		}
	}
	return nil
}

// parseOptionsEnv resolves environment bindings for options not already
// claimed by the command line.
func (c *Command) parseOptionsEnv() error {
	for _, opt := range c.options {
		if opt.envVar == "" {
			continue
		}
		raw, ok := os.LookupEnv(opt.envVar)
		if !ok {
			continue
		}
		key := opt.Key()
		src := c.sources[key]
		if c.hasOptionValue(key) && src != SourceDefault && src != SourceConfig && src != SourceEnv {
			continue
		}
		if opt.required || opt.optional {
			value := raw
			if err := c.emitOptionEnv(opt.Name(), &value); err != nil {
				return err
			}
		} else {
			if err := c.emitOptionEnv(opt.Name(), nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseOptionsImplied applies implied values after env resolution: an option
// resolved from a real source fills in keys nothing else claimed.
func (c *Command) parseOptionsImplied() {
	dual := newDualOptions(c.options)
	hasCustom := func(key string) bool {
		if !c.hasOptionValue(key) {
			return false
		}
		src := c.sources[key]
		return src != SourceDefault && src != SourceImplied
	}
	for _, opt := range c.options {
		if opt.implied == nil || !hasCustom(opt.Key()) {
			continue
		}
		if !dual.valueFromOption(c.values[opt.Key()], opt) {
			continue
		}
		for key, value := range opt.implied {
			if !hasCustom(key) {
				c.SetOptionValueWithSource(key, value, SourceImplied)
			}
		}
	}
}

// dualOptions pairs --foo with --no-foo so conflict and implication checks
// can tell which spelling actually supplied a stored value.
type dualOptions struct {
	positive map[string]*Option
	negative map[string]*Option
}

func newDualOptions(options []*Option) dualOptions {
	d := dualOptions{positive: map[string]*Option{}, negative: map[string]*Option{}}
	for _, opt := range options {
		if opt.negate {
			d.negative[opt.Key()] = opt
		} else {
			d.positive[opt.Key()] = opt
		}
	}
	return d
}

// valueFromOption reports whether the stored value was plausibly supplied by
// this option rather than its dual.
func (d dualOptions) valueFromOption(value any, opt *Option) bool {
	neg := d.negative[opt.Key()]
	if neg == nil {
		return true
	}
	negValue := any(false)
	if neg.presetArg != nil {
		negValue = neg.presetArg
	}
	wasNegated := sameValue(value, negValue)
	if opt.negate {
		return wasNegated
	}
	return !wasNegated
}
