// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdr

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// helpCommandName is the implicit subcommand rendered once a command has
// children: "prog help [command]".
const helpCommandName = "help"

const defaultHelpWidth = 80

// Helper renders help text for a command. The core only decides when help
// is due; rendering is a collaborator and fully substitutable.
type Helper interface {
	FormatHelp(cmd *Command, width int) string
}

// hasHelpCommand reports whether the implicit help subcommand is active.
func (c *Command) hasHelpCommand() bool {
	return !c.helpCommandDisabled && len(c.commands) > 0
}

// getHelpOption returns the active help option, creating the default
// "-h, --help" lazily. Returns nil when help flags are disabled.
func (c *Command) getHelpOption() *Option {
	if c.helpOptionDisabled {
		return nil
	}
	if c.helpOption == nil {
		c.helpOption = NewOption("-h, --help", "display help for command")
	}
	return c.helpOption
}

// HelpOption replaces the default help flags, e.g. "-H, --HELP".
func (c *Command) HelpOption(flags, description string) *Command {
	c.helpOption = NewOption(flags, description)
	return c
}

func (c *Command) helpFlagForForwarding() string {
	opt := c.getHelpOption()
	if opt == nil {
		return "--help"
	}
	if opt.long != "" {
		return opt.long
	}
	return opt.short
}

// outputHelpIfRequested scans unrecognized tokens for the help flags and,
// when present, renders help and terminates through the funnel with the
// helpDisplayed category.
func (c *Command) outputHelpIfRequested(args []string) error {
	opt := c.getHelpOption()
	if opt == nil {
		return nil
	}
	for _, arg := range args {
		if opt.matches(arg) {
			c.outputHelp(false)
			return c.exit(newParseError(0, CodeHelpDisplayed, "(outputHelp)"))
		}
	}
	return nil
}

// help renders help for this command and terminates through the funnel.
// asError routes the text to the error sink with exit code 1, used when the
// user is assumed lost rather than asking.
func (c *Command) help(asError bool) error {
	c.outputHelp(asError)
	exitCode := 0
	if asError {
		exitCode = 1
	}
	return c.exit(newParseError(exitCode, CodeHelp, "(outputHelp)"))
}

// Help renders help and terminates like a --help occurrence would. Exposed
// for embedding applications.
func (c *Command) Help() error { return c.help(false) }

// HelpInformation returns the rendered help text without terminating.
func (c *Command) HelpInformation() string {
	return c.renderer().FormatHelp(c, c.helpWidth(c.outWriter()))
}

func (c *Command) outputHelp(asError bool) {
	w := c.outWriter()
	if asError {
		w = c.errWriter()
	}
	fmt.Fprint(w, c.renderer().FormatHelp(c, c.helpWidth(w)))
}

func (c *Command) renderer() Helper {
	for _, cmd := range c.ancestors() {
		if cmd.helpRenderer != nil {
			return cmd.helpRenderer
		}
	}
	return defaultHelper
}

// helpWidth picks the render width from the terminal when the sink is one.
func (c *Command) helpWidth(w any) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultHelpWidth
}

// usage returns the generated (or overridden) usage line fragment.
func (c *Command) usage() string {
	if c.usageOverride != "" {
		return c.usageOverride
	}
	parts := []string{"[options]"}
	for _, arg := range c.arguments {
		parts = append(parts, arg.displayName())
	}
	if len(c.commands) > 0 {
		parts = append(parts, "[command]")
	}
	return strings.Join(parts, " ")
}

// commandPath returns the space-joined names from the root down to here.
func (c *Command) commandPath() string {
	chain := c.ancestors()
	names := make([]string, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		names = append(names, chain[i].name)
	}
	return strings.Join(names, " ")
}

// HelpFormatter is the default renderer: Usage line, then Arguments, Options
// and Commands sections with aligned terms and wrapped descriptions. Section
// titles are bold on capable terminals; fatih/color handles NO_COLOR and
// non-TTY suppression.
type HelpFormatter struct {
	SortSubcommands bool
	SortOptions     bool
}

var defaultHelper Helper = &HelpFormatter{}

func (h *HelpFormatter) FormatHelp(cmd *Command, width int) string {
	bold := color.New(color.Bold).SprintFunc()
	var b strings.Builder

	fmt.Fprintf(&b, "Usage: %s %s\n", cmd.commandPath(), cmd.usage())
	if cmd.description != "" {
		fmt.Fprintf(&b, "\n%s\n", wrapText(cmd.description, width, 0))
	}

	type row struct{ term, desc string }
	writeSection := func(title string, rows []row) {
		if len(rows) == 0 {
			return
		}
		termWidth := 0
		for _, r := range rows {
			if len(r.term) > termWidth {
				termWidth = len(r.term)
			}
		}
		fmt.Fprintf(&b, "\n%s\n", bold(title+":"))
		for _, r := range rows {
			if r.desc == "" {
				fmt.Fprintf(&b, "  %s\n", r.term)
				continue
			}
			padded := fmt.Sprintf("  %-*s  ", termWidth, r.term)
			fmt.Fprintf(&b, "%s%s\n", padded, wrapText(r.desc, width-len(padded), len(padded)))
		}
	}

	var argRows []row
	for _, arg := range cmd.arguments {
		desc := arg.Description
		if arg.defaultValue != nil {
			desc += h.defaultSuffix(arg.defaultValue, arg.defaultValueDesc)
		}
		if strings.TrimSpace(desc) != "" {
			argRows = append(argRows, row{arg.name, strings.TrimSpace(desc)})
		}
	}
	writeSection("Arguments", argRows)

	groups := map[string][]row{}
	var groupOrder []string
	addOptionRow := func(opt *Option) {
		desc := opt.Description
		if opt.defaultValue != nil {
			desc += h.defaultSuffix(opt.defaultValue, opt.defaultValueDesc)
		}
		if opt.envVar != "" {
			desc += fmt.Sprintf(" (env: %s)", opt.envVar)
		}
		group := opt.helpGroup
		if group == "" {
			group = "Options"
		}
		if _, ok := groups[group]; !ok {
			groupOrder = append(groupOrder, group)
		}
		groups[group] = append(groups[group], row{h.optionTerm(opt), strings.TrimSpace(desc)})
	}
	visible := visibleOptions(cmd)
	if h.SortOptions {
		sort.Slice(visible, func(i, j int) bool { return visible[i].Name() < visible[j].Name() })
	}
	for _, opt := range visible {
		addOptionRow(opt)
	}
	if helpOpt := cmd.getHelpOption(); helpOpt != nil {
		addOptionRow(helpOpt)
	}
	for _, group := range groupOrder {
		writeSection(group, groups[group])
	}

	var cmdRows []row
	subs := visibleCommands(cmd)
	if h.SortSubcommands {
		sort.Slice(subs, func(i, j int) bool { return subs[i].name < subs[j].name })
	}
	for _, sub := range subs {
		cmdRows = append(cmdRows, row{h.subcommandTerm(sub), sub.description})
	}
	if cmd.hasHelpCommand() {
		cmdRows = append(cmdRows, row{helpCommandName + " [command]", "display help for command"})
	}
	writeSection("Commands", cmdRows)

	return b.String()
}

func (h *HelpFormatter) optionTerm(opt *Option) string {
	return opt.Flags
}

func (h *HelpFormatter) subcommandTerm(sub *Command) string {
	term := sub.name
	if len(sub.aliases) > 0 {
		term += "|" + strings.Join(sub.aliases, "|")
	}
	if len(sub.arguments) > 0 {
		var names []string
		for _, arg := range sub.arguments {
			names = append(names, arg.displayName())
		}
		term += " " + strings.Join(names, " ")
	}
	return term
}

func (h *HelpFormatter) defaultSuffix(value any, desc string) string {
	if desc != "" {
		return fmt.Sprintf(" (default: %s)", desc)
	}
	return fmt.Sprintf(" (default: %v)", value)
}

func visibleOptions(cmd *Command) []*Option {
	var out []*Option
	for _, opt := range cmd.options {
		if !opt.hidden {
			out = append(out, opt)
		}
	}
	return out
}

func visibleCommands(cmd *Command) []*Command {
	var out []*Command
	for _, sub := range cmd.commands {
		if !sub.hidden {
			out = append(out, sub)
		}
	}
	return out
}

// wrapText wraps to width, indenting continuation lines by indent columns.
// Text is returned unwrapped when the budget is too tight to be useful.
func wrapText(text string, width, indent int) string {
	if width < 20 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	var b strings.Builder
	line := 0
	pad := strings.Repeat(" ", indent)
	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			line = len(word)
			continue
		}
		if line+1+len(word) > width {
			b.WriteString("\n" + pad + word)
			line = len(word)
			continue
		}
		b.WriteString(" " + word)
		line += 1 + len(word)
	}
	return b.String()
}
