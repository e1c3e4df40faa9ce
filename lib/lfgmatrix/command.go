// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package lfgmatrix

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/pflag"

	"github.com/partycrusher/partycrusher/lib/lfgbot"
	"github.com/partycrusher/partycrusher/lib/listing"
	"github.com/partycrusher/partycrusher/lib/role"
)

// Verb names a bot command.
type Verb string

const (
	VerbCreate Verb = "create"
	VerbNeed   Verb = "need"
	VerbJoin   Verb = "join"
	VerbLeave  Verb = "leave"
	VerbClose  Verb = "close"
	VerbEdit   Verb = "edit"
	VerbRoles  Verb = "roles"
	VerbHelp   Verb = "help"
)

// CommandSpec describes one command for help output and the room's
// command catalogue.
type CommandSpec struct {
	Verb        Verb   `json:"name"`
	Usage       string `json:"usage"`
	Description string `json:"description"`
}

// Commands lists every command in help order.
var Commands = []CommandSpec{
	{VerbCreate, "create --dungeon <name> --level <n> --timing <Timed|Completion> --role <role> [--requirements <text>] [--passphrase <text>] [--listed-as <text>]", "Start a group listing."},
	{VerbNeed, "need <role>...", "Choose the roles your new group is looking for."},
	{VerbJoin, "join <role> [#id]", "Join a group in a role. Reacting with the role icon does the same."},
	{VerbLeave, "leave [#id]", "Leave a group."},
	{VerbClose, "close [#id]", "Close your group."},
	{VerbEdit, "edit <text>... [#id] | edit [#id] -- <text>... | edit --clear [#id]", "Replace your group's specific requirements. Words are joined by single spaces; quote the text to keep its spacing. A last word that looks like a #id picks the group, unless the text follows --."},
	{VerbRoles, "roles <role>... [#id]", "Update the roles your group is looking for."},
	{VerbHelp, "help", "Show this help."},
}

// Command is a parsed bot command.
type Command struct {
	Verb Verb

	// Target carries the #id argument. The sync handler adds the
	// replied-to message.
	Target lfgbot.Target

	// Draft is set for VerbCreate.
	Draft listing.DraftRequest
	// Role is set for VerbJoin.
	Role role.Key
	// Roles is set for VerbNeed and VerbRoles.
	Roles role.Set
	// Text is set for VerbEdit.
	Text string
}

// UsageError reports a malformed command. Its message is meant for the
// user who typed it.
type UsageError struct {
	Verb Verb
	Err  error
}

func (e *UsageError) Error() string {
	if e.Verb == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Verb, e.Err)
}

func (e *UsageError) Unwrap() error { return e.Err }

// Usage returns the usage line for the command that failed, or ""
// when the verb itself was not recognized.
func (e *UsageError) Usage() string {
	for _, spec := range Commands {
		if spec.Verb == e.Verb {
			return spec.Usage
		}
	}
	return ""
}

var shortIDPattern = regexp.MustCompile(`^#[0-9a-fA-F][0-9a-fA-F-]{3,35}$`)

// ParseCommand parses a message body. ok is false when body does not
// start with prefix; the message is then not addressed to the bot.
func ParseCommand(body, prefix string) (command Command, ok bool, err error) {
	trimmed := strings.TrimSpace(body)
	rest, found := strings.CutPrefix(trimmed, prefix)
	if !found || (rest != "" && !isSpace(rest[0])) {
		return Command{}, false, nil
	}

	args, err := splitArgs(rest)
	if err != nil {
		return Command{}, true, &UsageError{Err: err}
	}
	if len(args) == 0 {
		return Command{Verb: VerbHelp}, true, nil
	}

	verb := Verb(strings.ToLower(args[0]))
	command, err = parseVerb(verb, args[1:])
	if err != nil {
		var usage *UsageError
		if !errors.As(err, &usage) && !lfgbot.IsRejection(err) {
			err = &UsageError{Verb: verb, Err: err}
		}
		return Command{}, true, err
	}
	command.Verb = verb
	return command, true, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

func parseVerb(verb Verb, args []string) (Command, error) {
	switch verb {
	case VerbCreate:
		return parseCreate(args)
	case VerbNeed:
		return parseRoles(verb, args, false)
	case VerbRoles:
		return parseRoles(verb, args, true)
	case VerbJoin:
		return parseJoin(args)
	case VerbLeave, VerbClose:
		return parseTargetOnly(verb, args)
	case VerbEdit:
		return parseEdit(args)
	case VerbHelp:
		return Command{}, nil
	default:
		return Command{}, &UsageError{Err: fmt.Errorf("unknown command %q", verb)}
	}
}

func newFlagSet(verb Verb) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(string(verb), pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SortFlags = false
	return flagSet
}

func parseCreate(args []string) (Command, error) {
	var (
		dungeon      string
		level        int
		timing       string
		yourRole     string
		requirements string
		passphrase   string
		listedAs     string
	)
	flagSet := newFlagSet(VerbCreate)
	flagSet.StringVarP(&dungeon, "dungeon", "d", "", "dungeon name or unique prefix")
	flagSet.IntVarP(&level, "level", "l", 0, "keystone level")
	flagSet.StringVarP(&timing, "timing", "t", "", "Timed or Completion")
	flagSet.StringVarP(&yourRole, "role", "r", "", "your own role")
	flagSet.StringVar(&requirements, "requirements", "", "specific requirements")
	flagSet.StringVar(&passphrase, "passphrase", "", "group passphrase (generated when empty)")
	flagSet.StringVar(&listedAs, "listed-as", "", "in-game listing name")
	if err := flagSet.Parse(args); err != nil {
		return Command{}, err
	}
	if flagSet.NArg() > 0 {
		return Command{}, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}

	var missing []string
	for _, name := range []string{"dungeon", "level", "timing", "role"} {
		if !flagSet.Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return Command{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	parsedTiming, err := listing.ParseTiming(timing)
	if err != nil {
		return Command{}, err
	}
	key, err := role.Normalize(yourRole)
	if err != nil {
		return Command{}, err
	}
	return Command{Draft: listing.DraftRequest{
		Dungeon:      listing.Dungeon(dungeon),
		KeyLevel:     level,
		Timing:       parsedTiming,
		CreatorRole:  key,
		Requirements: requirements,
		Passphrase:   passphrase,
		ListedAs:     listedAs,
	}}, nil
}

// splitTarget removes #id arguments and returns the last one.
func splitTarget(args []string) ([]string, lfgbot.Target) {
	var target lfgbot.Target
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if shortIDPattern.MatchString(arg) {
			target.ShortID = strings.ToLower(strings.TrimPrefix(arg, "#"))
			continue
		}
		rest = append(rest, arg)
	}
	return rest, target
}

func parseTargetOnly(verb Verb, args []string) (Command, error) {
	flagSet := newFlagSet(verb)
	if err := flagSet.Parse(args); err != nil {
		return Command{}, err
	}
	rest, target := splitTarget(flagSet.Args())
	if len(rest) > 0 {
		return Command{}, fmt.Errorf("unexpected argument %q", rest[0])
	}
	return Command{Target: target}, nil
}

func parseJoin(args []string) (Command, error) {
	flagSet := newFlagSet(VerbJoin)
	if err := flagSet.Parse(args); err != nil {
		return Command{}, err
	}
	rest, target := splitTarget(flagSet.Args())
	if len(rest) == 0 {
		return Command{}, errors.New("missing role")
	}
	key, err := role.Normalize(strings.Join(rest, " "))
	if err != nil {
		return Command{}, err
	}
	return Command{Target: target, Role: key}, nil
}

func parseRoles(verb Verb, args []string, targeted bool) (Command, error) {
	flagSet := newFlagSet(verb)
	if err := flagSet.Parse(args); err != nil {
		return Command{}, err
	}
	rest := flagSet.Args()
	var target lfgbot.Target
	if targeted {
		rest, target = splitTarget(rest)
	}
	if len(rest) == 0 {
		return Command{}, listing.ErrEmptySelection
	}
	set, err := parseRoleList(rest)
	if err != nil {
		return Command{}, err
	}
	return Command{Target: target, Roles: set}, nil
}

// parseRoleList normalizes role labels separated by spaces or commas.
// Two adjacent words that together name a role ("melee dps") count as
// one label.
func parseRoleList(args []string) (role.Set, error) {
	var words []string
	for _, arg := range args {
		for _, word := range strings.Split(arg, ",") {
			if word = strings.TrimSpace(word); word != "" {
				words = append(words, word)
			}
		}
	}

	var set role.Set
	for index := 0; index < len(words); index++ {
		if index+1 < len(words) {
			if key, err := role.Normalize(words[index] + " " + words[index+1]); err == nil {
				set = set.With(key)
				index++
				continue
			}
		}
		key, err := role.Normalize(words[index])
		if err != nil {
			return 0, err
		}
		set = set.With(key)
	}
	return set, nil
}

func parseEdit(args []string) (Command, error) {
	var clearText bool
	flagSet := newFlagSet(VerbEdit)
	flagSet.SetInterspersed(false)
	flagSet.BoolVar(&clearText, "clear", false, "remove the requirements")
	if err := flagSet.Parse(args); err != nil {
		return Command{}, err
	}

	// Words after a leading "--" (optionally preceded by the #id) are
	// all text, so a trailing #word is not read as the target.
	rest := flagSet.Args()
	var target lfgbot.Target
	switch {
	case flagSet.ArgsLenAtDash() == 0:
	case len(rest) >= 2 && rest[1] == "--" && shortIDPattern.MatchString(rest[0]):
		target.ShortID = strings.ToLower(strings.TrimPrefix(rest[0], "#"))
		rest = rest[2:]
	default:
		if last := len(rest) - 1; last >= 0 && shortIDPattern.MatchString(rest[last]) {
			target.ShortID = strings.ToLower(strings.TrimPrefix(rest[last], "#"))
			rest = rest[:last]
		}
	}

	text := strings.Join(rest, " ")
	switch {
	case clearText && text != "":
		return Command{}, errors.New("--clear takes no text")
	case !clearText && strings.TrimSpace(text) == "":
		return Command{}, errors.New("missing text (use --clear to remove the requirements)")
	}
	return Command{Target: target, Text: text}, nil
}

// HelpText is the reply to the help command.
func HelpText(prefix string) string {
	var builder strings.Builder
	builder.WriteString("**PartyCrusher commands**\n")
	for _, spec := range Commands {
		fmt.Fprintf(&builder, "\n`%s %s`  \n%s\n", prefix, spec.Usage, spec.Description)
	}
	builder.WriteString("\nRoles: tank, healer, melee, ranged. Reply to a listing, or add its `#id`, to pick which group you mean.")
	return builder.String()
}
