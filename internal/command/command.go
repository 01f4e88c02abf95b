// Package command maps the tool's user-facing operations onto the compile
// pipeline and directory housekeeping.
package command

import (
	"errors"
	"fmt"
	"strings"
)

// Command is one of the operations offered by the menu.
type Command int

const (
	CompileAndClear Command = iota + 1 // compile, then clear the report cache
	CompileAndKeep                     // compile, keep the report cache
	ClearCache
	ClearOutput
	Exit
)

// ErrUnknownCommand is returned for input that names no command.
var ErrUnknownCommand = errors.New("unknown command")

var commandNames = map[Command]string{
	CompileAndClear: "compile-clear",
	CompileAndKeep:  "compile-keep",
	ClearCache:      "clear-cache",
	ClearOutput:     "clear-output",
	Exit:            "exit",
}

var menuLabels = map[Command]string{
	CompileAndClear: "Compile data & clear PDFs",
	CompileAndKeep:  "Compile data & keep PDFs",
	ClearCache:      "Clear PDFs",
	ClearOutput:     "Clear CSVs",
	Exit:            "Exit",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Valid reports whether c is one of the defined commands.
func (c Command) Valid() bool {
	return c >= CompileAndClear && c <= Exit
}

// ParseCommand accepts a menu number ("1"-"5") or a command name ("clear-cache").
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '1' && s[0] <= '5' {
		return Command(s[0] - '0'), nil
	}
	for cmd, name := range commandNames {
		if s == name {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}
