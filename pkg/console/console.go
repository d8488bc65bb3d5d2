// Package console evaluates debug commands against a live inspector. Only a
// fixed command set is understood; nothing is executed as code.
package console

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/filter"
	"github.com/grovetools/sigscope/pkg/history"
	"github.com/grovetools/sigscope/pkg/signal"
)

const signalsPrefix = "$signals."

// Backend is the inspector surface the console reads and writes.
type Backend interface {
	GetSignal(path string) (any, bool)
	SetSignal(path string, value any) error
	Paths() []string
	Changes(limit int) []history.Entry
	ExpandedPaths() []string
}

// Evaluator runs console input against a Backend.
type Evaluator struct {
	backend Backend
}

// New creates an evaluator.
func New(b Backend) *Evaluator {
	return &Evaluator{backend: b}
}

type command struct {
	usage string
	help  string
	run   func(e *Evaluator, args []string) (string, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"get":      {"get <path>", "show the live value of a signal", (*Evaluator).get},
		"set":      {"set <path> <json>", "write a signal through its setter", (*Evaluator).set},
		"keys":     {"keys [query]", "list signal paths, optionally filtered", (*Evaluator).keys},
		"count":    {"count", "number of known signals", (*Evaluator).count},
		"changes":  {"changes [n]", "newest n changes (default 10)", (*Evaluator).changes},
		"expanded": {"expanded", "paths currently expanded in the panel", (*Evaluator).expanded},
		"help":     {"help", "this list", (*Evaluator).help},
	}
}

// Eval evaluates one line of input.
func (e *Evaluator) Eval(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if strings.HasPrefix(input, signalsPrefix) {
		path := strings.TrimSuffix(strings.TrimPrefix(input, signalsPrefix), "()")
		return e.get([]string{path})
	}

	name, rest, _ := strings.Cut(input, " ")
	cmd, ok := commands[name]
	if !ok {
		return "", errors.UnknownCommand(name)
	}
	return cmd.run(e, splitArgs(name, strings.TrimSpace(rest)))
}

// splitArgs splits the argument string. For set, everything after the path
// is a single JSON argument that may contain spaces.
func splitArgs(name, rest string) []string {
	if rest == "" {
		return nil
	}
	if name == "set" {
		path, value, found := strings.Cut(rest, " ")
		if !found {
			return []string{path}
		}
		return []string{path, strings.TrimSpace(value)}
	}
	return strings.Fields(rest)
}

func usageError(name string) error {
	return errors.New(errors.ErrCodeInvalidInput, "usage: "+commands[name].usage).
		WithDetail("command", name)
}

func (e *Evaluator) get(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", usageError("get")
	}
	v, ok := e.backend.GetSignal(args[0])
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "signal not found: "+args[0]).
			WithDetail("path", args[0])
	}
	return signal.Format(v), nil
}

func (e *Evaluator) set(args []string) (string, error) {
	if len(args) != 2 {
		return "", usageError("set")
	}
	value := ParseValue(args[1])
	if err := e.backend.SetSignal(args[0], value); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", args[0], signal.Format(value)), nil
}

func (e *Evaluator) keys(args []string) (string, error) {
	paths := e.backend.Paths()
	if len(args) > 0 {
		paths = filter.Search(paths, strings.Join(args, " "), false)
	}
	return strings.Join(paths, "\n"), nil
}

func (e *Evaluator) count(args []string) (string, error) {
	return strconv.Itoa(len(e.backend.Paths())), nil
}

func (e *Evaluator) changes(args []string) (string, error) {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", usageError("changes")
		}
		limit = n
	}
	entries := e.backend.Changes(limit)
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, FormatChange(entry))
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Evaluator) expanded(args []string) (string, error) {
	return strings.Join(e.backend.ExpandedPaths(), "\n"), nil
}

func (e *Evaluator) help(args []string) (string, error) {
	names := []string{"get", "set", "keys", "count", "changes", "expanded", "help"}
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%-20s %s\n", commands[name].usage, commands[name].help)
	}
	fmt.Fprintf(&b, "%-20s %s", "$signals.<path>", "same as get <path>")
	return b.String(), nil
}

// FormatChange renders a history entry as "HH:MM:SS path: old → new".
func FormatChange(entry history.Entry) string {
	return fmt.Sprintf("%s %s: %s → %s",
		entry.Timestamp.Format("15:04:05"),
		entry.Path,
		signal.Truncate(Inline(entry.OldValue), 50),
		signal.Truncate(Inline(entry.NewValue), 50))
}

// Inline renders a value on one line: objects in canonical form, a missing
// value as "undefined".
func Inline(v any) string {
	if signal.IsUnset(v) {
		return "undefined"
	}
	if signal.TypeOf(v) == signal.TypeObject {
		return string(signal.Canonical(v))
	}
	return signal.Format(v)
}

// ParseValue reads a console argument as JSON, falling back to the raw
// string so `set name Amy` works without quotes.
func ParseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
