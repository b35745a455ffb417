// Package actions holds the closed set of privileged external actions the
// service may run and the compiled-in executables they map to.
package actions

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BradenHooton/wakeguard/internal/models"
)

// Name is a logical action name as written in configuration
type Name string

const (
	// WakePC runs the host's wakepc helper, which sends the magic packet to the
	// preconfigured target
	WakePC Name = "wakepc"
	// EtherWake runs etherwake against the MAC preconfigured in its wrapper
	EtherWake Name = "etherwake"
)

// Command is a validated executable plus fixed arguments. Nothing in it is
// ever derived from request input.
type Command struct {
	Path string
	Args []string
}

// allowlist maps every permitted action to its executable. Names not listed
// here are never executed.
var allowlist = map[Name]Command{
	WakePC:    {Path: "/usr/local/bin/wakepc"},
	EtherWake: {Path: "/usr/local/bin/wake-target"},
}

// Parse validates a configured action name against the allowlist
func Parse(raw string) (Name, error) {
	name := Name(strings.TrimSpace(raw))
	if _, ok := allowlist[name]; !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownAction, raw)
	}
	return name, nil
}

// Resolve returns the executable for name. An unknown name is a
// configuration error and yields ErrUnknownAction.
func Resolve(name Name) (Command, error) {
	cmd, ok := allowlist[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", models.ErrUnknownAction, string(name))
	}
	// Copy so callers cannot mutate the allowlist through the slice
	cmd.Args = append([]string(nil), cmd.Args...)
	return cmd, nil
}

// Names lists the allowlisted action names in sorted order
func Names() []Name {
	names := make([]Name, 0, len(allowlist))
	for name := range allowlist {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
