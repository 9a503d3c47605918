package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/akam1o/mcli/pkg/cmdkey"
	"github.com/akam1o/mcli/pkg/driver"
	"github.com/akam1o/mcli/pkg/errors"
)

var errNoTarget = fmt.Errorf("command has neither a target nor a builtin")

// BuiltinFunc implements a command that needs the shell rather than a
// single driver call. It reports its own output through sh.
type BuiltinFunc func(ctx context.Context, sh *Shell, args []string) driver.Status

// Command is one entry of the registry. Module is empty for direct
// commands such as "rr".
type Command struct {
	Module string
	Sub    string
	Shape  Shape
	Help   string

	target  *Target
	builtin BuiltinFunc
	minArgs int
}

// NewCommand binds fn to shape and returns the command. The error is a
// REGISTRY_SHAPE error when fn's signature disagrees with shape.
func NewCommand(module, sub string, shape Shape, fn any, help string) (*Command, error) {
	c := &Command{Module: module, Sub: sub, Shape: shape, Help: help}
	t, err := Bind(shape, fn)
	if err != nil {
		return nil, errors.ShapeMismatch(c.Name(), err)
	}
	c.target = t
	return c, nil
}

// MustCommand is NewCommand for static tables; it panics on a mismatch.
func MustCommand(module, sub string, shape Shape, fn any, help string) *Command {
	c, err := NewCommand(module, sub, shape, fn, help)
	if err != nil {
		panic(err)
	}
	return c
}

// NewBuiltin returns a command implemented by fn. Fewer than minArgs
// arguments is a syntax error.
func NewBuiltin(module, sub string, minArgs int, fn BuiltinFunc, help string) *Command {
	return &Command{Module: module, Sub: sub, Help: help, builtin: fn, minArgs: minArgs}
}

// Key returns the folded registry key.
func (c *Command) Key() cmdkey.Key { return cmdkey.New(c.Module, c.Sub) }

// Name returns the command as typed, e.g. "port setMtu".
func (c *Command) Name() string {
	if c.Module == "" {
		return c.Sub
	}
	return c.Module + " " + c.Sub
}

// Builtin reports whether the command runs through the shell.
func (c *Command) Builtin() bool { return c.builtin != nil }

// Registry maps folded (module, subcommand) pairs to commands. It is
// filled at startup and read-only afterwards.
type Registry struct {
	cmds    map[cmdkey.Key]*Command
	modules map[string]string // folded -> display name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds:    make(map[cmdkey.Key]*Command),
		modules: make(map[string]string),
	}
}

// Register adds c. Two commands folding to the same key are rejected, as
// is a direct command named like a module.
func (r *Registry) Register(c *Command) error {
	if c.target == nil && c.builtin == nil {
		return errors.ShapeMismatch(c.Name(), errNoTarget)
	}
	key := c.Key()
	if _, dup := r.cmds[key]; dup {
		return errors.DuplicateCommand(key.String())
	}
	if key.Module == "" {
		if _, clash := r.modules[key.Sub]; clash {
			return errors.DuplicateCommand(key.String() + " (module of the same name)")
		}
	} else {
		if _, clash := r.cmds[cmdkey.Key{Sub: key.Module}]; clash {
			return errors.DuplicateCommand(key.Module + " (direct command of the same name)")
		}
		if _, ok := r.modules[key.Module]; !ok {
			r.modules[key.Module] = c.Module
		}
	}
	r.cmds[key] = c
	return nil
}

// MustRegister registers every command and panics on the first error.
func (r *Registry) MustRegister(cmds ...*Command) {
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Lookup finds (module, sub), case-insensitively.
func (r *Registry) Lookup(module, sub string) (*Command, bool) {
	c, ok := r.cmds[cmdkey.New(module, sub)]
	return c, ok
}

// LookupDirect finds a module-less command.
func (r *Registry) LookupDirect(name string) (*Command, bool) {
	return r.Lookup("", name)
}

// IsModule reports whether name is a registered module.
func (r *Registry) IsModule(name string) bool {
	_, ok := r.modules[cmdkey.Fold(name)]
	return ok
}

// Resolve finds the command a token line names and returns its arguments.
// It tries a direct command, then "module sub", then the fused form
// "modulesub" in a single token.
func (r *Registry) Resolve(tokens []string) (*Command, []string, bool) {
	if len(tokens) == 0 {
		return nil, nil, false
	}
	if c, ok := r.LookupDirect(tokens[0]); ok {
		return c, tokens[1:], true
	}
	if len(tokens) >= 2 {
		if c, ok := r.Lookup(tokens[0], tokens[1]); ok {
			return c, tokens[2:], true
		}
	}

	folded := cmdkey.Fold(tokens[0])
	for _, m := range r.modulesByLength() {
		if len(folded) > len(m) && strings.HasPrefix(folded, m) {
			if c, ok := r.cmds[cmdkey.Key{Module: m, Sub: folded[len(m):]}]; ok {
				return c, tokens[1:], true
			}
		}
	}
	return nil, nil, false
}

// modulesByLength returns folded module names, longest first, so a module
// that prefixes another never shadows it.
func (r *Registry) modulesByLength() []string {
	mods := make([]string, 0, len(r.modules))
	for m := range r.modules {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool {
		if len(mods[i]) != len(mods[j]) {
			return len(mods[i]) > len(mods[j])
		}
		return mods[i] < mods[j]
	})
	return mods
}

// Modules returns the module names as registered, sorted.
func (r *Registry) Modules() []string {
	mods := make([]string, 0, len(r.modules))
	for _, name := range r.modules {
		mods = append(mods, name)
	}
	sort.Slice(mods, func(i, j int) bool { return cmdkey.Fold(mods[i]) < cmdkey.Fold(mods[j]) })
	return mods
}

// Commands returns the commands of module sorted by subcommand. An empty
// module lists the direct commands.
func (r *Registry) Commands(module string) []*Command {
	m := cmdkey.Fold(module)
	var out []*Command
	for k, c := range r.cmds {
		if k.Module == m {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Sub < out[j].Key().Sub })
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.cmds) }
