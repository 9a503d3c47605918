// Package cmdkey defines the case-folded (module, subcommand) key shared by
// the command registry and the help metadata store.
package cmdkey

import (
	"golang.org/x/text/cases"
)

// Key identifies a command. Both fields are already folded.
type Key struct {
	Module string
	Sub    string
}

// New builds a Key from raw user or table input.
func New(module, sub string) Key {
	return Key{Module: Fold(module), Sub: Fold(sub)}
}

// Fold applies the matching rule used for every command and help lookup.
// A fresh Caser is used per call because Casers carry state.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Equal reports whether a and b name the same thing under Fold.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// String renders the key the way a user would type it.
func (k Key) String() string {
	if k.Module == "" {
		return k.Sub
	}
	return k.Module + " " + k.Sub
}
