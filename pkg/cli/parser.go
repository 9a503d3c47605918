// Package cli is the command engine of the switch shell: the command
// registry, argument coercion, the shape-driven invoker and the line and
// script driver.
package cli

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// TokenizeCommand splits a command line into tokens, respecting quotes.
// A leading '{' and a trailing '}' become tokens of their own, so "{1 0 1}"
// reads as "{", "1", "0", "1", "}"; "{}" stays whole.
// Example: `atu addEntry -macAddr "00 11 22"` -> ["atu", "addEntry", "-macAddr", "00 11 22"], nil
// Returns error if quotes are unmatched or the line holds a shell operator
// (; & | < >) outside quotes
func TokenizeCommand(line string) ([]string, error) {
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false

	tokens, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("unmatched quote in command")
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("unexpected shell operator at offset %d", p.Position)
	}
	return splitBraces(tokens), nil
}

func splitBraces(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "{}" {
			out = append(out, tok)
			continue
		}
		if len(tok) > 1 && tok[0] == '{' {
			out = append(out, "{")
			tok = tok[1:]
		}
		if len(tok) > 1 && tok[len(tok)-1] == '}' {
			out = append(out, tok[:len(tok)-1], "}")
			continue
		}
		out = append(out, tok)
	}
	return out
}

// IsComment reports whether line is a script comment
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// IsBlank reports whether line holds only whitespace
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
