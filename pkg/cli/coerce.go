package cli

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/akam1o/mcli/pkg/cmdkey"
	"github.com/akam1o/mcli/pkg/driver"
)

// ParseContext is the token cursor of one invocation. Every coercion reads
// through it, so nested invocations (scripts running scripts) never share
// parser state.
type ParseContext struct {
	tokens []string
	pos    int
}

// NewParseContext returns a cursor at the first of tokens.
func NewParseContext(tokens []string) *ParseContext {
	return &ParseContext{tokens: tokens}
}

// Remaining returns the number of unread tokens.
func (pc *ParseContext) Remaining() int { return len(pc.tokens) - pc.pos }

// Pos returns the index of the next token.
func (pc *ParseContext) Pos() int { return pc.pos }

// Next returns the next token and advances.
func (pc *ParseContext) Next() (string, bool) {
	if pc.pos >= len(pc.tokens) {
		return "", false
	}
	tok := pc.tokens[pc.pos]
	pc.pos++
	return tok, true
}

// Rest returns the unread tokens without advancing.
func (pc *ParseContext) Rest() []string { return pc.tokens[pc.pos:] }

// Skip advances past n tokens.
func (pc *ParseContext) Skip(n int) {
	pc.pos += n
	if pc.pos > len(pc.tokens) {
		pc.pos = len(pc.tokens)
	}
}

// CoerceError reports a token that does not decode as its argument kind.
// The invoker turns it into driver.BadParam.
type CoerceError struct {
	Kind   Kind
	Token  string
	Reason string
}

func (e *CoerceError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Token, e.Reason)
}

// Status returns the driver status for a coercion failure.
func (e *CoerceError) Status() driver.Status { return driver.BadParam }

func coerceErr(kind Kind, tok, reason string) error {
	return &CoerceError{Kind: kind, Token: tok, Reason: reason}
}

// parseCUint accepts C integer literals: 0x/0X hex, a leading 0 for octal,
// decimal otherwise.
func parseCUint(kind Kind, tok string, bits int) (uint64, error) {
	if tok == "" {
		return 0, coerceErr(kind, tok, "empty value")
	}
	// strconv base 0 also takes 0b, 0o and digit separators; C does not
	lower := strings.ToLower(tok)
	if strings.ContainsRune(tok, '_') || strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o") {
		return 0, coerceErr(kind, tok, "not an integer")
	}
	v, err := strconv.ParseUint(tok, 0, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, coerceErr(kind, tok, fmt.Sprintf("exceeds %d bits", bits))
		}
		return 0, coerceErr(kind, tok, "not an integer")
	}
	return v, nil
}

// CoerceU32 decodes a 32-bit integer literal.
func CoerceU32(tok string) (uint32, error) {
	v, err := parseCUint(KindU32, tok, 32)
	return uint32(v), err
}

// CoerceU16 decodes a 16-bit integer literal.
func CoerceU16(tok string) (uint16, error) {
	v, err := parseCUint(KindU16, tok, 16)
	return uint16(v), err
}

// CoerceU64 decodes a 64-bit integer literal.
func CoerceU64(tok string) (uint64, error) {
	return parseCUint(KindU64, tok, 64)
}

// CoercePort decodes a logical port number.
func CoercePort(tok string) (driver.Port, error) {
	v, err := parseCUint(KindPort, tok, 32)
	return driver.Port(v), err
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// CoerceMAC reads up to 12 hex digits into a MAC address. Shorter input
// leaves the trailing bytes zero and characters after the twelfth are
// ignored.
func CoerceMAC(tok string) (driver.MAC, error) {
	var mac driver.MAC
	for i := 0; i < len(tok) && i < 12; i++ {
		n, ok := hexNibble(tok[i])
		if !ok {
			return driver.MAC{}, coerceErr(KindMAC, tok, fmt.Sprintf("invalid hex digit at position %d", i))
		}
		if i%2 == 0 {
			mac[i/2] = n << 4
		} else {
			mac[i/2] |= n
		}
	}
	return mac, nil
}

// CoerceIPv4 splits tok on '.' into up to four decimal octets. Missing
// trailing octets are zero.
func CoerceIPv4(tok string) (netip.Addr, error) {
	fields := strings.Split(tok, ".")
	if len(fields) > 4 {
		return netip.Addr{}, coerceErr(KindIPv4, tok, "more than 4 fields")
	}
	var b [4]byte
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return netip.Addr{}, coerceErr(KindIPv4, tok, fmt.Sprintf("field %d is not an octet", i))
		}
		b[i] = byte(v)
	}
	return netip.AddrFrom4(b), nil
}

// CoerceIPv6 accepts a standard IPv6 literal, or up to eight ':' separated
// hex fields with missing trailing fields zero.
func CoerceIPv6(tok string) (netip.Addr, error) {
	if a, err := netip.ParseAddr(tok); err == nil && a.Is6() && a.Zone() == "" {
		return a, nil
	}

	fields := strings.Split(tok, ":")
	if len(fields) > 8 {
		return netip.Addr{}, coerceErr(KindIPv6, tok, "more than 8 fields")
	}
	var b [16]byte
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 16)
		if err != nil {
			return netip.Addr{}, coerceErr(KindIPv6, tok, fmt.Sprintf("field %d is not a 16-bit hex value", i))
		}
		b[2*i] = byte(v >> 8)
		b[2*i+1] = byte(v)
	}
	return netip.AddrFrom16(b), nil
}

// CoerceBitArray parses "{}" or "{ v1 ... vN }" from the front of tokens.
// The result always has maxLen entries, unset ones zero. consumed counts
// the braces. When exactly maxLen values are read and the tokens end, the
// closing brace may be omitted.
func CoerceBitArray(tokens []string, maxLen int) (vals []uint32, consumed int, err error) {
	if len(tokens) == 0 {
		return nil, 0, coerceErr(KindBitArray, "", "missing '{'")
	}
	vals = make([]uint32, maxLen)
	switch tokens[0] {
	case "{}":
		return vals, 1, nil
	case "{":
	default:
		return nil, 0, coerceErr(KindBitArray, tokens[0], "expected '{' or '{}'")
	}

	n := 0
	for i := 1; ; i++ {
		if i == len(tokens) {
			if n == maxLen {
				return vals, i, nil
			}
			return nil, 0, coerceErr(KindBitArray, "", "missing '}'")
		}
		tok := tokens[i]
		if strings.HasPrefix(tok, "}") {
			if len(tok) > 1 {
				return nil, 0, coerceErr(KindBitArray, tok, "unexpected text after '}'")
			}
			return vals, i + 1, nil
		}
		if n == maxLen {
			return nil, 0, coerceErr(KindBitArray, tok, fmt.Sprintf("more than %d values", maxLen))
		}
		v, err := CoerceU32(tok)
		if err != nil {
			return nil, 0, coerceErr(KindBitArray, tok, "not an integer")
		}
		vals[n] = v
		n++
	}
}

// CoerceFlag accepts an integer (non-zero is true) or one of true/false,
// on/off, enable/disable.
func CoerceFlag(tok string) (bool, error) {
	switch cmdkey.Fold(tok) {
	case "true", "on", "enable":
		return true, nil
	case "false", "off", "disable":
		return false, nil
	}
	v, err := parseCUint(KindFlag, tok, 32)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
