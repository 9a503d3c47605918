package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/akam1o/mcli/pkg/driver"
)

// Result is the outcome of one invocation.
type Result struct {
	Status  driver.Status
	Outputs []Value
	Message string
	// Syntax marks arity and coercion failures; the target was not called.
	Syntax bool
}

func syntaxResult(format string, args ...any) Result {
	return Result{Status: driver.BadParam, Syntax: true, Message: fmt.Sprintf(format, args...)}
}

// Invoke runs a shaped command: check arity, coerce each input in shape
// order, call the target and collect its outputs. Too few tokens never
// reach coercion.
func Invoke(dev *driver.Dev, cmd *Command, args []string) Result {
	t := cmd.target
	if t == nil {
		return Result{Status: driver.Fail, Message: cmd.Name() + " has no driver target"}
	}

	shape := t.shape
	need := shape.MinTokens()
	if len(args) < need {
		return syntaxResult("%s needs %d arguments, got %d", cmd.Name(), need, len(args))
	}
	if shape.Fixed() && len(args) > need {
		return syntaxResult("%s takes %d arguments, got %d", cmd.Name(), need, len(args))
	}

	pc := NewParseContext(args)
	in := make([]reflect.Value, 0, len(shape)+1)
	in = append(in, reflect.ValueOf(dev))
	for _, a := range shape.inputs() {
		v, err := t.coerce(dev, a, pc)
		if err != nil {
			return syntaxResult("%s: %v", a.Name, err)
		}
		in = append(in, v)
	}
	if pc.Remaining() > 0 {
		return syntaxResult("unexpected argument %q", pc.Rest()[0])
	}

	outs, st := t.call(in)
	return Result{Status: st, Outputs: outs}
}

// FormatResult renders the report lines of a non-syntax result. A silent
// success returns nothing.
func FormatResult(cmd *Command, res Result) []string {
	switch res.Status {
	case driver.OK:
		switch len(res.Outputs) {
		case 0:
			return nil
		case 1:
			return []string{fmt.Sprintf("%s value: 0x%x", cmd.Sub, res.Outputs[0].Uint())}
		default:
			parts := make([]string, len(res.Outputs))
			for i, v := range res.Outputs {
				parts[i] = fmt.Sprintf("value%d: 0x%x", i+1, v.Uint())
			}
			return []string{strings.Join(parts, " ")}
		}
	case driver.NotSupported:
		return []string{fmt.Sprintf("Warning: %s is not supported on this device", cmd.Name())}
	case driver.NoSuch:
		return []string{fmt.Sprintf("%s: no such item", cmd.Name())}
	default:
		return []string{fmt.Sprintf("Error ret[%d: %s]", res.Status.Code(), res.Status)}
	}
}
