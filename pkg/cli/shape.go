package cli

import (
	"fmt"
	"net/netip"
	"reflect"
	"sort"
	"strings"

	"github.com/akam1o/mcli/pkg/cmdkey"
	"github.com/akam1o/mcli/pkg/driver"
)

// Kind is the type of one command argument.
type Kind int

const (
	KindNone Kind = iota
	KindU32
	KindU32Out
	KindU16
	KindU64
	KindPort
	KindMAC
	KindIPv4
	KindIPv6
	KindBitArray
	KindFlag
	KindOptions
)

var kindNames = [...]string{
	KindNone:     "none",
	KindU32:      "u32",
	KindU32Out:   "u32 out",
	KindU16:      "u16",
	KindU64:      "u64",
	KindPort:     "port",
	KindMAC:      "mac",
	KindIPv4:     "ipv4",
	KindIPv6:     "ipv6",
	KindBitArray: "bit array",
	KindFlag:     "flag",
	KindOptions:  "options",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Arg describes one argument of a command.
type Arg struct {
	Kind Kind
	Name string
	// Len is the value count of a bit array; 0 means one value per port.
	Len int
}

// Input reports whether the argument is read from the command line.
func (a Arg) Input() bool {
	return a.Kind != KindNone && a.Kind != KindU32Out
}

// Shape is the ordered argument list of a command. It alone determines how
// the command's target is called.
type Shape []Arg

// Arg constructors used by command tables.
func U32(name string) Arg             { return Arg{Kind: KindU32, Name: name} }
func U32Out(name string) Arg          { return Arg{Kind: KindU32Out, Name: name} }
func U16(name string) Arg             { return Arg{Kind: KindU16, Name: name} }
func U64(name string) Arg             { return Arg{Kind: KindU64, Name: name} }
func PortArg(name string) Arg         { return Arg{Kind: KindPort, Name: name} }
func MACArg(name string) Arg          { return Arg{Kind: KindMAC, Name: name} }
func IPv4(name string) Arg            { return Arg{Kind: KindIPv4, Name: name} }
func IPv6(name string) Arg            { return Arg{Kind: KindIPv6, Name: name} }
func BitArray(name string, n int) Arg { return Arg{Kind: KindBitArray, Name: name, Len: n} }
func Flag(name string) Arg            { return Arg{Kind: KindFlag, Name: name} }
func Options(name string) Arg         { return Arg{Kind: KindOptions, Name: name} }

func (s Shape) inputs() []Arg { return s.filter(Arg.Input) }

func (s Shape) outputs() []Arg {
	return s.filter(func(a Arg) bool { return a.Kind == KindU32Out })
}

func (s Shape) filter(keep func(Arg) bool) []Arg {
	var out []Arg
	for _, a := range s {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// MinTokens is the fewest tokens that can satisfy the shape. A bit array
// needs at least "{}" and options may all be omitted.
func (s Shape) MinTokens() int {
	n := 0
	for _, a := range s.inputs() {
		if a.Kind != KindOptions {
			n++
		}
	}
	return n
}

// Fixed reports whether every input takes exactly one token.
func (s Shape) Fixed() bool {
	for _, a := range s.inputs() {
		if a.Kind == KindBitArray || a.Kind == KindOptions {
			return false
		}
	}
	return true
}

// Usage renders the shape as an argument synopsis.
func (s Shape) Usage() string {
	var parts []string
	for _, a := range s.inputs() {
		switch a.Kind {
		case KindBitArray:
			parts = append(parts, "{"+a.Name+" ...}")
		case KindOptions:
			parts = append(parts, "[-option value ...]")
		default:
			parts = append(parts, "<"+a.Name+">")
		}
	}
	return strings.Join(parts, " ")
}

// Value is one decoded argument or returned output.
type Value struct {
	Kind Kind
	Name string
	v    any
}

// Uint returns integer values widened to uint64. Flags are 0 or 1.
func (v Value) Uint() uint64 {
	switch x := v.v.(type) {
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case driver.Port:
		return uint64(x)
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

// Interface returns the decoded Go value.
func (v Value) Interface() any { return v.v }

// recordTag names record fields on the command line.
const recordTag = "opt"

var (
	devType    = reflect.TypeOf((*driver.Dev)(nil))
	statusType = reflect.TypeOf(driver.Status(0))
)

// goType is the parameter type a target must declare for k.
func goType(k Kind) reflect.Type {
	switch k {
	case KindU32, KindU32Out:
		return reflect.TypeOf(uint32(0))
	case KindU16:
		return reflect.TypeOf(uint16(0))
	case KindU64:
		return reflect.TypeOf(uint64(0))
	case KindPort:
		return reflect.TypeOf(driver.Port(0))
	case KindMAC:
		return reflect.TypeOf(driver.MAC{})
	case KindIPv4, KindIPv6:
		return reflect.TypeOf(netip.Addr{})
	case KindBitArray:
		return reflect.TypeOf([]uint32(nil))
	case KindFlag:
		return reflect.TypeOf(false)
	}
	return nil
}

// fieldKind maps the Go type of a record field to the kind it is parsed as.
func fieldKind(t reflect.Type) (Kind, bool) {
	for _, k := range []Kind{KindU32, KindU16, KindU64, KindPort, KindMAC, KindBitArray, KindFlag} {
		if goType(k) == t {
			return k, true
		}
	}
	if t == reflect.TypeOf(netip.Addr{}) {
		return KindIPv4, true
	}
	return KindNone, false
}

// recordField is one "-name value" option of a record argument.
type recordField struct {
	name  string
	index int
	kind  Kind
}

// Target is a driver function bound to a shape.
type Target struct {
	fn     reflect.Value
	shape  Shape
	record reflect.Type
	fields map[string]recordField
}

// Bind checks that fn can be called as shape describes and returns the
// bound target. fn must take (*driver.Dev, inputs...) in shape order and
// return (outputs..., driver.Status). An options argument must be the last
// input and binds to a struct whose fields carry `opt:"name"` tags.
func Bind(shape Shape, fn any) (*Target, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("target is %T, not a function", fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("target must not be variadic")
	}

	for _, a := range shape {
		if a.Kind == KindNone {
			return nil, fmt.Errorf("argument %q has no kind", a.Name)
		}
	}

	t := &Target{fn: fv, shape: shape}
	in := shape.inputs()
	if ft.NumIn() != len(in)+1 {
		return nil, fmt.Errorf("target takes %d parameters, shape needs %d", ft.NumIn(), len(in)+1)
	}
	if ft.In(0) != devType {
		return nil, fmt.Errorf("first parameter is %s, want %s", ft.In(0), devType)
	}
	for i, a := range in {
		pt := ft.In(i + 1)
		if a.Kind == KindOptions {
			if i != len(in)-1 {
				return nil, fmt.Errorf("options argument %q must be the last input", a.Name)
			}
			fields, err := recordFields(pt)
			if err != nil {
				return nil, fmt.Errorf("argument %q: %w", a.Name, err)
			}
			t.record, t.fields = pt, fields
			continue
		}
		if want := goType(a.Kind); pt != want {
			return nil, fmt.Errorf("argument %q (%s) is %s, want %s", a.Name, a.Kind, pt, want)
		}
	}

	out := shape.outputs()
	if ft.NumOut() != len(out)+1 {
		return nil, fmt.Errorf("target returns %d values, shape needs %d", ft.NumOut(), len(out)+1)
	}
	for i, a := range out {
		if rt := ft.Out(i); rt != goType(a.Kind) {
			return nil, fmt.Errorf("output %q is %s, want %s", a.Name, rt, goType(a.Kind))
		}
	}
	if last := ft.Out(len(out)); last != statusType {
		return nil, fmt.Errorf("last result is %s, want %s", last, statusType)
	}
	return t, nil
}

func recordFields(t reflect.Type) (map[string]recordField, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("options bind to a struct, not %s", t)
	}
	fields := make(map[string]recordField)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, ok := sf.Tag.Lookup(recordTag)
		if !ok || name == "-" {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("field %s is not exported", sf.Name)
		}
		kind, ok := fieldKind(sf.Type)
		if !ok {
			return nil, fmt.Errorf("field %s has unsupported type %s", sf.Name, sf.Type)
		}
		key := cmdkey.Fold(name)
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("option %q tagged twice", name)
		}
		fields[key] = recordField{name: name, index: i, kind: kind}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s has no %q tagged fields", t, recordTag)
	}
	return fields, nil
}

// OptionNames returns the sorted option names of a record argument.
func (t *Target) OptionNames() []string {
	names := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		names = append(names, f.name)
	}
	sort.Strings(names)
	return names
}

// coerce reads one input argument through pc.
func (t *Target) coerce(dev *driver.Dev, a Arg, pc *ParseContext) (reflect.Value, error) {
	switch a.Kind {
	case KindBitArray:
		n := a.Len
		if n == 0 {
			n = dev.Ports()
		}
		vals, consumed, err := CoerceBitArray(pc.Rest(), n)
		if err != nil {
			return reflect.Value{}, err
		}
		pc.Skip(consumed)
		return reflect.ValueOf(vals), nil
	case KindOptions:
		return t.coerceRecord(dev, pc)
	}

	tok, ok := pc.Next()
	if !ok {
		return reflect.Value{}, coerceErr(a.Kind, "", "missing "+a.Name)
	}
	v, err := coerceToken(a.Kind, tok)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(v), nil
}

// coerceToken decodes a single-token kind.
func coerceToken(k Kind, tok string) (any, error) {
	switch k {
	case KindU32:
		return CoerceU32(tok)
	case KindU16:
		return CoerceU16(tok)
	case KindU64:
		return CoerceU64(tok)
	case KindPort:
		return CoercePort(tok)
	case KindMAC:
		return CoerceMAC(tok)
	case KindIPv4:
		return CoerceIPv4(tok)
	case KindIPv6:
		return CoerceIPv6(tok)
	case KindFlag:
		return CoerceFlag(tok)
	}
	return nil, coerceErr(k, tok, "not a single-token kind")
}

// coerceRecord consumes "-name value" pairs until the tokens run out.
// Options may come in any order, each at most once; omitted ones stay zero.
func (t *Target) coerceRecord(dev *driver.Dev, pc *ParseContext) (reflect.Value, error) {
	rec := reflect.New(t.record).Elem()
	seen := make(map[int]bool, len(t.fields))
	for pc.Remaining() > 0 {
		tok, _ := pc.Next()
		if len(tok) < 2 || tok[0] != '-' {
			return reflect.Value{}, coerceErr(KindOptions, tok, "expected -option")
		}
		f, ok := t.fields[cmdkey.Fold(tok[1:])]
		if !ok {
			return reflect.Value{}, coerceErr(KindOptions, tok, "unknown option")
		}
		if seen[f.index] {
			return reflect.Value{}, coerceErr(KindOptions, tok, "option given twice")
		}
		seen[f.index] = true

		var v any
		var err error
		switch f.kind {
		case KindBitArray:
			var consumed int
			v, consumed, err = CoerceBitArray(pc.Rest(), dev.Ports())
			pc.Skip(consumed)
		default:
			val, ok := pc.Next()
			if !ok {
				return reflect.Value{}, coerceErr(KindOptions, tok, "missing value")
			}
			if f.kind == KindIPv4 && strings.Contains(val, ":") {
				v, err = CoerceIPv6(val)
			} else {
				v, err = coerceToken(f.kind, val)
			}
		}
		if err != nil {
			return reflect.Value{}, fmt.Errorf("option %s: %w", f.name, err)
		}
		rec.Field(f.index).Set(reflect.ValueOf(v))
	}
	return rec, nil
}

// call invokes the target and splits its results.
func (t *Target) call(in []reflect.Value) ([]Value, driver.Status) {
	res := t.fn.Call(in)
	st := res[len(res)-1].Interface().(driver.Status)

	outs := make([]Value, 0, len(res)-1)
	for i, a := range t.shape.outputs() {
		outs = append(outs, Value{Kind: a.Kind, Name: a.Name, v: res[i].Interface()})
	}
	return outs, st
}
