package cli

import (
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/akam1o/mcli/pkg/driver"
)

func newTestDev(t *testing.T, family string) *driver.Dev {
	t.Helper()
	fam, ok := driver.LookupFamily(family)
	if !ok {
		t.Fatalf("unknown family %q", family)
	}
	return driver.NewSim(fam)
}

// countingCommand records how often its target runs and with what.
type countingCommand struct {
	calls int
	port  driver.Port
	vals  []uint32
	rec   testRecord
}

func (c *countingCommand) scalar(_ *driver.Dev, p driver.Port, _ uint32) driver.Status {
	c.calls++
	c.port = p
	return driver.OK
}

func (c *countingCommand) array(_ *driver.Dev, vals []uint32) driver.Status {
	c.calls++
	c.vals = vals
	return driver.OK
}

func (c *countingCommand) record(_ *driver.Dev, _ uint32, rec testRecord) driver.Status {
	c.calls++
	c.rec = rec
	return driver.OK
}

func TestInvoke_SyntaxErrorsNeverCallTarget(t *testing.T) {
	dev := newTestDev(t, "BonsaiZ1")
	tests := []struct {
		name  string
		shape Shape
		pick  func(*countingCommand) any
		args  []string
	}{
		{
			name:  "too few tokens",
			shape: Shape{PortArg("port"), U32("mtu")},
			pick:  func(c *countingCommand) any { return c.scalar },
			args:  []string{"3"},
		},
		{
			name:  "too many tokens for a fixed shape",
			shape: Shape{PortArg("port"), U32("mtu")},
			pick:  func(c *countingCommand) any { return c.scalar },
			args:  []string{"3", "1500", "9"},
		},
		{
			name:  "coercion failure",
			shape: Shape{PortArg("port"), U32("mtu")},
			pick:  func(c *countingCommand) any { return c.scalar },
			args:  []string{"three", "1500"},
		},
		{
			name:  "leftover after bit array",
			shape: Shape{BitArray("vec", 4)},
			pick:  func(c *countingCommand) any { return c.array },
			args:  []string{"{", "1", "}", "2"},
		},
		{
			name:  "unclosed bit array",
			shape: Shape{BitArray("vec", 4)},
			pick:  func(c *countingCommand) any { return c.array },
			args:  []string{"{", "1"},
		},
		{
			name:  "unknown option",
			shape: Shape{U32("entry"), Options("rec")},
			pick:  func(c *countingCommand) any { return c.record },
			args:  []string{"1", "-colour", "red"},
		},
		{
			name:  "option without value",
			shape: Shape{U32("entry"), Options("rec")},
			pick:  func(c *countingCommand) any { return c.record },
			args:  []string{"1", "-fid"},
		},
		{
			name:  "bare value where option expected",
			shape: Shape{U32("entry"), Options("rec")},
			pick:  func(c *countingCommand) any { return c.record },
			args:  []string{"1", "3"},
		},
		{
			name:  "repeated option",
			shape: Shape{U32("entry"), Options("rec")},
			pick:  func(c *countingCommand) any { return c.record },
			args:  []string{"1", "-fid", "1", "-FID", "2"},
		},
		{
			name:  "bad option value",
			shape: Shape{U32("entry"), Options("rec")},
			pick:  func(c *countingCommand) any { return c.record },
			args:  []string{"1", "-macAddr", "zz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := &countingCommand{}
			cmd := MustCommand("test", "cmd", tt.shape, tt.pick(cc), "")
			res := Invoke(dev, cmd, tt.args)
			if !res.Syntax || res.Status != driver.BadParam {
				t.Errorf("Invoke() = %+v, want syntax BadParam", res)
			}
			if res.Message == "" {
				t.Error("syntax result has no message")
			}
			if cc.calls != 0 {
				t.Errorf("target called %d times", cc.calls)
			}
		})
	}
}

func TestInvoke_BitArrayDefaultsToPortCount(t *testing.T) {
	cc := &countingCommand{}
	cmd := MustCommand("test", "vec", Shape{BitArray("vec", 0)}, cc.array, "")

	res := Invoke(newTestDev(t, "Topaz"), cmd, []string{"{", "1", "2", "}"})
	if res.Status != driver.OK || res.Syntax {
		t.Fatalf("Invoke() = %+v", res)
	}
	if diff := cmp.Diff([]uint32{1, 2, 0, 0, 0, 0, 0}, cc.vals); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoke_Options(t *testing.T) {
	dev := newTestDev(t, "Topaz")
	tests := []struct {
		name string
		args []string
		want testRecord
	}{
		{
			name: "no options",
			args: []string{"1"},
			want: testRecord{},
		},
		{
			name: "all options any order",
			args: []string{"1", "-FID", "3", "-static", "on", "-macAddr", "001122334455",
				"-portVec", "{", "1", "0", "1", "}", "-addr", "10.0.0.1"},
			want: testRecord{
				MAC:    driver.MAC{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
				FID:    3,
				Ports:  []uint32{1, 0, 1, 0, 0, 0, 0},
				Static: true,
				Addr:   netip.MustParseAddr("10.0.0.1"),
			},
		},
		{
			name: "ipv6 address option",
			args: []string{"1", "-addr", "2001:db8::1"},
			want: testRecord{Addr: netip.MustParseAddr("2001:db8::1")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := &countingCommand{}
			cmd := MustCommand("test", "rec", Shape{U32("entry"), Options("rec")}, cc.record, "")
			res := Invoke(dev, cmd, tt.args)
			if res.Status != driver.OK || res.Syntax {
				t.Fatalf("Invoke() = %+v", res)
			}
			if cc.calls != 1 {
				t.Fatalf("target called %d times", cc.calls)
			}
			opts := cmp.Comparer(func(a, b netip.Addr) bool { return a == b })
			if diff := cmp.Diff(tt.want, cc.rec, opts, cmp.AllowUnexported(testRecord{})); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInvoke_DriverCalls(t *testing.T) {
	dev := newTestDev(t, "BonsaiZ1")
	setMtu := MustCommand("port", "setMtu", Shape{PortArg("port"), U32("mtu")}, (*driver.Dev).SetPortMTU, "")
	getMtu := MustCommand("port", "getMtu", Shape{PortArg("port"), U32Out("mtu")}, (*driver.Dev).GetPortMTU, "")

	if res := Invoke(dev, setMtu, []string{"3", "2000"}); res.Status != driver.OK || len(res.Outputs) != 0 {
		t.Fatalf("setMtu = %+v", res)
	}
	res := Invoke(dev, getMtu, []string{"3"})
	if res.Status != driver.OK || len(res.Outputs) != 1 || res.Outputs[0].Uint() != 2048 {
		t.Fatalf("getMtu = %+v", res)
	}
	if res.Outputs[0].Name != "mtu" || res.Outputs[0].Kind != KindU32Out {
		t.Errorf("output = %+v", res.Outputs[0])
	}

	// Driver rejections are results, not syntax errors
	res = Invoke(dev, setMtu, []string{"3", "0"})
	if res.Syntax || res.Status != driver.BadParam {
		t.Errorf("setMtu 3 0 = %+v, want driver BadParam", res)
	}
}

func TestInvoke_Builtin(t *testing.T) {
	cmd := NewBuiltin("", "noop", 0, nopBuiltin, "")
	if res := Invoke(newTestDev(t, "Topaz"), cmd, nil); res.Status != driver.Fail {
		t.Errorf("Invoke(builtin) = %+v, want Fail", res)
	}
}

func TestFormatResult(t *testing.T) {
	getMtu := &Command{Module: "port", Sub: "getMtu"}
	out := func(vals ...uint32) []Value {
		var vs []Value
		for _, v := range vals {
			vs = append(vs, Value{Kind: KindU32Out, v: v})
		}
		return vs
	}

	tests := []struct {
		name string
		res  Result
		want []string
	}{
		{
			name: "silent success",
			res:  Result{Status: driver.OK},
			want: nil,
		},
		{
			name: "single output",
			res:  Result{Status: driver.OK, Outputs: out(1522)},
			want: []string{"getMtu value: 0x5f2"},
		},
		{
			name: "several outputs",
			res:  Result{Status: driver.OK, Outputs: out(1, 0x80000002)},
			want: []string{"value1: 0x1 value2: 0x80000002"},
		},
		{
			name: "not supported",
			res:  Result{Status: driver.NotSupported},
			want: []string{"Warning: port getMtu is not supported on this device"},
		},
		{
			name: "no such item",
			res:  Result{Status: driver.NoSuch},
			want: []string{"port getMtu: no such item"},
		},
		{
			name: "failure",
			res:  Result{Status: driver.BadParam},
			want: []string{"Error ret[-4: bad param]"},
		},
		{
			name: "feature not enabled",
			res:  Result{Status: driver.FeatureNotEnabled},
			want: []string{"Error ret[-13: feature not enabled]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FormatResult(getMtu, tt.res)); diff != "" {
				t.Errorf("FormatResult() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
