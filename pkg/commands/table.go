// Package commands is the command table of the switch shell: every driver
// call the shell exposes, with its argument shape, plus the builtins that
// format output or query the help documents.
package commands

import (
	"github.com/akam1o/mcli/pkg/cli"
	"github.com/akam1o/mcli/pkg/driver"
)

// Table returns the driver-backed commands. Each entry binds a Dev method
// to the shape its command line is parsed with.
func Table() []*cli.Command {
	type S = cli.Shape
	cmd := cli.MustCommand

	return []*cli.Command{
		// Register access
		cmd("", "rr", S{cli.U32("devAddr"), cli.U32("regAddr"), cli.U32Out("data")},
			(*driver.Dev).ReadRegister, "rr <devAddr> <regAddr>"),
		cmd("", "rw", S{cli.U32("devAddr"), cli.U32("regAddr"), cli.U32("data")},
			(*driver.Dev).WriteRegister, "rw <devAddr> <regAddr> <data>"),

		// Port control
		cmd("port", "setMtu", S{cli.PortArg("port"), cli.U32("mtu")},
			(*driver.Dev).SetPortMTU, "port setMtu <port> <mtu>"),
		cmd("port", "getMtu", S{cli.PortArg("port"), cli.U32Out("mtu")},
			(*driver.Dev).GetPortMTU, "port getMtu <port>"),
		cmd("port", "setDefaultVid", S{cli.PortArg("port"), cli.U16("vid")},
			(*driver.Dev).SetPortDefaultVID, "port setDefaultVid <port> <vid>"),
		cmd("port", "getDefaultVid", S{cli.PortArg("port"), cli.U32Out("vid")},
			(*driver.Dev).GetPortDefaultVID, "port getDefaultVid <port>"),
		cmd("port", "setEtherType", S{cli.PortArg("port"), cli.U16("etype")},
			(*driver.Dev).SetPortEtherType, "port setEtherType <port> <etype>"),
		cmd("port", "setForwardUnknown", S{cli.PortArg("port"), cli.Flag("en")},
			(*driver.Dev).SetPortForwardUnknown, "port setForwardUnknown <port> <en>"),
		cmd("port", "getLinkState", S{cli.PortArg("port"), cli.U32Out("link")},
			(*driver.Dev).GetPortLinkState, "port getLinkState <port>"),

		// Statistics
		cmd("stats", "getPortCounter", S{cli.PortArg("port"), cli.U32("counter"), cli.U32Out("upper"), cli.U32Out("lower")},
			(*driver.Dev).GetPortCounter, "stats getPortCounter <port> <counter>"),

		// QoS and LEDs
		cmd("qos", "setQueueWeights", S{cli.PortArg("port"), cli.U32("w0"), cli.U32("w1"), cli.U32("w2"), cli.U32("w3")},
			(*driver.Dev).SetQueueWeights, "qos setQueueWeights <port> <w0> <w1> <w2> <w3>"),
		cmd("led", "setMode", S{cli.PortArg("port"), cli.U32("led"), cli.U32("mode")},
			(*driver.Dev).SetLEDMode, "led setMode <port> <led> <mode>"),
		cmd("led", "getMode", S{cli.PortArg("port"), cli.U32("led"), cli.U32Out("mode")},
			(*driver.Dev).GetLEDMode, "led getMode <port> <led>"),

		// Address translation unit
		cmd("atu", "addEntry", S{cli.Options("atuEntry")},
			(*driver.Dev).AddATUEntry, "atu addEntry [-macAddr <mac>] [-fid <fid>] [-portVec {p0 p1 ...}] [-entryState <state>] [-trunkMember <en>]"),
		cmd("atu", "delEntry", S{cli.MACArg("macAddr"), cli.U32("fid")},
			(*driver.Dev).DelATUEntry, "atu delEntry <macAddr> <fid>"),
		cmd("atu", "flushAll", S{},
			(*driver.Dev).FlushATU, "atu flushAll"),
		cmd("atu", "getCount", S{cli.U32Out("count")},
			(*driver.Dev).ATUCount, "atu getCount"),

		// VLAN translation unit
		cmd("vlan", "addEntry", S{cli.U32("vid"), cli.U32("fid"), cli.BitArray("memberTag", 0)},
			(*driver.Dev).AddVTUEntry, "vlan addEntry <vid> <fid> {memberTag ...}"),
		cmd("vlan", "delEntry", S{cli.U32("vid")},
			(*driver.Dev).DelVTUEntry, "vlan delEntry <vid>"),
		cmd("vlan", "exists", S{cli.U32("vid"), cli.U32Out("exists")},
			(*driver.Dev).VTUExists, "vlan exists <vid>"),

		// Trunking
		cmd("trunk", "setMask", S{cli.U32("maskNum"), cli.BitArray("mask", 0), cli.Flag("hash")},
			(*driver.Dev).SetTrunkMask, "trunk setMask <maskNum> {bit ...} <hash>"),

		// TCAM
		cmd("tcam", "setIpv4Match", S{cli.U32("entry"), cli.IPv4("srcIp"), cli.IPv4("dstIp")},
			(*driver.Dev).SetTCAMIPv4Match, "tcam setIpv4Match <entry> <srcIp> <dstIp>"),
		cmd("tcam", "setIpv6Match", S{cli.U32("entry"), cli.IPv6("srcIp")},
			(*driver.Dev).SetTCAMIPv6Match, "tcam setIpv6Match <entry> <srcIp>"),

		// PTP
		cmd("ptp", "setEnable", S{cli.Flag("en")},
			(*driver.Dev).SetPTPEnable, "ptp setEnable <en>"),
		cmd("ptp", "setTime", S{cli.U32("timeArray"), cli.U32("domain"), cli.U64("ns")},
			(*driver.Dev).SetPTPTime, "ptp setTime <timeArray> <domain> <ns>"),

		// System
		cmd("sys", "setCpuPort", S{cli.PortArg("port")},
			(*driver.Dev).SetCPUPort, "sys setCpuPort <port>"),
		cmd("sys", "getCpuPort", S{cli.U32Out("port")},
			(*driver.Dev).GetCPUPort, "sys getCpuPort"),
		cmd("sem", "enable", S{},
			(*driver.Dev).EnableSemaphore, "sem enable"),
		cmd("sem", "disable", S{},
			(*driver.Dev).DisableSemaphore, "sem disable"),
	}
}

// Register fills reg with the driver commands, the display and help
// builtins and the session commands.
func Register(reg *cli.Registry, version string) error {
	var all []*cli.Command
	all = append(all, Table()...)
	all = append(all, Builtins(version)...)
	all = append(all, cli.SessionCommands()...)
	for _, c := range all {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
