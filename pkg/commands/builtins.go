package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akam1o/mcli/pkg/cli"
	"github.com/akam1o/mcli/pkg/driver"
	"github.com/akam1o/mcli/pkg/history"
)

const defaultHistoryCount = 20

// Builtins returns the commands that run through the shell: help and API
// lookup, history and the formatted display commands.
func Builtins(version string) []*cli.Command {
	return []*cli.Command{
		cli.NewBuiltin("", "help", 0, helpCommand, "help [module [subcommand]]"),
		cli.NewBuiltin("", "search", 1, searchCommand, "search <text>"),
		cli.NewBuiltin("", "man", 1, manCommand, "man <api>"),
		cli.NewBuiltin("", "history", 0, historyCommand, "history [count]"),
		cli.NewBuiltin("", "getBus", 0, getBusCommand, "getBus"),
		cli.NewBuiltin("", "getVersion", 0, versionCommand(version), "getVersion"),
		cli.NewBuiltin("port", "getStatus", 1, portStatusCommand, "port getStatus <port>"),
		cli.NewBuiltin("atu", "dump", 0, atuDumpCommand, "atu dump"),
	}
}

// summary is the one-line description of c shown in command lists.
func summary(sh *cli.Shell, c *cli.Command) string {
	if e, ok := sh.Help().Lookup(c.Module, c.Sub); ok && e.Help != "" {
		return e.Help
	}
	if c.Help != "" {
		return c.Help
	}
	return c.Name()
}

// showField reports whether a display command prints field. Without a
// help entry for the command every field is shown.
func showField(sh *cli.Shell, module, sub, field string) bool {
	if _, ok := sh.Help().Lookup(module, sub); !ok {
		return true
	}
	return sh.Help().CheckValidItem(module, sub, field)
}

func helpCommand(_ context.Context, sh *cli.Shell, args []string) driver.Status {
	reg := sh.Registry()

	switch len(args) {
	case 0:
		sh.Report("Commands:")
		for _, c := range reg.Commands("") {
			sh.Reportf("  %s", summary(sh, c))
		}
		sh.Report("Modules:")
		sh.Reportf("  %s", strings.Join(reg.Modules(), " "))
		sh.Report("Type 'help <module>' for the commands of a module")
		return driver.OK

	case 1:
		if c, ok := reg.LookupDirect(args[0]); ok {
			sh.Report(sh.Usage(c))
			return driver.OK
		}
		if !reg.IsModule(args[0]) {
			return driver.NoSuch
		}
		for _, c := range reg.Commands(args[0]) {
			sh.Reportf("  %s", summary(sh, c))
		}
		return driver.OK

	default:
		c, ok := reg.Lookup(args[0], args[1])
		if !ok {
			return driver.NoSuch
		}
		sh.Report(sh.Usage(c))
		return driver.OK
	}
}

func searchCommand(_ context.Context, sh *cli.Shell, args []string) driver.Status {
	apis := sh.APIDoc()
	if apis == nil {
		sh.Report("No API document loaded")
		return driver.Fail
	}
	found := apis.Search(args[0])
	if len(found) == 0 {
		return driver.NoSuch
	}
	for _, a := range found {
		sh.Reportf("  %s", a.Name)
	}
	return driver.OK
}

func manCommand(_ context.Context, sh *cli.Shell, args []string) driver.Status {
	apis := sh.APIDoc()
	if apis == nil {
		sh.Report("No API document loaded")
		return driver.Fail
	}
	a, ok := apis.Man(args[0])
	if !ok {
		return driver.NoSuch
	}
	sh.Report(a.Name)
	sh.Reportf("  %s", a.Doc)
	return driver.OK
}

func historyCommand(ctx context.Context, sh *cli.Shell, args []string) driver.Status {
	store := sh.History()
	if store == nil {
		sh.Report("Command history is disabled; set history.path in the configuration")
		return driver.Fail
	}

	limit := defaultHistoryCount
	if len(args) > 0 {
		n, err := cli.CoerceU32(args[0])
		if err != nil {
			sh.Reportf("Syntax Error: %v", err)
			return driver.BadParam
		}
		limit = int(n)
	}

	entries, err := store.List(ctx, &history.ListOptions{Limit: limit})
	if err != nil {
		sh.Logger().Warn("Failed to list history", slog.String("error", err.Error()))
		sh.Reportf("Cannot read history: %v", err)
		return driver.Fail
	}

	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprint(e.Status),
			e.Source,
			e.Line,
		})
	}
	var b strings.Builder
	if err := formatTable(&b, []string{"#", "Time", "Status", "Source", "Command"}, rows); err != nil {
		return driver.Fail
	}
	sh.Report(b.String())
	return driver.OK
}

func getBusCommand(_ context.Context, sh *cli.Shell, _ []string) driver.Status {
	info := sh.Session().Dev().Info()
	if info.Bus == driver.BusSMIMultiChip {
		sh.Reportf("Bus: %s (base address 0x%x)", info.Bus, info.BaseAddr)
	} else {
		sh.Reportf("Bus: %s", info.Bus)
	}
	return driver.OK
}

func versionCommand(version string) cli.BuiltinFunc {
	return func(_ context.Context, sh *cli.Shell, _ []string) driver.Status {
		dev := sh.Session().Dev()
		fam := dev.Info().Family
		sh.Reportf("MCLI version %s", version)
		sh.Reportf("Device: %s (id 0x%04x, %d ports)", fam.Name, fam.DeviceID, dev.Ports())
		return driver.OK
	}
}

func portStatusCommand(_ context.Context, sh *cli.Shell, args []string) driver.Status {
	port, err := cli.CoercePort(args[0])
	if err != nil {
		sh.Reportf("Syntax Error: %v", err)
		return driver.BadParam
	}
	ps, st := sh.Session().Dev().GetPortStatus(port)
	if st != driver.OK {
		return st
	}

	link, duplex := "down", "half"
	if ps.Link {
		link = "up"
	}
	if ps.FullDuplex {
		duplex = "full"
	}
	fields := []struct {
		name  string
		value string
	}{
		{"link", link},
		{"duplex", duplex},
		{"speed", fmt.Sprintf("%d Mbps", ps.SpeedMbps)},
		{"mtu", fmt.Sprint(ps.MTU)},
		{"defaultVid", fmt.Sprintf("0x%x", ps.DefaultVID)},
	}

	sh.Reportf("Port %d:", port)
	for _, f := range fields {
		if showField(sh, "port", "getStatus", f.name) {
			sh.Reportf("  %-11s %s", f.name+":", f.value)
		}
	}
	return driver.OK
}

func atuDumpCommand(_ context.Context, sh *cli.Shell, _ []string) driver.Status {
	entries := sh.Session().Dev().ATUEntries()

	columns := []struct {
		name   string
		format func(driver.ATUEntry) string
	}{
		{"macAddr", func(e driver.ATUEntry) string { return e.MAC.String() }},
		{"fid", func(e driver.ATUEntry) string { return fmt.Sprint(e.FID) }},
		{"portVec", func(e driver.ATUEntry) string { return formatVector(e.PortVec) }},
		{"entryState", func(e driver.ATUEntry) string { return fmt.Sprintf("0x%x", e.EntryState) }},
		{"trunkMember", func(e driver.ATUEntry) string { return fmt.Sprint(e.TrunkMember) }},
	}

	var headers []string
	var keep []int
	for i, c := range columns {
		if showField(sh, "atu", "dump", c.name) {
			headers = append(headers, c.name)
			keep = append(keep, i)
		}
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := make([]string, 0, len(keep))
		for _, i := range keep {
			row = append(row, columns[i].format(e))
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	if err := formatTable(&b, headers, rows); err != nil {
		return driver.Fail
	}
	sh.Report(b.String())
	sh.Reportf("Total: %d entries", len(entries))
	return driver.OK
}
