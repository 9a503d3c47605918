package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akam1o/mcli/pkg/driver"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mcli\n")
			fmt.Fprintf(out, "  Version:    %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "\n")
			fmt.Fprintf(out, "Families: %s\n", strings.Join(driver.Families(), ", "))
		},
	}
}
