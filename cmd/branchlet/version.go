package main

import (
	"github.com/spf13/cobra"

	"github.com/Tsdevendra1/branchlet/internal/output"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			output.FromContext(cmd.Context()).Println(versionString())
		},
	}
}
