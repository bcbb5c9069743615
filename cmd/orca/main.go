package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "orca",
		Short:         "Pipeline metadata tasks: managed service accounts and write verification",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCommand(), newStubCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
