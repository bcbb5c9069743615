package main

import (
	"github.com/spf13/cobra"

	"github.com/jervi/orca/internal/stubstore"
)

func newStubCommand() *cobra.Command {
	var addr string
	var admins []string

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve an in-memory metadata store and permission service for local runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := stubstore.New()
			for _, admin := range admins {
				store.PutPermission(admin, true)
			}
			return store.Handler().Start(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringSliceVar(&admins, "admin", nil, "users granted admin in the stub permission service")

	return cmd
}
