package main

import (
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List access-control devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newPercoClient(cmd.Context())
		if err != nil {
			return err
		}
		devices, err := client.Devices(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), devices)
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
