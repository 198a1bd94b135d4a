package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"faceenroll/internal/directory"
	"faceenroll/internal/enroll"
	"faceenroll/internal/store"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <iin>",
	Short: "Resolve an IIN to a directory user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !enroll.ValidIIN(args[0]) {
			return fmt.Errorf("%s: %q", enroll.MsgIINInvalid, args[0])
		}
		db, err := store.NewDB(cfg.Database)
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return fmt.Errorf("directory: %w", err)
		}
		defer db.Close()

		repo := directory.NewRepository(db.Client, cfg.Database.Driver, cfg.Database.QueryTimeout)
		u, err := repo.Lookup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		raw, err := json.Marshal(u)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), raw)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
