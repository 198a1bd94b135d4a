package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"faceenroll/internal/auth"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue an operator token for the diagnostic API endpoints",
	Long: `Signs a bearer token with OPERATOR_JWT_SECRET. Pass it as
"Authorization: Bearer <token>" to /api/devices and /api/users/<id>/bio.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.OperatorKey == "" {
			return errors.New("OPERATOR_JWT_SECRET is not set")
		}
		tok, exp, err := auth.Issue(args[0], auth.RoleOperator, cfg.OperatorKey, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
