package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var bioCmd = &cobra.Command{
	Use:   "bio",
	Short: "Read or replace a user's biometric entries",
}

var bioGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show the biometric entries of a Perco user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		client, err := newPercoClient(cmd.Context())
		if err != nil {
			return err
		}
		bio, err := client.Bio(cmd.Context(), userID)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), bio)
	},
}

var bioSetCmd = &cobra.Command{
	Use:   "set <user-id> <image.jpg>",
	Short: "Replace the face template of a Perco user with a JPEG file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		photo, err := encodeImageFile(args[1])
		if err != nil {
			return err
		}
		client, err := newPercoClient(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := client.UpdateBio(cmd.Context(), userID, photo)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	bioCmd.AddCommand(bioGetCmd, bioSetCmd)
	rootCmd.AddCommand(bioCmd)
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

// encodeImageFile returns the file content as standard base64.
func encodeImageFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("image %s is empty", path)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
