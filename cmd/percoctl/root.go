package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"faceenroll/internal/config"
	"faceenroll/internal/logging"
	"faceenroll/internal/perco"
)

var (
	verbose bool
	cfg     config.App
)

var rootCmd = &cobra.Command{
	Use:   "percoctl",
	Short: "Inspect and update Perco biometrics from the command line",
	Long: `percoctl talks to the same Perco server and employee directory as the
enrollment web service. It reads its settings from the environment or a .env
file in the working directory.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
	cfg = config.Load()
}

func newPercoClient(ctx context.Context) (*perco.Client, error) {
	level := "error"
	if verbose {
		level = "debug"
	}
	log := logging.New(os.Stderr, level)
	return perco.New(ctx, perco.Config{
		BaseURL:     cfg.Perco.BaseURL(),
		Login:       cfg.Perco.Login,
		Password:    cfg.Perco.Password,
		Timeout:     cfg.Perco.Timeout,
		ReauthOn401: cfg.Perco.ReauthOn401,
	}, perco.WithLogger(log))
}

// printJSON pretty-prints raw JSON, falling back to the raw bytes.
func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		_, err = w.Write(append(raw, '\n'))
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
