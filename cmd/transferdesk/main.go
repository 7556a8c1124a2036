package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "transferdesk",
	Short: "Transferdesk player transfer service",
	Long:  "Transferdesk manages player-to-team transfers for a community chat server: job offers with accept/decline prompts, roster role changes, transfer announcements, and an append-only transfer ledger.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/transferdesk.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
