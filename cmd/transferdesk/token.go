package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/marceloprado/transferdesk/internal/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a service token and its bcrypt hash",
	Long:  "Generates a random service token for the platform adapter. Put the printed hash in the config (auth.service_token_hash) and give the plaintext token to the adapter.",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generating random bytes: %w", err)
	}
	plaintext := "tdk_" + base64.RawURLEncoding.EncodeToString(b)

	hash, err := auth.HashToken(plaintext)
	if err != nil {
		return err
	}

	fmt.Printf("token: %s\nhash:  %s\n", plaintext, hash)
	return nil
}
