package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/httpserver"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print an argon2id hash for ADMIN_PASSWORD_HASH",
	Long:  "Read a password from the first line of stdin and print its argon2id hash.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return hashPassword(cmd.InOrStdin(), cmd.OutOrStdout(), httpserver.DefaultArgon2Params)
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func hashPassword(in io.Reader, out io.Writer, params httpserver.Argon2Params) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}
	hash, err := httpserver.HashPassword(password, params)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
