package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/relcut/internal/keychain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the registry token",
	Long: `Store or clear the registry token in the OS credential store.

The token is optional: when none is stored (and RELCUT_REGISTRY_TOKEN is
unset), publishing falls back to the ambient docker credential keychain.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store the registry token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readToken()
		if err != nil {
			return err
		}
		if token == "" {
			return errors.New("empty token")
		}

		kc, err := keychain.New()
		if err != nil {
			return err
		}
		if err := kc.Set(registryTokenAccount, token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}

		fmt.Println("Token stored")
		return nil
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear-token",
	Short: "Remove the stored registry token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kc, err := keychain.New()
		if err != nil {
			return err
		}
		if err := kc.Delete(registryTokenAccount); err != nil {
			return fmt.Errorf("remove token: %w", err)
		}

		fmt.Println("Token cleared")
		return nil
	},
}

// readToken reads the token without echo on a terminal, or from stdin
// otherwise (for piping).
func readToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Registry token: ")
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authClearCmd)
	rootCmd.AddCommand(authCmd)
}
