package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igtracker/pkg/auth"
)

// secretNames maps the CLI-facing names onto stored secret names
var secretNames = map[string]string{
	"apify-token":  auth.SecretApifyToken,
	"ftp-password": auth.SecretFTPPassword,
}

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored secrets",
	Long: `Manage the secrets the tracker needs at runtime.

Secrets are stored in the system keychain when one is available. Without a
keychain, set them as environment variables instead:
  IGTRACKER_APIFY_TOKEN
  IGTRACKER_FTP_PASSWORD

Known secret names: apify-token, ftp-password`,
}

// authSetCmd represents the auth set command
var authSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a secret in the system keychain",
	Example: `  # Store the Apify API token (prompted, input hidden)
  igtracker auth set apify-token

  # Store the FTP password
  igtracker auth set ftp-password`,
	Args: cobra.ExactArgs(1),
	Run:  runAuthSet,
}

// authShowCmd represents the auth show command
var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show which secrets are stored (values masked)",
	Args:  cobra.NoArgs,
	Run:   runAuthShow,
}

// authDeleteCmd represents the auth delete command
var authDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored secret",
	Args:  cobra.ExactArgs(1),
	Run:   runAuthDelete,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authDeleteCmd)
}

func resolveSecretName(arg string) string {
	name, ok := secretNames[arg]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown secret %q (known: apify-token, ftp-password)\n", arg)
		os.Exit(1)
	}
	return name
}

func runAuthSet(cmd *cobra.Command, args []string) {
	name := resolveSecretName(args[0])

	value, err := promptSecret(fmt.Sprintf("Value for %s: ", args[0]))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read input:", err)
		os.Exit(1)
	}
	if value == "" {
		fmt.Fprintln(os.Stderr, "empty value, nothing stored")
		os.Exit(1)
	}

	manager := auth.NewManager()
	if err := manager.Store(&auth.Secret{Name: name, Value: value}); err != nil {
		fmt.Fprintln(os.Stderr, "failed to store secret:", err)
		os.Exit(1)
	}

	fmt.Printf("Stored %s (%s)\n", args[0], auth.MaskValue(value))
}

func runAuthShow(cmd *cobra.Command, args []string) {
	manager := auth.NewManager()

	for _, cliName := range []string{"apify-token", "ftp-password"} {
		name := secretNames[cliName]
		secret, err := manager.Retrieve(name)
		if err != nil {
			fmt.Printf("%-14s (not set)\n", cliName)
			continue
		}
		fmt.Printf("%-14s %s\n", cliName, auth.MaskValue(secret.Value))
	}
}

func runAuthDelete(cmd *cobra.Command, args []string) {
	name := resolveSecretName(args[0])

	manager := auth.NewManager()
	if err := manager.Delete(name); err != nil {
		fmt.Fprintln(os.Stderr, "failed to delete secret:", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted %s\n", args[0])
}

// promptSecret reads a value without echoing when stdin is a terminal
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		value, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(value)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
