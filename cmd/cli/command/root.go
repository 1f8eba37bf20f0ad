package command

// root.go defines the root command and the global flags.

import (
	"fmt"
	"os"
	"time"

	"github.com/maho-na510/aquarium-visit-log/cmd/cli/authentication"
	"github.com/maho-na510/aquarium-visit-log/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8080/api/v1"

var apiURL string // Global flag for API server URL

var rootCmd = &cobra.Command{
	Use:   "aquarium",
	Short: "aquarium - command line client for the aquarium visit log",
	Long: `aquarium talks to the aquarium visit log API. Use it to:
- Browse, search and find aquariums near a location
- See the rankings (most visited, highest rated, trending, ...)
- Manage your wishlist

Use "aquarium [command] --help" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	defaultURL := defaultAPIURL
	if v := os.Getenv("AQUARIUM_API_URL"); v != "" {
		defaultURL = v
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API base URL (env AQUARIUM_API_URL)")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)
	rootCmd.AddCommand(aquariumCmd, rankingCmd, wishlistCmd)
}

// GetClient returns a client that sends the stored session when there is one.
func GetClient() *client.HTTPClient {
	httpClient := client.NewHTTPClient(apiURL)
	creds, err := authentication.GetTokens()
	if err == nil && creds != nil && !creds.Expired(time.Now()) {
		httpClient.SetToken(creds.Token)
	}
	return httpClient
}

// GetAuthenticatedClient fails when no valid session is stored.
func GetAuthenticatedClient() (*client.HTTPClient, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}
	if creds == nil || creds.Token == "" {
		return nil, fmt.Errorf("not logged in, run \"aquarium login\" first")
	}
	if creds.Expired(time.Now()) {
		return nil, fmt.Errorf("session expired, run \"aquarium login\" again")
	}

	httpClient := client.NewHTTPClient(apiURL)
	httpClient.SetToken(creds.Token)
	return httpClient, nil
}
