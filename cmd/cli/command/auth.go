package command

import (
	"fmt"
	"time"

	"github.com/maho-na510/aquarium-visit-log/cmd/cli/authentication"
	"github.com/maho-na510/aquarium-visit-log/cmd/cli/command/client"
	"github.com/maho-na510/aquarium-visit-log/cmd/cli/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

// auth.go handles login, register, logout and whoami.

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.RegisterRequest
		req.User.Email, _ = cmd.Flags().GetString("email")
		req.User.Password, _ = cmd.Flags().GetString("password")
		req.User.Name, _ = cmd.Flags().GetString("name")
		req.User.Username, _ = cmd.Flags().GetString("username")
		req.User.PasswordConfirmation = req.User.Password

		response, err := client.NewHTTPClient(apiURL).Register(&req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if err := saveSession(response); err != nil {
			return err
		}

		color.Green("✓ Registered and logged in as %s (@%s)", response.User.Name, response.User.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")

		response, err := client.NewHTTPClient(apiURL).Login(&req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := saveSession(response); err != nil {
			return err
		}

		color.Green("✓ Logged in as %s (@%s)", response.User.Name, response.User.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("clear keyring: %w", err)
		}
		fmt.Println("✓ Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		user, err := httpClient.Me()
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("the server no longer accepts this session, run \"aquarium login\" again")
		}

		fmt.Printf("%s (@%s)\n", user.Name, user.Username)
		fmt.Printf("Email: %s\n", user.Email)
		if user.Role == models.RoleAdmin {
			color.Yellow("Role:  admin")
		}
		return nil
	},
}

func init() {
	registerCmd.Flags().StringP("email", "e", "", "Email address")
	registerCmd.Flags().StringP("password", "p", "", "Password (at least 6 characters)")
	registerCmd.Flags().StringP("name", "n", "", "Display name")
	registerCmd.Flags().StringP("username", "u", "", "Username (letters, digits and underscores)")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("username")

	loginCmd.Flags().StringP("email", "e", "", "Email address")
	loginCmd.Flags().StringP("password", "p", "", "Password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}

// saveSession stores the token together with its expiry from the exp claim.
func saveSession(response *dto.SessionResponse) error {
	if response.Token == "" {
		return fmt.Errorf("server did not return a session token")
	}

	creds := &authentication.StoredCredentials{
		Token:    response.Token,
		APIURL:   apiURL,
		Email:    response.User.Email,
		Username: response.User.Username,
	}
	if exp := tokenExpiry(response.Token); !exp.IsZero() {
		creds.ExpiresAt = exp.Unix()
	}
	if err := authentication.StoreTokens(creds); err != nil {
		return fmt.Errorf("save session to keyring: %w", err)
	}
	return nil
}

// tokenExpiry reads exp without verifying the signature; the server still checks it.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
