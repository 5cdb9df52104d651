package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Identity    struct {
		Username string `json:"username"`
		RoleName string `json:"role_name"`
		IsAdmin  bool   `json:"is_admin"`
	} `json:"identity"`
}

func newLoginCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and save the session token to the active profile",
		Example: `  # Log in as the registry admin (password prompted)
  registry login --username admin

  # Platform accounts authenticate with their current access-key secret
  registry login --username acme-corp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(string(raw))
			}

			client := clientFromCmd(cmd)
			var resp loginResponse
			err := client.Do(cmd.Context(), "POST", "/v1/auth/login", map[string]string{
				"username": username,
				"password": password,
			}, &resp)
			if err != nil {
				return err
			}

			if err := saveProfileToken(client.Host, resp.AccessToken); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", resp.Identity.Username, resp.Identity.RoleName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (platform account or admin)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password or access-key secret (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the current token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := clientFromCmd(cmd)
			var identity struct {
				Username string `json:"username"`
				RoleName string `json:"role_name"`
				IsAdmin  bool   `json:"is_admin"`
			}
			if err := client.Do(cmd.Context(), "GET", "/v1/auth/me", nil, &identity); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), identity)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", identity.Username, identity.RoleName)
			return nil
		},
	}
}
