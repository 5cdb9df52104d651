// Package cli implements the registry command-line client.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{"error": err.Error()}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
				errObj["code"] = apiErr.Code
			}
			_ = json.NewEncoder(os.Stdout).Encode(errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host    string
		token   string
		output  string
		profile string
	)

	rootCmd := &cobra.Command{
		Use:           "registry",
		Short:         "Platform Registry CLI",
		Long:          "Command-line interface for the Platform Registry API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				// Config file is optional
				cfg = &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
			}
			p := cfg.ActiveProfile(profile)

			// Precedence: flag > env > profile > default
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("REGISTRY_HOST"); v != "" {
					host = v
				} else if p.Host != "" {
					host = p.Host
				}
			}
			if !cmd.Flags().Changed("token") {
				if v := os.Getenv("REGISTRY_TOKEN"); v != "" {
					token = v
				} else if p.Token != "" {
					token = p.Token
				}
			}
			if !cmd.Flags().Changed("output") && p.Output != "" {
				output = p.Output
			}
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			_ = cmd.Root().PersistentFlags().Set("host", host)
			_ = cmd.Root().PersistentFlags().Set("token", token)
			_ = cmd.Root().PersistentFlags().Set("output", output)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "Registry API host")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format: table or json")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Config profile to use")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newWhoAmICmd())
	rootCmd.AddCommand(newPlatformsCmd())
	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "registry %s (%s)\n", version, commit)
		},
	}
}

// clientFromCmd builds an API client from the root command's resolved flags.
func clientFromCmd(cmd *cobra.Command) *Client {
	host, _ := cmd.Root().PersistentFlags().GetString("host")
	token, _ := cmd.Root().PersistentFlags().GetString("token")
	return NewClient(host, token)
}
