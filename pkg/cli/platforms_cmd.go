package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type platformPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type platformListPayload struct {
	Items      []platformPayload `json:"items"`
	TotalCount int64             `json:"total_count"`
}

type platformSetupPayload struct {
	Platform platformPayload `json:"platform"`
	Account  struct {
		Username string `json:"username"`
	} `json:"account"`
	InitialKey keyPayload `json:"initial_key"`
}

func newPlatformsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "Manage platform tenants",
	}
	cmd.AddCommand(newPlatformsListCmd())
	cmd.AddCommand(newPlatformsCreateCmd())
	cmd.AddCommand(newPlatformsDeleteCmd())
	return cmd
}

func newPlatformsListCmd() *cobra.Command {
	var candidates bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible platforms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/v1/platforms"
			if candidates {
				path = "/v1/platforms/share-candidates"
			}
			var resp platformListPayload
			if err := clientFromCmd(cmd).Do(cmd.Context(), "GET", path, nil, &resp); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, p := range resp.Items {
				rows = append(rows, []string{p.ID, p.Name})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "NAME"}, rows)
		},
	}
	cmd.Flags().BoolVar(&candidates, "share-candidates", false, "List platforms a project can be shared with")
	return cmd
}

func newPlatformsCreateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a platform with its account and first access key (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp platformSetupPayload
			err := clientFromCmd(cmd).Do(cmd.Context(), "POST", "/v1/platforms", map[string]string{"name": name}, &resp)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Platform %s created (id %s)\n", resp.Platform.Name, resp.Platform.ID)
			fmt.Fprintf(out, "Account username: %s\n", resp.Account.Username)
			fmt.Fprintf(out, "Access key %s secret (shown once): %s\n", resp.InitialKey.Label, resp.InitialKey.Secret)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Platform display name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPlatformsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <platform-id>",
		Short: "Delete a platform and everything it owns (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFromCmd(cmd).Do(cmd.Context(), "DELETE", "/v1/platforms/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}
