package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type projectPayload struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	OwnerPlatformID string `json:"owner_platform_id"`
}

type projectListPayload struct {
	Items      []projectPayload `json:"items"`
	TotalCount int64            `json:"total_count"`
}

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectsListCmd())
	cmd.AddCommand(newProjectsCreateCmd())
	cmd.AddCommand(newProjectsShareCmd())
	return cmd
}

func newProjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visible projects (owned and shared)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp projectListPayload
			if err := clientFromCmd(cmd).Do(cmd.Context(), "GET", "/v1/projects", nil, &resp); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, p := range resp.Items {
				rows = append(rows, []string{p.ID, p.Code, p.Name, p.OwnerPlatformID})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "CODE", "NAME", "OWNER"}, rows)
		},
	}
}

func newProjectsCreateCmd() *cobra.Command {
	var (
		code        string
		name        string
		description string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project owned by the calling platform",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp projectPayload
			err := clientFromCmd(cmd).Do(cmd.Context(), "POST", "/v1/projects", map[string]string{
				"code":        code,
				"name":        name,
				"description": description,
			}, &resp)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s created (id %s)\n", resp.Code, resp.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Unique project code")
	cmd.Flags().StringVar(&name, "name", "", "Project display name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsShareCmd() *cobra.Command {
	var (
		platformID string
		readOnly   bool
	)
	cmd := &cobra.Command{
		Use:   "share <project-id>",
		Short: "Share a project with another platform (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{
				"recipients": []map[string]interface{}{
					{"platform_id": platformID, "read_only": readOnly},
				},
			}
			var grants []map[string]interface{}
			err := clientFromCmd(cmd).Do(cmd.Context(), "POST", "/v1/projects/"+args[0]+"/share", body, &grants)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), grants)
			}
			scope := "read-write"
			if readOnly {
				scope = "read-only"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared with %s (%s)\n", platformID, scope)
			return nil
		},
	}
	cmd.Flags().StringVar(&platformID, "platform", "", "Recipient platform ID")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Grant read-only access")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}
