package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type keyPayload struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Secret     string    `json:"secret,omitempty"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	PlatformID string    `json:"platform_id"`
	Archived   bool      `json:"archived"`
}

type keyListPayload struct {
	Items      []keyPayload `json:"items"`
	TotalCount int64        `json:"total_count"`
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage access keys",
	}
	cmd.AddCommand(newKeysListCmd())
	cmd.AddCommand(newKeysIssueCmd())
	cmd.AddCommand(newKeysArchiveCmd())
	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visible access keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp keyListPayload
			if err := clientFromCmd(cmd).Do(cmd.Context(), "GET", "/v1/access-keys", nil, &resp); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, k := range resp.Items {
				status := "valid"
				if k.Archived {
					status = "archived"
				}
				rows = append(rows, []string{
					k.ID, k.Label, k.PlatformID,
					k.StartAt.Format(time.RFC3339), k.EndAt.Format(time.RFC3339), status,
				})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "LABEL", "PLATFORM", "START", "END", "STATUS"}, rows)
		},
	}
}

func newKeysIssueCmd() *cobra.Command {
	var platformID string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a new access key, rotating the platform account credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp keyPayload
			err := clientFromCmd(cmd).Do(cmd.Context(), "POST", "/v1/access-keys",
				map[string]string{"platform_id": platformID}, &resp)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Issued %s valid until %s\n", resp.Label, resp.EndAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Secret (shown once): %s\n", resp.Secret)
			return nil
		},
	}
	cmd.Flags().StringVar(&platformID, "platform", "", "Platform ID to issue the key for")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}

func newKeysArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <key-id>",
		Short: "Archive an access key immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFromCmd(cmd).Do(cmd.Context(), "DELETE", "/v1/access-keys/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "archived")
			return nil
		},
	}
}
