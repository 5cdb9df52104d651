package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type userListPayload struct {
	Items      []userPayload `json:"items"`
	TotalCount int64         `json:"total_count"`
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage principals",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersCreateCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	var regular bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List principals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/v1/users"
			if regular {
				path = "/v1/users/regular"
			}
			var resp userListPayload
			if err := clientFromCmd(cmd).Do(cmd.Context(), "GET", path, nil, &resp); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, u := range resp.Items {
				rows = append(rows, []string{u.ID, u.Username, u.Email})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "USERNAME", "EMAIL"}, rows)
		},
	}
	cmd.Flags().BoolVar(&regular, "regular", false, "List only regular (roleless) users")
	return cmd
}

func newUsersCreateCmd() *cobra.Command {
	var (
		username  string
		email     string
		firstName string
		lastName  string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a regular user record (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp userPayload
			err := clientFromCmd(cmd).Do(cmd.Context(), "POST", "/v1/users", map[string]string{
				"username":   username,
				"email":      email,
				"first_name": firstName,
				"last_name":  lastName,
			}, &resp)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s created (id %s)\n", resp.Username, resp.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
