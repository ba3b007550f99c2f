package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fitdesk/fitdesk-cli/coaching"
)

var (
	clientsQuery    string
	clientsStatus   string
	clientsPage     int
	clientsPageSize int
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage your client roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		svc := coaching.NewService(a.manager.API())
		resp, err := svc.List(cmd.Context(), coaching.ListParams{
			Page:     clientsPage,
			PageSize: clientsPageSize,
			Query:    clientsQuery,
			Status:   coaching.StatusType(clientsStatus),
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS")
		for _, c := range resp.Items {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n", c.ID, c.FirstName, c.LastName, c.Email, c.Status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d clients\n", len(resp.Items), resp.Total)
		return nil
	},
}

var clientsGetCmd = &cobra.Command{
	Use:   "get <client-id>",
	Short: "Show a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		c, err := coaching.NewService(a.manager.API()).Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s>\nstatus: %s\njoined: %s\n",
			c.FirstName, c.LastName, c.Email, c.Status, c.JoinedAt.Format("2006-01-02"))
		if c.LastCheckInAt != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "last check-in: %s\n", c.LastCheckInAt.Format("2006-01-02"))
		}
		return nil
	},
}

var (
	inviteEmail     string
	inviteFirstName string
	inviteLastName  string
)

var clientsInviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite a client to the platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		c, err := coaching.NewService(a.manager.API()).Invite(cmd.Context(), inviteEmail, inviteFirstName, inviteLastName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invited %s (%s)\n", c.Email, c.ID)
		return nil
	},
}

var clientsArchiveCmd = &cobra.Command{
	Use:   "archive <client-id>",
	Short: "Archive a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		if err := coaching.NewService(a.manager.API()).Archive(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Archived")
		return nil
	},
}

func init() {
	clientsListCmd.Flags().StringVar(&clientsQuery, "query", "", "search by name or email")
	clientsListCmd.Flags().StringVar(&clientsStatus, "status", "", "filter by status: active, pending, archived")
	clientsListCmd.Flags().IntVar(&clientsPage, "page", 1, "page number")
	clientsListCmd.Flags().IntVar(&clientsPageSize, "page-size", 20, "results per page")

	clientsInviteCmd.Flags().StringVar(&inviteEmail, "email", "", "client email")
	clientsInviteCmd.Flags().StringVar(&inviteFirstName, "first-name", "", "client first name")
	clientsInviteCmd.Flags().StringVar(&inviteLastName, "last-name", "", "client last name")
	_ = clientsInviteCmd.MarkFlagRequired("email")

	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsGetCmd)
	clientsCmd.AddCommand(clientsInviteCmd)
	clientsCmd.AddCommand(clientsArchiveCmd)
}
