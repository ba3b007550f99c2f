package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fitdesk/fitdesk-cli/analytics"
)

var progressRange string

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Dashboard analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var analyticsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the coach dashboard summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		sum, err := analytics.NewService(a.manager.API()).Summary(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Active clients:    %d\n", sum.ActiveClients)
		fmt.Fprintf(out, "Pending check-ins: %d\n", sum.PendingCheckIns)
		fmt.Fprintf(out, "Adherence:         %.0f%%\n", sum.AdherencePct)
		return nil
	},
}

var analyticsProgressCmd = &cobra.Command{
	Use:   "progress <client-id>",
	Short: "Show a client's progress over time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		p, err := analytics.NewService(a.manager.API()).Progress(cmd.Context(), args[0], progressRange)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tWEIGHT\tADHERENCE")
		for _, pt := range p.Points {
			fmt.Fprintf(w, "%s\t%.1fkg\t%.0f%%\n", pt.Date.Format("2006-01-02"), pt.WeightKg, pt.AdherencePct)
		}
		return w.Flush()
	},
}

func init() {
	analyticsProgressCmd.Flags().StringVar(&progressRange, "range", "30d", "time range, e.g. 30d or 12w")

	analyticsCmd.AddCommand(analyticsSummaryCmd)
	analyticsCmd.AddCommand(analyticsProgressCmd)
}
