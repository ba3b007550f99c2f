package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fitdesk/fitdesk-cli/plans"
)

var (
	plansType     string
	plansPage     int
	plansPageSize int
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Manage workout and diet plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		resp, err := plans.NewService(a.manager.API()).List(cmd.Context(), plans.ListParams{
			Page:     plansPage,
			PageSize: plansPageSize,
			Type:     plans.PlanType(plansType),
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tTYPE\tDAYS")
		for _, p := range resp.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Title, p.Type, len(p.Days))
		}
		return w.Flush()
	},
}

var plansGetCmd = &cobra.Command{
	Use:   "get <plan-id>",
	Short: "Show a plan day by day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		p, err := plans.NewService(a.manager.API()).Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", p.Title, p.Type)
		if p.Description != "" {
			fmt.Fprintln(out, p.Description)
		}
		for _, day := range p.Days {
			fmt.Fprintf(out, "\n%s\n", day.Label)
			for _, ex := range day.Exercises {
				fmt.Fprintf(out, "  %s %dx%d", ex.Name, ex.Sets, ex.Reps)
				if ex.Notes != "" {
					fmt.Fprintf(out, " (%s)", ex.Notes)
				}
				fmt.Fprintln(out)
			}
			for _, meal := range day.Meals {
				fmt.Fprintf(out, "  %s %dkcal\n", meal.Name, meal.Calories)
			}
		}
		return nil
	},
}

var assignClientID string

var plansAssignCmd = &cobra.Command{
	Use:   "assign <plan-id>",
	Short: "Assign a plan to a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		if err := plans.NewService(a.manager.API()).Assign(cmd.Context(), args[0], assignClientID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Assigned")
		return nil
	},
}

func init() {
	plansListCmd.Flags().StringVar(&plansType, "type", "", "filter by type: workout or diet")
	plansListCmd.Flags().IntVar(&plansPage, "page", 1, "page number")
	plansListCmd.Flags().IntVar(&plansPageSize, "page-size", 20, "results per page")

	plansAssignCmd.Flags().StringVar(&assignClientID, "client", "", "client ID to assign the plan to")
	_ = plansAssignCmd.MarkFlagRequired("client")

	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansGetCmd)
	plansCmd.AddCommand(plansAssignCmd)
}
