package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fitdesk/fitdesk-cli/checkins"
)

var (
	checkinsClientID string
	checkinsPending  bool
	checkinsPage     int
	checkinsPageSize int
)

var checkinsCmd = &cobra.Command{
	Use:   "checkins",
	Short: "Submit and review check-ins",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var checkinsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List check-ins",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		resp, err := checkins.NewService(a.manager.API()).List(cmd.Context(), checkins.ListParams{
			Page:     checkinsPage,
			PageSize: checkinsPageSize,
			ClientID: checkinsClientID,
			Pending:  checkinsPending,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tWEIGHT\tENERGY\tREVIEWED")
		for _, c := range resp.Items {
			reviewed := "no"
			if c.ReviewedAt != nil {
				reviewed = c.ReviewedAt.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%.1fkg\t%d\t%s\n",
				c.ID, c.Date.Format("2006-01-02"), c.WeightKg, c.EnergyLevel, reviewed)
		}
		return w.Flush()
	},
}

var (
	submitWeight float64
	submitEnergy int
	submitNotes  string
	submitPhoto  string
)

var checkinsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit today's check-in",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		svc := checkins.NewService(a.manager.API())
		c, err := svc.Submit(cmd.Context(), checkins.SubmitParams{
			WeightKg:    submitWeight,
			EnergyLevel: submitEnergy,
			Notes:       submitNotes,
		})
		if err != nil {
			return err
		}

		if submitPhoto != "" {
			f, err := os.Open(submitPhoto)
			if err != nil {
				return err
			}
			defer f.Close()
			if c, err = svc.AttachPhoto(cmd.Context(), c.ID, filepath.Base(submitPhoto), f); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Check-in %s recorded\n", c.ID)
		return nil
	},
}

var reviewFeedback string

var checkinsReviewCmd = &cobra.Command{
	Use:   "review <checkin-id>",
	Short: "Leave feedback on a client's check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if _, err := a.requireSession(cmd.Context()); err != nil {
			return err
		}

		c, err := checkins.NewService(a.manager.API()).Review(cmd.Context(), args[0], reviewFeedback)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reviewed check-in %s\n", c.ID)
		return nil
	},
}

func init() {
	checkinsListCmd.Flags().StringVar(&checkinsClientID, "client", "", "filter by client ID")
	checkinsListCmd.Flags().BoolVar(&checkinsPending, "pending", false, "only check-ins awaiting review")
	checkinsListCmd.Flags().IntVar(&checkinsPage, "page", 1, "page number")
	checkinsListCmd.Flags().IntVar(&checkinsPageSize, "page-size", 20, "results per page")

	checkinsSubmitCmd.Flags().Float64Var(&submitWeight, "weight", 0, "body weight in kg")
	checkinsSubmitCmd.Flags().IntVar(&submitEnergy, "energy", 0, "energy level 1-5")
	checkinsSubmitCmd.Flags().StringVar(&submitNotes, "notes", "", "free-form notes")
	checkinsSubmitCmd.Flags().StringVar(&submitPhoto, "photo", "", "path to a progress photo")

	checkinsReviewCmd.Flags().StringVar(&reviewFeedback, "feedback", "", "feedback text")
	_ = checkinsReviewCmd.MarkFlagRequired("feedback")

	checkinsCmd.AddCommand(checkinsListCmd)
	checkinsCmd.AddCommand(checkinsSubmitCmd)
	checkinsCmd.AddCommand(checkinsReviewCmd)
}
