// Package cmd defines the fitdesk command tree.
package cmd

import (
	"context"
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fitdesk/fitdesk-cli/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fitdesk",
	Short: "Fitness coaching from the terminal",
	Long: `fitdesk is the command-line client for the FitDesk coaching platform.

Coaches manage their client roster, build and assign workout and diet
plans, review check-ins, and read dashboard analytics. Clients log
check-ins and view their assigned plans.

Authenticate once with 'fitdesk login'; the session is persisted and
refreshed automatically until you log out.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		displayAppName(config.New().GetAppName())
		return cmd.Help()
	},
}

// ExecuteContext runs the command tree with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(checkinsCmd)
	rootCmd.AddCommand(analyticsCmd)
}

func displayAppName(appName string) {
	banner := figure.NewFigure(appName, "cybermedium", true)
	banner.Print()
	fmt.Println()
}
