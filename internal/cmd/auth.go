package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/fitdesk/fitdesk-cli/api"
	"github.com/fitdesk/fitdesk-cli/users"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your FitDesk account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if loginEmail == "" || loginPassword == "" {
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Email").Value(&loginEmail),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&loginPassword),
			))
			if err := form.Run(); err != nil {
				return err
			}
		}

		user, err := a.manager.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Name(), user.Role)
		return nil
	},
}

var (
	registerEmail     string
	registerPassword  string
	registerFirstName string
	registerLastName  string
	registerRole      string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new FitDesk account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if registerEmail == "" || registerPassword == "" || registerFirstName == "" {
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Email").Value(&registerEmail),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&registerPassword),
				huh.NewInput().Title("First name").Value(&registerFirstName),
				huh.NewInput().Title("Last name").Value(&registerLastName),
				huh.NewSelect[string]().
					Title("I am a").
					Options(
						huh.NewOption("Coach", string(users.RoleCoach)),
						huh.NewOption("Client", string(users.RoleClient)),
					).
					Value(&registerRole),
			))
			if err := form.Run(); err != nil {
				return err
			}
		}
		if registerRole == "" {
			registerRole = string(users.RoleClient)
		}

		user, err := a.manager.Register(cmd.Context(), api.RegisterParams{
			Email:     registerEmail,
			Password:  registerPassword,
			FirstName: registerFirstName,
			LastName:  registerLastName,
			Role:      users.RoleType(registerRole),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome to FitDesk, %s!\n", user.Name())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		user, err := a.requireSession(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s\n", user.Name(), user.Email, user.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerFirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerLastName, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&registerRole, "role", "", "account role: coach or client")
}
