package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.session.Register(ctx, authName, authEmail, authPassword); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", a.session.State().User.Name)
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.session.Login(ctx, authEmail, authPassword); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", a.session.State().User.Name)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			state := a.session.State()
			if !state.IsAuthenticated {
				return errNotSignedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", state.User.Name, state.User.Email)
			return nil
		})
	},
}

var (
	authName     string
	authEmail    string
	authPassword string
)

func init() {
	registerCmd.Flags().StringVar(&authName, "name", "", "display name")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "email address")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "password (at least 6 characters)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringVar(&authEmail, "email", "", "email address")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}
