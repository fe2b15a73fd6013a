package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trustbyte/client"
)

func registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}
			fmt.Println("Account created, run `trustbyte login` to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			session, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			path, err := client.DefaultSessionPath()
			if err != nil {
				return err
			}
			if err := client.SaveSession(path, session); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s <%s>\n", session.Name, session.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := client.DefaultSessionPath()
			if err != nil {
				return err
			}
			if err := client.ClearSession(path); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
