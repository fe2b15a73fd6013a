package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trustbyte/client"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "trustbyte",
		Short:         "TrustByte - task board from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(rmCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newClient builds an API client without a session, for register and login.
func newClient() (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.APIBase), nil
}

// newAuthedClient builds an API client carrying the saved session.
func newAuthedClient() (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path, err := client.DefaultSessionPath()
	if err != nil {
		return nil, err
	}
	session, err := client.LoadSession(path)
	if err != nil {
		if err == client.ErrNoSession {
			return nil, fmt.Errorf("not logged in, run `trustbyte login` first")
		}
		return nil, err
	}
	return client.New(cfg.APIBase, client.WithSession(session)), nil
}
