package auth

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/crucial707/screentime/cmd/cli/api"
	"github.com/crucial707/screentime/cmd/cli/config"
)

// InitAuth registers login, register and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), registerCmd(), logoutCmd())
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// bindCredentials adds --username/--password; missing values are prompted for.
func bindCredentials(cmd *cobra.Command, c *credentials) {
	cmd.Flags().StringVar(&c.Username, "username", "", "Username")
	cmd.Flags().StringVar(&c.Password, "password", "", "Password (prompted when omitted)")
}

func (c *credentials) prompt(in io.Reader, out io.Writer) error {
	if c.Username == "" {
		fmt.Fprint(out, "Username: ")
		fmt.Fscanln(in, &c.Username)
	}
	if c.Password == "" {
		fmt.Fprint(out, "Password: ")
		fmt.Fscanln(in, &c.Password)
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("username and password are required")
	}
	return nil
}

// loginCmd logs in and stores the session token locally.
func loginCmd() *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Screentime API",
		Long:  "Authenticate with the Screentime API and store a session token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.prompt(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}

			var loginResp struct {
				Token string `json:"token"`
			}
			if err := api.Call("POST", "/v1/auth/login", "", creds, &loginResp); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if loginResp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(loginResp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token stored locally.")
			return nil
		},
	}
	bindCredentials(cmd, &creds)
	return cmd
}

func registerCmd() *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.prompt(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
			if err := api.Call("POST", "/v1/auth/register", "", creds, nil); err != nil {
				return fmt.Errorf("failed to register user: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "User registered successfully! You can now login.")
			return nil
		},
	}
	bindCredentials(cmd, &creds)
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.RemoveToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}
