package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/csviz/csviz/internal/creds"
)

func newLoginCmd() *cobra.Command {
	var registerFlag bool
	var emailFlag string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate and persist the session token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				fmt.Fprint(os.Stderr, "Username: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				username = strings.TrimSpace(line)
			}
			if username == "" {
				return fmt.Errorf("username required")
			}

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			client := newClient(cfg, store)
			var token string
			if registerFlag {
				token, err = client.Register(context.Background(), username, password, emailFlag)
			} else {
				token, err = client.Authenticate(context.Background(), username, password)
			}
			if err != nil {
				return err
			}
			if err := store.Set(creds.TokenKey, token); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Logged in as %s.\n", username)
			return nil
		},
	}

	cmd.Flags().BoolVar(&registerFlag, "register", false, "create a new account instead of logging in")
	cmd.Flags().StringVar(&emailFlag, "email", "", "email for registration (optional)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			if err := store.Remove(creds.TokenKey); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Logged out.")
			return nil
		},
	}
}

// readPassword prompts without echoing when stdin is a terminal, and
// falls back to a plain line read otherwise (piped input in scripts).
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
