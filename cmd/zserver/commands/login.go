package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/okoye/zabuza/pkg/zabuza"
	"github.com/okoye/zabuza/pkg/zclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		authURL    string
		username   string
		password   string
		tenantName string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the identity service",
		Long:  "Authenticate against a Keystone v2 endpoint and save the issued token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if authURL == "" {
				authURL = viper.GetString("auth_url")
			}

			if authURL == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Auth URL: ")
				authURL, _ = reader.ReadString('\n')
				authURL = strings.TrimSpace(authURL)
			}

			if authURL == "" {
				return ErrAuthURLRequired
			}

			if username == "" {
				username = viper.GetString("username")
			}

			if username == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Username: ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if username == "" {
				return ErrUsernameRequired
			}

			if password == "" {
				password = viper.GetString("password")
			}

			if password == "" {
				fmt.Print("Password: ")

				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				password = string(bytePassword)

				fmt.Println()
			}

			if tenantName == "" {
				tenantName = viper.GetString("tenant_name")
			}

			client, err := zclient.New(&zabuza.Config{
				AuthURL:    authURL,
				Username:   username,
				Password:   password,
				TenantName: tenantName,
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ctx := context.Background()

			if err := client.Authenticate(ctx); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			token := client.Token()

			if err := saveSession(authURL, username, tenantName, token); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			identity := client.Identity()
			if identity != nil {
				fmt.Printf("Logged in as %s\n", identity.Name)
			} else {
				fmt.Println("Logged in")
			}

			fmt.Printf("Token expires at %s\n", token.Expires.Format("2006-01-02 15:04:05 MST"))

			return nil
		},
	}

	cmd.Flags().StringVar(&authURL, "auth-url", "", "Keystone v2 auth URL")
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted if not provided)")
	cmd.Flags().StringVar(&tenantName, "tenant", "", "tenant name")

	return cmd
}
