package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/okoye/zabuza/cmd/zserver/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "zserver",
	Short: "OpenStack compute CLI",
	Long: `A command-line interface for managing OpenStack compute servers.

Authenticates against a Keystone v2 identity endpoint, resolves the compute
service from the catalog, and manages servers in the scoped tenant.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.zabuza/config.yml)")
	rootCmd.PersistentFlags().StringP("auth-url", "a", "", "Keystone v2 auth URL")
	rootCmd.PersistentFlags().StringP("username", "u", "", "username for password authentication")
	rootCmd.PersistentFlags().StringP("tenant", "t", "", "tenant name to scope the token to")
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("auth_url", rootCmd.PersistentFlags().Lookup("auth-url"))
	_ = viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
	_ = viper.BindPFlag("tenant_name", rootCmd.PersistentFlags().Lookup("tenant"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Environment variables the original deployments already export
	_ = viper.BindEnv("auth_url", "ZABUZA_AUTH_URL")
	_ = viper.BindEnv("username", "ZABUZA_USERNAME")
	_ = viper.BindEnv("password", "ZABUZA_PASSWORD")
	_ = viper.BindEnv("tenant_name", "ZABUZA_TENANT_NAME")

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewVerifyCommand())
	rootCmd.AddCommand(commands.NewCatalogCommand())
	rootCmd.AddCommand(commands.NewServersCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".zabuza")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ZABUZA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
