package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the configured credentials",
		Long:  "Attempt authentication and report whether the configured credentials are valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			result := client.VerifyCredentials(context.Background())

			type verifyReport struct {
				OK     bool   `json:"ok" yaml:"ok"`
				Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
			}

			report := verifyReport{OK: result.OK}
			if result.Err != nil {
				report.Reason = result.Err.Error()
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return renderJSON(report)
			case OutputFormatYAML:
				return renderYAML(report)
			default:
				if result.OK {
					fmt.Println("Credentials verified")

					return nil
				}

				fmt.Println("Credentials rejected")

				entries := client.Diagnostics()
				if len(entries) == 0 {
					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Kind", "Detail")

				for _, entry := range entries {
					_ = table.Append(entry.Summary, entry.Detail)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}
