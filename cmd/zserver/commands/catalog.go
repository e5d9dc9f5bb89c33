package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewCatalogCommand creates the catalog command
func NewCatalogCommand() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the service catalog",
		Long:  "Authenticate and display the endpoints in the scoped service catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			if !client.IsAuthenticated() {
				if err := client.Authenticate(ctx); err != nil {
					return fmt.Errorf("failed to authenticate: %w", err)
				}
			}

			catalog := client.Catalog()
			if catalog == nil {
				fmt.Println("No service catalog available")

				return nil
			}

			type endpointRow struct {
				Type      string `json:"type" yaml:"type"`
				Region    string `json:"region,omitempty" yaml:"region,omitempty"`
				PublicURL string `json:"public_url,omitempty" yaml:"public_url,omitempty"`
			}

			var rows []endpointRow

			for _, serviceType := range catalog.ServiceTypes() {
				endpoints := catalog.Endpoints(serviceType)
				if region != "" {
					endpoints, err = catalog.EndpointsInRegion(serviceType, region)
					if err != nil {
						return err
					}
				}

				for _, endpoint := range endpoints {
					rows = append(rows, endpointRow{
						Type:      serviceType,
						Region:    endpoint.Region,
						PublicURL: endpoint.PublicURL,
					})
				}
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return renderJSON(rows)
			case OutputFormatYAML:
				return renderYAML(rows)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Type", "Region", "Public URL")

				for _, row := range rows {
					_ = table.Append(row.Type, orNotAvailable(row.Region), orNotAvailable(row.PublicURL))
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "only show endpoints in this region")

	return cmd
}
