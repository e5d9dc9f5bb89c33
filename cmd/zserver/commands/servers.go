package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/okoye/zabuza/pkg/zabuza"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewServersCommand creates the servers command group
func NewServersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage compute servers",
		Long:  "List, inspect, create, and delete servers in the scoped tenant",
	}

	cmd.AddCommand(newServersListCommand())
	cmd.AddCommand(newServersGetCommand())
	cmd.AddCommand(newServersCreateCommand())
	cmd.AddCommand(newServersDeleteCommand())

	return cmd
}

func newServersListCommand() *cobra.Command {
	var (
		name   string
		status string
		flavor string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			opts := &zabuza.ServerListOptions{
				Name:   name,
				Status: status,
				Flavor: flavor,
				Limit:  limit,
			}

			servers, err := client.Servers().List(context.Background(), opts)
			if err != nil {
				return fmt.Errorf("failed to list servers: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return renderJSON(servers)
			case OutputFormatYAML:
				return renderYAML(servers)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Status", "Addresses")

				for i := range servers {
					server := &servers[i]
					_ = table.Append(server.ID, server.Name, orNotAvailable(server.Status), serverAddresses(server))
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by server name")
	cmd.Flags().StringVar(&status, "status", "", "filter by server status")
	cmd.Flags().StringVar(&flavor, "flavor", "", "filter by flavor")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")

	return cmd
}

func newServersGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get SERVER_ID",
		Short: "Show a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return ErrServerIDRequired
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			server, err := client.Servers().Get(context.Background(), zabuza.ByID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get server: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return renderJSON(server)
			case OutputFormatYAML:
				return renderYAML(server)
			default:
				created := NotAvailable
				if server.Created != nil {
					created = server.Created.Format("2006-01-02 15:04:05 MST")
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")
				_ = table.Append("ID", server.ID)
				_ = table.Append("Name", server.Name)
				_ = table.Append("Status", orNotAvailable(server.Status))
				_ = table.Append("Image", orNotAvailable(server.ImageRef))
				_ = table.Append("Flavor", orNotAvailable(server.FlavorRef))
				_ = table.Append("Tenant", orNotAvailable(server.TenantID))
				_ = table.Append("Addresses", serverAddresses(server))
				_ = table.Append("Created", created)

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}

	return cmd
}

func newServersCreateCommand() *cobra.Command {
	var (
		name          string
		imageRef      string
		flavorRef     string
		keyName       string
		securityGroup string
		zone          string
		userDataFile  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a server",
		Long:  "Request a new server; creation completes asynchronously on the compute service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			server := zabuza.NewServerForDeployment(imageRef, flavorRef, name)
			server.SecurityGroup = securityGroup
			server.AvailabilityZone = zone

			opts := &zabuza.ServerCreateOptions{KeyName: keyName}

			if userDataFile != "" {
				userData, err := os.ReadFile(userDataFile)
				if err != nil {
					return fmt.Errorf("failed to read user data file: %w", err)
				}

				opts.UserData = userData
			}

			if err := client.Servers().Create(context.Background(), server, opts); err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			fmt.Printf("Server creation accepted: %s\n", server.ID)

			if server.AdminPass != "" {
				fmt.Printf("Admin password: %s\n", server.AdminPass)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "server name")
	cmd.Flags().StringVar(&imageRef, "image", "", "image id or URL")
	cmd.Flags().StringVar(&flavorRef, "flavor", "", "flavor id or URL")
	cmd.Flags().StringVar(&keyName, "key-name", "", "keypair to inject")
	cmd.Flags().StringVar(&securityGroup, "security-group", "", "security group name")
	cmd.Flags().StringVar(&zone, "availability-zone", "", "availability zone")
	cmd.Flags().StringVar(&userDataFile, "user-data-file", "", "file with cloud-init user data")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("flavor")

	return cmd
}

func newServersDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete SERVER_ID [SERVER_ID...]",
		Short: "Delete servers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			refs := make([]zabuza.ServerRef, 0, len(args))
			for _, id := range args {
				refs = append(refs, zabuza.ByID(id))
			}

			if err := client.Servers().DeleteMany(context.Background(), refs...); err != nil {
				return fmt.Errorf("failed to delete servers: %w", err)
			}

			fmt.Printf("Deleted %d server(s)\n", len(refs))

			return nil
		},
	}

	return cmd
}
