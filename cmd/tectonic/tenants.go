package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tectonic/internal/tectonic"
)

func newRegisterTenantCmd(opts *rootOptions) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "register-tenant",
		Short: "Register a new tenant",
		Long: "Register a tenant so blobs can be stored under it. " +
			"Registering an existing tenant is a no-op.",
		RunE: func(cmd *cobra.Command, args []string) error {
			co, err := openStore(opts)
			if err != nil {
				return err
			}
			defer co.Close()

			if err := co.RegisterTenant(tectonic.TenantID(tenant)); err != nil {
				return err
			}
			fmt.Printf("Tenant %q registered successfully\n", tenant)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant id")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func newListTenantsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-tenants",
		Short: "List all registered tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			co, err := openStore(opts)
			if err != nil {
				return err
			}
			defer co.Close()

			tenants, err := co.ListTenants()
			if err != nil {
				return err
			}
			fmt.Println("Registered tenants:")
			for _, tenant := range tenants {
				fmt.Printf("- %s\n", tenant)
			}
			return nil
		},
	}
}
