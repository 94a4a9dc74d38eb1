package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tectonic/internal/tectonic"
)

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var (
		tenant string
		blob   string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := tectonic.ParseBlobID(blob)
			if err != nil {
				return err
			}

			co, err := openStore(opts)
			if err != nil {
				return err
			}
			defer co.Close()

			if err := co.DeleteBlob(tectonic.TenantID(tenant), id); err != nil {
				return err
			}
			fmt.Println("Blob deleted successfully")
			return nil
		},
	}

	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant id")
	cmd.Flags().StringVarP(&blob, "blob", "b", "", "blob id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("blob")

	return cmd
}
