package main

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"tectonic/internal/tectonic"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blobs for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			co, err := openStore(opts)
			if err != nil {
				return err
			}
			defer co.Close()

			records, skipped, err := co.ListBlobs(tectonic.TenantID(tenant))
			if err != nil {
				return err
			}

			fmt.Printf("Blobs for tenant %q:\n", tenant)
			for _, md := range records {
				fmt.Printf("- ID: %s\n", md.BlobID)
				fmt.Printf("  Size: %s (%d bytes)\n", units.HumanSize(float64(md.Size)), md.Size)
				fmt.Printf("  Checksum: %s\n", md.Checksum)
				fmt.Printf("  Created: %s\n", md.CreatedAt.Format(time.RFC3339))
			}
			if skipped > 0 {
				fmt.Printf("Warning: skipped %d unreadable record(s)\n", skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant id")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}
