package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tectonic/internal/tectonic"
)

func newPutCmd(opts *rootOptions) *cobra.Command {
	var (
		tenant string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Store a blob from a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			co, err := openStore(opts)
			if err != nil {
				return err
			}
			defer co.Close()

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			id, err := co.PutBlob(tectonic.TenantID(tenant), f)
			if err != nil {
				return err
			}
			fmt.Printf("Blob stored successfully. ID: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant id")
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the file to store")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
