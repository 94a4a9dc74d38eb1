package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"tectonic/internal/tectonic"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	var (
		tenant string
		blob   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Retrieve a blob",
		Long: "Retrieve a blob's bytes, re-verifying the stored checksum. " +
			"Output goes to stdout unless --output is given.",
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

			reader, _, err := co.GetBlob(tectonic.TenantID(tenant), id)
			if err != nil {
				return err
			}
			defer reader.Close()

			var dst io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				dst = f
			}

			_, err = io.Copy(dst, reader)
			return err
		},
	}

	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant id")
	cmd.Flags().StringVarP(&blob, "blob", "b", "", "blob id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (defaults to stdout)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("blob")

	return cmd
}
