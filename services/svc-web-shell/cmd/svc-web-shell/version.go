package main

import (
	"fmt"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()

			version := config.ServiceVersion
			if version == "" {
				version = "dev"
			}

			fmt.Fprintf(out, "svc-web-shell %s\n", version)

			if config.CommitSHA != "" {
				fmt.Fprintf(out, "Commit: %s\n", config.CommitSHA)
			}
		},
	}
}
