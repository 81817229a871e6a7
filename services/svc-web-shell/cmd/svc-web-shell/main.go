package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/runtime"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errUnhealthy) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "svc-web-shell",
		Short:         "HAÜSA ERP web shell",
		Long:          "Serves the HAÜSA ERP shell: header, navigation sidebar and the dashboard with its live system status.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve()
		},
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newVersionCmd(),
		newProbeCmd(),
	)

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the public and admin http servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	return runtime.New().Run()
}
