package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/outbound/backend"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"
)

var errUnhealthy = errors.New("backend is unhealthy")

type probeOptions struct {
	wait       bool
	maxElapsed time.Duration
}

func newProbeCmd() *cobra.Command {
	opts := probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the backend health once and print Healthy or Unhealthy",
		Long: "Issues the same GET {BACKEND_URL}/api/health the dashboard uses. " +
			"With --wait the check is retried with exponential backoff, which helps container start ordering.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Init()
			if err != nil {
				return err
			}

			waitCfg := cfg.ProbeWait
			if cmd.Flags().Changed("max-elapsed") {
				waitCfg.MaxElapsedTime = opts.maxElapsed
			}

			client := backend.NewClient(cfg.Backend.BackendBaseURL())

			return runProbe(cmd.Context(), cmd.OutOrStdout(), client, waitCfg, opts.wait)
		},
	}

	cmd.Flags().BoolVar(&opts.wait, "wait", false, "retry with exponential backoff until the backend is healthy")
	cmd.Flags().DurationVar(&opts.maxElapsed, "max-elapsed", 2*time.Minute, "give up waiting after this long")

	return cmd
}

func runProbe(ctx context.Context, out io.Writer, checker ports.BackendHealthChecker, cfg config.ProbeWait, wait bool) error {
	status := model.HealthStatusHealthy

	if err := checkBackend(ctx, checker, cfg, wait); err != nil {
		status = model.HealthStatusUnhealthy
	}

	fmt.Fprintln(out, status.Label())

	if status != model.HealthStatusHealthy {
		return errUnhealthy
	}

	return nil
}

func checkBackend(ctx context.Context, checker ports.BackendHealthChecker, cfg config.ProbeWait, wait bool) error {
	if !wait {
		_, err := checker.CheckHealth(ctx)

		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = cfg.InitialInterval
	expBackoff.Multiplier = cfg.Multiplier
	expBackoff.MaxInterval = cfg.MaxInterval

	operation := func() (*model.HealthProbe, error) {
		probe, err := checker.CheckHealth(ctx)
		if errors.Is(err, model.ErrBackendURLNotConfigured) {
			return nil, backoff.Permanent(err)
		}

		return probe, err
	}

	_, err := backoff.Retry(
		ctx,
		operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxElapsedTime(cfg.MaxElapsedTime),
	)

	return err
}
