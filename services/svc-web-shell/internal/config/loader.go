package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const DefaultEnvFile = ".env"

type Loader struct {
	cfg              *ServiceConfig
	out              io.Writer
	configSignalChan chan os.Signal
	reloadErrors     chan error
}

func NewLoader(cfg *ServiceConfig, out io.Writer) *Loader {
	return &Loader{
		cfg:              cfg,
		out:              out,
		configSignalChan: make(chan os.Signal, 1),
		reloadErrors:     make(chan error, 1),
	}
}

// WatchConfigSignals dumps the configuration on SIGUSR1 and re-validates it
// on SIGHUP. The backend address is resolved once and never reloaded.
func (l *Loader) WatchConfigSignals(ctx context.Context) <-chan error {
	signal.Notify(l.configSignalChan, syscall.SIGHUP, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(l.configSignalChan)
		defer close(l.reloadErrors)

		for {
			select {
			case <-ctx.Done():
				return

			case sig := <-l.configSignalChan:
				l.handleSignal(sig)
			}
		}
	}()

	return l.reloadErrors
}

func (l *Loader) handleSignal(sig os.Signal) {
	switch sig {
	case syscall.SIGHUP:
		l.reportReloadStatus(l.cfg.Validate())

	case syscall.SIGUSR1:
		l.DumpConfig()
	}
}

func (l *Loader) DumpConfig() {
	configJSON, err := json.MarshalIndent(l.cfg, "", "  ")
	if err != nil {
		fmt.Fprintf(l.out, "Error marshaling config: %v\n", err)

		return
	}

	fmt.Fprintf(l.out, "\n=== Configuration Dump ===\n%s\n=== End Configuration ===\n\n", string(configJSON))
}

func (l *Loader) reportReloadStatus(err error) {
	select {
	case l.reloadErrors <- err:
	default:
	}
}

// Init reads optional env files, then the process environment. Variables
// already set in the environment win over the files.
func Init(envFiles ...string) (*ServiceConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to load env file %s: %w", file, err)
		}
	}

	cfg := &ServiceConfig{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service configuration: %w", err)
	}

	return cfg, nil
}
