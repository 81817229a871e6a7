package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases/commands"
	"golang.org/x/sync/errgroup"
)

type ServiceCtx struct {
	deps            *dependencies
	depOpts         []DependencyOption
	shutdownChannel chan os.Signal
	serverCtx       context.Context
	serverStopFunc  context.CancelFunc
	serverReady     chan struct{}

	group    *errgroup.Group
	groupCtx context.Context

	readyOnce   sync.Once
	mu          sync.RWMutex
	publicAddr  net.Addr
	adminAddr   net.Addr
	forcedAbort func()
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel: make(chan os.Signal, 1),
		forcedAbort:     func() { os.Exit(1) },
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run serves until a termination signal arrives or a server fails, then
// shuts down gracefully.
func (c *ServiceCtx) Run() error {
	defer c.markReady()

	if err := c.build(); err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	if err := c.startService(); err != nil {
		c.serverStopFunc()
		c.cleanup(context.Background())

		return fmt.Errorf("failed to start service: %w", err)
	}

	c.shutdownHook()
	c.monitorConfigChanges()

	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.groupCtx.Done():
	case <-c.shutdownChannel:
	}

	return c.shutdown()
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(c.depOpts...)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

func (c *ServiceCtx) startService() error {
	c.group, c.groupCtx = errgroup.WithContext(c.serverCtx)

	cfg := c.deps.config.PublicHTTPServer
	publicAddr := net.JoinHostPort(cfg.Host, strconv.FormatUint(uint64(cfg.Port), 10))

	publicListener, err := net.Listen("tcp", publicAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", publicAddr, err)
	}

	c.setAddr(&c.publicAddr, publicListener.Addr())
	c.serve("public", c.deps.infra.publicHttpServer, publicListener)

	if err := c.startAdminServer(); err != nil {
		_ = publicListener.Close()

		return err
	}

	c.startViewSweeper()
	c.markReady()

	return nil
}

// markReady releases WaitForServer callers, also when startup failed.
func (c *ServiceCtx) markReady() {
	if c.serverReady == nil {
		return
	}

	c.readyOnce.Do(func() {
		close(c.serverReady)
	})
}

func (c *ServiceCtx) startAdminServer() error {
	if c.deps.infra.adminHttpServer == nil {
		return nil
	}

	cfg := c.deps.config.AdminHTTPServer
	addr := net.JoinHostPort(cfg.Host, strconv.FormatUint(uint64(cfg.Port), 10))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on admin server %s: %w", addr, err)
	}

	c.setAddr(&c.adminAddr, listener.Addr())
	c.serve("admin", c.deps.infra.adminHttpServer, listener)

	return nil
}

func (c *ServiceCtx) serve(name string, server *http.Server, listener net.Listener) {
	c.deps.infra.logger.Info().
		Str("server", name).
		Str("address", listener.Addr().String()).
		Msg("starting the http server")

	c.group.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s http server error: %w", name, err)
		}

		return nil
	})
}

// startViewSweeper unmounts views whose page went away without telling us.
func (c *ServiceCtx) startViewSweeper() {
	views := c.deps.config.Views

	c.group.Go(func() error {
		ticker := time.NewTicker(views.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-c.groupCtx.Done():
				return nil

			case <-ticker.C:
				c.sweepIdleViews(views.IdleTTL)
			}
		}
	})
}

func (c *ServiceCtx) sweepIdleViews(idleTTL time.Duration) {
	result, err := c.deps.apps.webApp.Commands.SweepIdleViews.Handle(
		c.groupCtx,
		commands.SweepIdleViewsCommand{IdleTTL: idleTTL},
	)
	if err != nil {
		c.deps.infra.logger.Error().Err(err).Msg("sweeping idle views failed")

		return
	}

	if result.Swept > 0 {
		c.deps.infra.logger.Debug().
			Int("swept", result.Swept).
			Int("remaining", result.Remaining).
			Msg("idle dashboard views unmounted")
	}
}

func (c *ServiceCtx) monitorConfigChanges() {
	if c.deps.configLoader == nil {
		return
	}

	reloadErrors := c.deps.configLoader.WatchConfigSignals(c.serverCtx)
	go func() {
		for err := range reloadErrors {
			if err != nil {
				c.deps.infra.logger.Error().Err(err).Msg("config reload failed")
			} else {
				c.deps.infra.logger.Info().Msg("config revalidated, backend address unchanged")
			}
		}
	}()
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *ServiceCtx) shutdown() error {
	c.deps.infra.logger.Info().Msg("shutting down service...")

	signal.Stop(c.shutdownChannel)

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	shutdownCtx, cancel := context.WithTimeout(
		context.WithoutCancel(c.serverCtx),
		c.deps.config.PublicHTTPServer.ShutdownTimeout,
	)
	defer cancel()

	go func() {
		<-shutdownCtx.Done()

		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			c.deps.infra.logger.Error().Msg("graceful shutdown timed out.. forcing exit.")
			c.forcedAbort()
		}
	}()

	c.shutdownServers(shutdownCtx)

	err := c.group.Wait()

	c.cleanup(shutdownCtx)

	c.deps.infra.logger.Info().Msg("service shutdown complete")

	return err
}

func (c *ServiceCtx) shutdownServers(ctx context.Context) {
	servers := map[string]*http.Server{
		"public": c.deps.infra.publicHttpServer,
		"admin":  c.deps.infra.adminHttpServer,
	}

	for name, server := range servers {
		if server == nil {
			continue
		}

		if err := server.Shutdown(ctx); err != nil {
			c.deps.infra.logger.Error().
				Err(err).
				Str("server", name).
				Msg("failed to shutdown the http server gracefully")
		}
	}
}

// WaitForServer blocks until the http servers are listening.
// If you want to be notified when the server is running,
// make sure you instantiate your server with WithWaitingForServer.
//
// Example:
//
//	srv := runtime.New(WithWaitingForServer())
//	go func() {
//		_ = srv.Run()
//	}()
//
//	srv.WaitForServer()
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

// PublicAddr is the bound public address, nil before the server listens.
func (c *ServiceCtx) PublicAddr() net.Addr {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.publicAddr
}

// AdminAddr is the bound admin address, nil when the admin server is off.
func (c *ServiceCtx) AdminAddr() net.Addr {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.adminAddr
}

func (c *ServiceCtx) setAddr(target *net.Addr, addr net.Addr) {
	c.mu.Lock()
	defer c.mu.Unlock()

	*target = addr
}

func (c *ServiceCtx) cleanup(shutdownCtx context.Context) {
	c.deps.infra.logger.Info().Msg("cleaning up resources...")

	for resource, cleanupFn := range c.deps.cleanupFuncs {
		if err := cleanupFn(shutdownCtx); err != nil {
			c.deps.infra.logger.Error().
				Err(err).
				Str("resource", resource).
				Msg("failed to shutdown the resource gracefully")
		}
	}

	c.deps.infra.logger.Info().Msg("cleanup completed")
}
