package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/summarize/internal/config"
	httpAdapter "github.com/aretw0/summarize/pkg/adapters/http"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP surface until ctx is done.
func Serve(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	var metricsLn net.Listener
	if cfg.MetricsAddr != "" {
		if metricsLn, err = net.Listen("tcp", cfg.MetricsAddr); err != nil {
			ln.Close()
			return fmt.Errorf("listen on %s: %w", cfg.MetricsAddr, err)
		}
	}
	return serve(ctx, cfg, logOut, ln, metricsLn)
}

// serve owns the listeners. With a nil metricsLn, /metrics is served by the main router.
func serve(ctx context.Context, cfg config.Config, logOut io.Writer, ln, metricsLn net.Listener) error {
	logger, err := createLogger(logOut, cfg)
	if err != nil {
		return err
	}
	res, err := createEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close host runners", "error", err)
		}
	}()

	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(logger),
		httpAdapter.WithAllowedOrigins(cfg.CORSOrigins...),
		httpAdapter.WithMaxInputSize(cfg.MaxInputSize),
		httpAdapter.WithBasePath(cfg.BasePath),
	}
	servers := []*http.Server{}
	listeners := []net.Listener{ln}
	if metricsLn == nil {
		opts = append(opts, httpAdapter.WithMetricsHandler(res.Metrics.Handler()))
	} else {
		mux := http.NewServeMux()
		mux.Handle("/metrics", res.Metrics.Handler())
		servers = append(servers, &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second})
		listeners = append(listeners, metricsLn)
	}
	servers = append([]*http.Server{{
		Handler:           httpAdapter.NewHandler(res.Engine, opts...),
		ReadHeaderTimeout: 5 * time.Second,
	}}, servers...)

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		srv, l := srv, listeners[i]
		g.Go(func() error {
			logger.Info("Listening", "addr", l.Addr().String())
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		return res.Engine.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err, srv.Close())
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
