package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/decicalc/internal/config"
	"github.com/zephyrtronium/decicalc/internal/docstore"
	"github.com/zephyrtronium/decicalc/internal/logging"
	"github.com/zephyrtronium/decicalc/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		cfgPath string
		addr    string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, opts, &cfg)
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the configuration)")
	return cmd
}

// applyFlags overrides configuration with the global flags that were given.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	if f := cmd.Flag("prec"); f != nil && f.Changed {
		cfg.Engine.Prec = opts.prec
	}
	if f := cmd.Flag("func-prec"); f != nil && f.Changed {
		cfg.Engine.FuncPrec = opts.fprec
	}
	if f := cmd.Flag("max-depth"); f != nil && f.Changed {
		cfg.Engine.MaxDepth = opts.depth
	}
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		cfg.Log.Level = opts.logLevel
	}
}

// serve runs the API until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, cfg config.Config) error {
	log, closer, err := logging.New(cfg.Log.Logging("decicalc"))
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := docstore.Open(docstore.Config{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
		Logger:   log.With("component", "docstore"),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("closing document store", "error", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Config{
		Engine:      cfg.Engine.ContextOptions(),
		EvalTimeout: cfg.Server.EvalTimeout,
		RateLimit:   cfg.Server.RateLimit,
		RateBurst:   cfg.Server.RateBurst,
		Store:       store,
		Logger:      log,
	})
	hs := httpServer(ctx, cfg, srv.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", hs.Addr,
			slog.Group("engine",
				slog.Uint64("prec", uint64(cfg.Engine.Prec)),
				slog.Uint64("func_prec", uint64(cfg.Engine.FuncPrec)),
			),
		)
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		if cfg.Server.ShutdownTimeout == 0 {
			return hs.Close()
		}
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}

// httpServer creates the API server. Request contexts carry the values of ctx
// but not its cancellation, so requests in flight when ctx ends can finish
// during Shutdown.
func httpServer(ctx context.Context, cfg config.Config, h http.Handler) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}
