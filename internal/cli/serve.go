package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/melih/dockgen/internal/adapters/http"
	"github.com/melih/dockgen/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(opts *globalOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg := opts.cfg
			if listen != "" {
				cfg.HTTP.Listen = listen
			}

			if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
				log.G(cmd.Context()).WithError(err).Warn("could not create work directory")
			}

			c, err := newComponents(cfg)
			if err != nil {
				return err
			}
			defer func() { err = closeAll(c, err) }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.HTTP.Listen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.HTTP.Listen, err)
			}

			logger := log.G(ctx)
			app := httpadapter.NewApp(cfg.HTTP, c.service, logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.WithField("addr", ln.Addr().String()).Info("dockgen-server listening")
				return app.Listener(ln)
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return app.ShutdownWithContext(sctx)
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on, overrides http.listen")
	return cmd
}
