package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/vexora/internal/app"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var overrides []func(*app.Config)
			if addr != "" {
				overrides = append(overrides, func(c *app.Config) { c.Server.ListenAddr = addr })
			}
			a, closeApp, err := opts.openApp(ctx, overrides...)
			if err != nil {
				return err
			}
			defer closeApp()
			if err := a.Start(); err != nil {
				return err
			}

			srv, err := server.FromApplication(a)
			if err != nil {
				return err
			}
			httpServer := srv.HTTPServer()

			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("listening", logging.Field{Key: "addr", Value: httpServer.Addr})
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.Logger.Warn("http shutdown", logging.Err(err))
			}
			return a.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.listen_addr")
	return cmd
}
