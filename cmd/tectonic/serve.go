package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"tectonic/internal/tectonic"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("listen") && viper.IsSet("listen") {
				listen = viper.GetString("listen")
			}

			co, err := openStore(opts)
			if err != nil {
				return err
			}
			defer co.Close()

			server := tectonic.NewServer(co)

			httpServer := &http.Server{
				Addr:              listen,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 20 * time.Second,
				ReadTimeout:       20 * time.Second,
				WriteTimeout:      20 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			eg.Go(func() error {
				slog.Info("Starting Tectonic HTTP server", "addr", listen)
				err := httpServer.ListenAndServe()
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			return eg.Wait()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":9000", "HTTP listen address")

	return cmd
}
