package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexandrebha/cybook/library/httpapi"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

const readHeaderTimeout = 5 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API until interrupted",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := &http.Server{
				Addr: a.cfg.HTTP.Addr,
				Handler: httpapi.NewServer(*a.handlers,
					httpapi.WithLogger(a.logger),
					httpapi.WithAllowedOrigins(a.cfg.HTTP.AllowedOrigins...)),
				ReadHeaderTimeout: readHeaderTimeout,
			}

			return serve(cmd.Context(), a, server)
		},
	}

	cmd.Flags().StringVar(&a.cfg.HTTP.Addr, "addr", a.cfg.HTTP.Addr, "listen address")

	return cmd
}

// serve runs server until ctx is canceled, then drains in-flight requests.
func serve(ctx context.Context, a *app, server *http.Server) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err

	case <-ctx.Done():
		a.logger.Info("shutting down http server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown failed", shell.LogAttrError, err.Error())
		return err
	}

	return nil
}
