package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/nerd/internal/config"
	"github.com/conorfennell/nerd/internal/storage"
	"github.com/conorfennell/nerd/internal/web"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference REST server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := storage.Open(app.Config.Server.DB)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			app.Logger.Info("Database opened successfully", "path", app.Config.Server.DB)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app, &http.Server{
				Addr:              app.Config.Server.Addr,
				Handler:           web.NewServer(db, app.Logger),
				ReadHeaderTimeout: 10 * time.Second,
			})
		},
	}
	cmd.Flags().String("addr", config.Default.Server.Addr, "Listen address")
	cmd.Flags().String("db", config.Default.Server.DB, "Path to the SQLite database file")
	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, app *App, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		app.Logger.Info("Listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	app.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
