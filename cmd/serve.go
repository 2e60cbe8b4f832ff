package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/lobbymatch/internal/adapters/gateway"
	"github.com/bnema/lobbymatch/internal/application"
	"github.com/bnema/lobbymatch/internal/ports"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lobby matchmaking server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listener, err := net.Listen("tcp", app.cfg.Listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", app.cfg.Listen, err)
			}

			return runServer(ctx, app, listener)
		},
	}

	cmd.Flags().String("listen", "", "Address to listen on (default 0.0.0.0:5000)")
	cmd.Flags().Int("history-limit", 0, "Number of lobby events and games shown on the status view (default 8)")
	_ = app.viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	_ = app.viper.BindPFlag("history_limit", cmd.Flags().Lookup("history-limit"))

	return cmd
}

// runServer serves the gateway on listener until ctx is cancelled.
func runServer(ctx context.Context, app *app, listener net.Listener) error {
	engine := application.NewMatchEngine(ports.SystemClock{}, app.logger.With("component", "engine"), app.cfg.HistoryLimit)
	server := &http.Server{
		Handler:           gateway.NewHandler(engine, app.logger.With("component", "gateway")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	app.logger.Info("lobbymatch server listening",
		"addr", listener.Addr().String(),
		"history_limit", engine.HistoryLimit(),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	stats := engine.Stats()
	app.logger.Info("lobbymatch server stopped",
		"waiting", stats.Waiting,
		"matched", stats.Matched,
		"repeat_rejected", stats.RepeatRejected,
		"open_matches", stats.OpenMatches,
	)

	return nil
}
