package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mlpipe/api/rest/routes"
	"mlpipe/core/cleanup"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only status API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := newPlatform(ctx)
		if err != nil {
			return err
		}
		history, closeHistory := openHistory()
		defer closeHistory()

		reaper := newReaper(client, nil, cleanup.Options{Filter: cfg.Naming.Filter})

		r := mux.NewRouter()
		routes.SetupRoutes(r, client, reaper, history, cfg.Naming.Filter)

		port := servePort
		if port == "" {
			port = cfg.ServerPort
		}
		server := &http.Server{
			Addr:              ":" + port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.WithField("port", port).Info("Starting server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("Server exited")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (default SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}
