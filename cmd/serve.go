package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/s4bridge/s4bridge/internal/api"
	"github.com/s4bridge/s4bridge/internal/engine"
	"github.com/s4bridge/s4bridge/internal/ws"
	"github.com/s4bridge/s4bridge/web"
)

var (
	servePort    int
	serveDevMode bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard and API server",
	Long:  `Start the HTTP server: REST API, SSE event stream, WebSocket hub, and the embedded dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := setupLogger(cfg)
		if err != nil {
			return err
		}

		eng, err := engine.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("building engine: %w", err)
		}

		hub := ws.NewHub(eng.Bus(), logger)
		go hub.Run()

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		opts := []api.Option{
			api.WithHub(hub),
			api.WithDevMode(serveDevMode),
		}
		// Serve the embedded dashboard when a build is present.
		if distFS, err := fs.Sub(web.DistFS, "dist"); err == nil {
			opts = append(opts, api.WithStaticFS(distFS))
		}

		srv := api.New(eng, logger, port, opts...)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		fmt.Fprintf(os.Stderr, "s4bridge dashboard: http://localhost:%d\n", port)

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
		case <-ctx.Done():
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			eng.Shutdown(shutdownCtx)
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port for the server (default from config, 8080)")
	serveCmd.Flags().BoolVar(&serveDevMode, "dev", false, "enable CORS for development mode")
	rootCmd.AddCommand(serveCmd)
}
