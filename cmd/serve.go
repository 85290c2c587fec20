package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsphweid/fingerbot/service"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address, overrides http_addr")
	rootCmd.AddCommand(serveCmd)
}

var httpAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the characteristics over HTTP",
	Long: `Serves the same file transfer and playback characteristics the BLE
peripheral exposes, over HTTP. Meant for bench testing without a phone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if httpAddr != "" {
			cfg.HTTPAddr = httpAddr
		}
		return serve(ctx)
	},
}

// NewHandler is the HTTP surface for app, CORS included.
func NewHandler(app *App) http.Handler {
	router := service.NewRouter(
		service.NewFileTransfer(app.Ingest),
		service.NewPlayAudio(app.Controller),
		app.Hub,
	)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Client-Id"},
	})
	return c.Handler(router)
}

func serve(ctx context.Context) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
