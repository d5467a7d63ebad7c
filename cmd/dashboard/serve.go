package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/handlers"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/hub"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/intake"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/loader"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/poller"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDR)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := hub.NewHub()
	go h.Run(ctx)

	ledger, storeCloser, err := openLedger(ctx, cfg, intake.WithNotifier(h.PublishLedger))
	if err != nil {
		return err
	}
	defer storeCloser.Close()
	log.Info().Str("driver", cfg.Store.Driver).Int("goal_ml", ledger.Goal()).Msg("intake ledger ready")

	source, sourceCloser, err := buildSource(ctx, cfg.Data)
	if err != nil {
		return err
	}
	defer sourceCloser.Close()

	refresher := poller.NewRefresher(loader.New(source), newNormalizer(cfg.Team), h, cfg.Data.RefreshInterval)
	go refresher.Run(ctx)

	handler := handlers.NewHandler(ctx, refresher, ledger, h)
	router := handlers.NewRouter(handler, handlers.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("source", cfg.Data.Source).
			Str("cache", cfg.Data.Cache).
			Dur("refresh_interval", cfg.Data.RefreshInterval).
			Msg("dashboard listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-ctx.Done():
		log.Info().Msg("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		// ctx is already cancelled here, so websocket pumps and the refresher are stopping
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return err
		}
		log.Info().Msg("server stopped")
		return nil
	}
}
