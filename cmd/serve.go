package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"water-delivery-api/auth"
	"water-delivery-api/config"
	"water-delivery-api/handlers"
	"water-delivery-api/idgen"
	"water-delivery-api/routes"
	"water-delivery-api/services"
	"water-delivery-api/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the store and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	ttl, err := cfg.Auth.TokenTTL()
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		return err
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, ttl)
	router := routes.NewRouter(newHandlers(cfg, s, tokens, log), tokens, log)
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newHandlers(cfg *config.Config, s store.Store, tokens *auth.TokenService, log logrus.FieldLogger) *handlers.Handlers {
	return &handlers.Handlers{
		Auth:        services.NewAuthService(s, tokens, cfg.Auth.BcryptCost, log),
		Catalog:     services.NewCatalogService(s),
		Orders:      services.NewOrderService(s, idgen.New(), log),
		Admin:       services.NewAdminService(s, log),
		Store:       s,
		BcryptCost:  cfg.Auth.BcryptCost,
		SeedEnabled: cfg.Seed.Enabled,
		Log:         log,
	}
}
