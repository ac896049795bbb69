// Package cmd holds the water-api command line: serve, migrate, seed and
// routes.
package cmd

import (
	"context"
	"fmt"

	"water-delivery-api/config"
	"water-delivery-api/store"
	"water-delivery-api/store/gormstore"
	"water-delivery-api/store/mongostore"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"
)

const driverMongo = "mongo"

var configFile string

var rootCmd = &cobra.Command{
	Use:           "water-api",
	Short:         "Water delivery ordering API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config.yaml if present)")

	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(routesCmd)
}

// Execute runs the root command; serve is the default when no subcommand
// is given.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// bootstrap loads configuration and builds the logger shared by every command.
func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, config.NewLogger(cfg), nil
}

// openStore connects the backend named by database.driver.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, error) {
	switch cfg.Database.Driver {
	case driverMongo:
		s, err := mongostore.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		log.WithField("database", cfg.Mongo.Database).Info("connected to MongoDB")
		return s, nil
	default:
		level := logger.Warn
		if cfg.Server.Mode == "debug" {
			level = logger.Info
		}
		s, err := gormstore.Open(cfg.Database.Driver, cfg.Database.DSN, level)
		if err != nil {
			return nil, err
		}
		log.WithField("driver", cfg.Database.Driver).Info("database connected")
		return s, nil
	}
}
