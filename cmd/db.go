package cmd

import (
	"fmt"

	"water-delivery-api/seed"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables/collections and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		s, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog and admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		s, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Migrate(cmd.Context()); err != nil {
			return err
		}
		res, err := seed.Run(cmd.Context(), s, cfg.Auth.BcryptCost, log)
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Fprintln(cmd.OutOrStdout(), "Seed data already present.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products. Admin: %s / %s\n", res.Products, seed.AdminEmail, seed.AdminPassword)
		return nil
	},
}
