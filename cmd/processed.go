package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-scribe/internal/config"
	"github.com/Taichi-iskw/yt-scribe/internal/repository/migrations"
)

// processedCmd groups processed-set maintenance
var processedCmd = &cobra.Command{
	Use:   "processed",
	Short: "Inspect and edit the set of processed videos",
}

// processedListCmd prints every processed ID
var processedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed video IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		factory := NewServiceFactory(cfg, newLogger(cfg))
		defer factory.Close()

		store, err := factory.CreateStore(ctx)
		if err != nil {
			return err
		}
		set, err := store.Load(ctx)
		if err != nil {
			return err
		}

		for _, id := range set.IDs() {
			fmt.Println(id)
		}
		return nil
	},
}

// processedMarkCmd records IDs as processed so they are skipped
var processedMarkCmd = &cobra.Command{
	Use:   "mark ID...",
	Short: "Mark video IDs as processed without processing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		factory := NewServiceFactory(cfg, newLogger(cfg))
		defer factory.Close()

		store, err := factory.CreateStore(ctx)
		if err != nil {
			return err
		}
		if _, err := store.Load(ctx); err != nil {
			return err
		}

		for _, id := range args {
			if store.Contains(id) {
				fmt.Printf("already processed: %s\n", id)
				continue
			}
			if err := store.MarkProcessed(ctx, id); err != nil {
				return fmt.Errorf("failed to mark %s: %w", id, err)
			}
			fmt.Printf("marked: %s\n", id)
		}
		return nil
	},
}

// processedMigrateCmd applies the postgres schema
var processedMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the postgres store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("database_url is not configured")
		}
		if cfg.Store.Type != config.StorePostgres {
			fmt.Printf("note: store.type is %q, migrations only affect the postgres store\n", cfg.Store.Type)
		}

		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			return err
		}
		fmt.Println("Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processedCmd)
	processedCmd.AddCommand(processedListCmd)
	processedCmd.AddCommand(processedMarkCmd)
	processedCmd.AddCommand(processedMigrateCmd)
}
