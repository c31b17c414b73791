package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/ovenboard/internal/bootstrap"
	"github.com/creamcroissant/ovenboard/internal/config"
	"github.com/creamcroissant/ovenboard/internal/job"
	"github.com/creamcroissant/ovenboard/internal/migrations"
	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/obs"
	"github.com/creamcroissant/ovenboard/internal/repository"
	"github.com/creamcroissant/ovenboard/internal/repository/sqlite"
	"github.com/creamcroissant/ovenboard/internal/service"
	"github.com/creamcroissant/ovenboard/internal/storefront"
)

func init() {
	// Migrate
	var migrateStatus bool
	var migrateRollback bool
	var migrateCmd = &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Database migration management",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := bootstrap.OpenSQLite(cfg.DB.Path)
			if err != nil {
				return err
			}
			fmt.Printf("Using DB path: %s\n", cfg.DB.Path)
			defer db.Close()

			if migrateStatus {
				return migrations.Status(db)
			}
			if migrateRollback {
				return migrations.Down(db)
			}

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			switch action {
			case "up":
				return migrations.Up(db)
			case "down":
				return migrations.Down(db)
			case "status":
				return migrations.Status(db)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "Show migration status")
	migrateCmd.Flags().BoolVar(&migrateRollback, "rollback", false, "Rollback the last migration")
	rootCmd.AddCommand(migrateCmd)

	// Config
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := getStore()
			if err != nil {
				return err
			}
			setting, err := store.Settings().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("get config failed: %w", err)
			}
			fmt.Println(setting.Value)
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := getStore()
			if err != nil {
				return err
			}
			setting := &repository.Setting{
				Key:       args[0],
				Value:     args[1],
				UpdatedAt: time.Now().Unix(),
			}
			if err := store.Settings().Upsert(context.Background(), setting); err != nil {
				return fmt.Errorf("set config failed: %w", err)
			}
			fmt.Printf("Config %s set.\n", args[0])
			return nil
		},
	})
	rootCmd.AddCommand(configCmd)

	// Job
	var jobCmd = &cobra.Command{
		Use:   "job",
		Short: "Job management",
	}
	jobCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available jobs",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available jobs:")
			for _, name := range []string{"notifications.refresh", "inventory.low_stock"} {
				fmt.Println("- " + name)
			}
		},
	})
	jobCmd.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Run a job manually",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := getStore()
			if err != nil {
				return err
			}
			jobs := getJobs(store, cfg)
			name := args[0]
			j, ok := jobs[name]
			if !ok {
				return fmt.Errorf("unknown job %q", name)
			}
			fmt.Printf("Running job %s...\n", name)
			if err := j.Run(context.Background()); err != nil {
				return fmt.Errorf("job run failed: %w", err)
			}
			fmt.Println("Job completed successfully.")
			return nil
		},
	})
	rootCmd.AddCommand(jobCmd)

	// Version
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Ovenboard %s\n", Version)
			fmt.Printf("Commit: %s\n", Commit)
			fmt.Printf("Build Time: %s\n", BuildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

func getStore() (*sqlite.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := bootstrap.OpenSQLite(cfg.DB.Path)
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewStore(db), cfg, nil
}

func getJobs(store *sqlite.Store, cfg *config.Config) map[string]job.Runnable {
	logger := slog.Default()
	dataQuality := obs.NopDataQuality()
	client := storefront.New(cfg.Storefront)

	ctx := context.Background()
	ledger := notification.NewLedger(
		ctx,
		service.NewLedgerStore(store.Settings()),
		notification.NewBus(),
		logger,
		dataQuality,
		notification.WithCapacity(cfg.Notifications.Capacity),
	)
	stock := service.NewStockService(client, store.Settings(), ledger, logger, cfg.Jobs.LowStockThreshold)

	return map[string]job.Runnable{
		"notifications.refresh": job.NewLedgerRefreshJob(ledger),
		"inventory.low_stock":   job.NewLowStockJob(stock),
	}
}
