// Command loader seeds the store from the CSV files in the data directory.
// It is a one-shot batch tool, not meant to run against live traffic.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"kritika/internal/config"
	"kritika/internal/database"
	"kritika/internal/loader"

	"github.com/spf13/cobra"
)

var (
	dataDir string
	allFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "loader",
	Short: "Bulk CSV loader for the catalog database",
	Long: `Bulk CSV loader for the catalog database.

Loads users, categories, genres, titles, reviews and comments from the CSV
files in the data directory. Entities load in dependency order and delete in
the reverse order, so foreign keys always resolve. Rows that collide with
existing data are skipped; an unresolvable reference aborts the batch.

Examples:
  loader load --all          # load every entity in order
  loader load category       # load one entity
  loader show title          # dump id:name pairs
  loader delete --all        # wipe every table in reverse order
  loader reload review       # delete then load one entity`,
}

var loadCmd = &cobra.Command{
	Use:   "load [entity]",
	Short: "Load entities from CSV files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args, func(ctx context.Context, r *loader.Registry) error {
			return r.LoadAll(ctx)
		}, loader.Loader.Load)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <entity>",
	Short: "Dump an entity's rows as id:string pairs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args, nil, func(l loader.Loader, ctx context.Context) error {
			return l.Show(ctx, os.Stdout)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [entity]",
	Short: "Delete entity rows",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args, func(ctx context.Context, r *loader.Registry) error {
			return r.DeleteAll(ctx)
		}, loader.Loader.Delete)
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload [entity]",
	Short: "Delete then load entities",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args, func(ctx context.Context, r *loader.Registry) error {
			return r.ReloadAll(ctx)
		}, loader.Loader.Reload)
	},
}

// run dispatches to the batch operation (--all) or the single-entity one.
func run(args []string, batch func(context.Context, *loader.Registry) error, single func(loader.Loader, context.Context) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	ctx := context.Background()
	registry := loader.NewRegistry(db, cfg.DataDir)

	if allFlag {
		if batch == nil {
			return fmt.Errorf("--all is not valid for this command")
		}
		return batch(ctx, registry)
	}

	if len(args) == 0 {
		return fmt.Errorf("entity name required (one of %v) or --all", registry.Names())
	}
	l, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	return single(l, ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory with the CSV files (defaults to DATA_DIR)")
	rootCmd.PersistentFlags().BoolVar(&allFlag, "all", false, "Apply to every entity in dependency order")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
