package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edumarques81/turntable/internal/infra/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the metadata cache and play log",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(db *cache.DB) error {
			stats, err := db.GetStats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "streams:  %d\n", stats.StreamCount)
			fmt.Fprintf(out, "plays:    %d\n", stats.PlayCount)
			fmt.Fprintf(out, "schema:   %s\n", stats.SchemaVersion)
			if !stats.LastUpdated.IsZero() {
				fmt.Fprintf(out, "updated:  %s\n", stats.LastUpdated.Local().Format(time.DateTime))
			}
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached streams and the play log",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(db *cache.DB) error {
			if err := db.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func withCache(fn func(db *cache.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging("warn")

	db := cache.NewDB(cfg.Cache.Path)
	if err := db.Open(); err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}
