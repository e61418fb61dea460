// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-engine/internal/webcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired entries from the response cache",
	RunE:  runCachePrune,
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()

	cache, err := webcache.Open(cfg.Cache.Path, cfg.Cache.TTL)
	if err != nil {
		return err
	}
	defer cache.Close()

	removed, err := cache.Prune()
	if err != nil {
		return err
	}
	fmt.Printf("pruned %d expired entries\n", removed)
	return nil
}

func init() {
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
