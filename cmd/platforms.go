package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cartscope/cartscope-cli/internal/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the configured storefront profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := platform.LoadRegistry(cfg.Platforms.ProfilePath)
		if err != nil {
			return eris.Wrap(err, "load platform profiles")
		}

		fmt.Printf("%-15s %-30s %-12s %s\n", "PLATFORM", "DOMAINS", "MIN DELAY", "RETRIES")
		for _, p := range registry.Profiles() {
			fmt.Printf("%-15s %-30s %-12s %d\n",
				p.ID, strings.Join(p.Domains, ","), p.MinDelay(), p.MaxRetries)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}
