package main

import (
	"github.com/spf13/cobra"

	"github.com/sawpanic/airdroprun/internal/ui"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached API responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.store.Clear(); err != nil {
				return err
			}
			ui.Success("Cache cleared (%s)", a.cfg.Cache.Dir)
			return nil
		},
	}

	cmd.AddCommand(clearCmd)
	return cmd
}
