package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sawpanic/airdroprun/internal/ui"
)

func newTestAPICmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "test-api",
		Short: "Test DeFiLlama connectivity without scoring",
		Long:  "Performs one live fetch per endpoint and reports success or failure.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			failed := 0
			for _, probe := range a.client.Probe(ctx) {
				if probe.Success {
					ui.Success("%s: %d items in %dms", probe.Endpoint, probe.Items, probe.LatencyMs)
				} else {
					failed++
					ui.Warn("%s: %s", probe.Endpoint, probe.Error)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d endpoint(s) unreachable", failed)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout for the connectivity test")
	return cmd
}
