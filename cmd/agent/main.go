package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitalwatch/telemetry-agent/internal/agent"
	"github.com/vitalwatch/telemetry-agent/internal/config"
	"github.com/vitalwatch/telemetry-agent/internal/event"
	"github.com/vitalwatch/telemetry-agent/internal/logger"
	"github.com/vitalwatch/telemetry-agent/internal/replay"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vitalwatch-agent",
		Short:         "Page telemetry agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newReplayCmd())

	return root
}

func newReplayCmd() *cobra.Command {
	var (
		input         string
		endpoint      string
		siteID        string
		apiKey        string
		batchSize     int
		flushInterval int
		disableBeacon bool
		debug         bool
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Drive the agent from a recorded JSONL signal stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				if endpoint == "" || siteID == "" {
					return fmt.Errorf("failed to load config: %w", err)
				}
				// Environment not configured; run on defaults plus flags.
				cfg = &config.Config{
					TrackPageViews:    true,
					TrackVitals:       true,
					TrackErrors:       true,
					RespectDoNotTrack: true,
				}
			}

			// Flags override the environment.
			if endpoint != "" {
				cfg.Endpoint = endpoint
			}
			if siteID != "" {
				cfg.SiteID = siteID
			}
			if apiKey != "" {
				cfg.APIKey = apiKey
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize = batchSize
			}
			if cmd.Flags().Changed("flush-interval-ms") {
				cfg.FlushIntervalMs = flushInterval
			}
			if cmd.Flags().Changed("disable-beacon") {
				cfg.DisableBeacon = disableBeacon
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}

			log, err := logger.New("development", cfg.Debug)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Sync()

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open signal stream: %w", err)
			}
			defer f.Close()

			signals, err := replay.ParseStream(f)
			if err != nil {
				return err
			}

			env := replay.NewEnv(event.PageContext{})
			a, err := agent.New(cfg, env, nil, log)
			if err != nil {
				return fmt.Errorf("failed to create agent: %w", err)
			}

			a.Start(context.Background())
			runner := replay.NewRunner(a, env)
			if err := runner.Run(signals); err != nil {
				a.Close()
				return err
			}
			a.Close()

			log.Info("Replay finished", zap.Int("signal_count", len(signals)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "path to the JSONL signal stream")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "ingestion endpoint URL")
	cmd.Flags().StringVar(&siteID, "site-id", "", "site identifier")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key")
	cmd.Flags().IntVar(&batchSize, "batch-size", config.DefaultBatchSize, "events per batch")
	cmd.Flags().IntVar(&flushInterval, "flush-interval-ms", 5000, "flush interval in milliseconds")
	cmd.Flags().BoolVar(&disableBeacon, "disable-beacon", false, "force hidden-page flushes onto the async path")
	cmd.Flags().BoolVar(&debug, "debug", false, "log swallowed delivery failures")
	cmd.MarkFlagRequired("input")

	return cmd
}
