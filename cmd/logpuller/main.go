// Command logpuller is the standalone Log-Writer Client daemon: it
// attaches to one server as a passive replication follower and
// continuously pulls log pages into a local page store.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/dbtxn/pkg/clog"
	"github.com/cuemby/dbtxn/pkg/dbconfig"
	"github.com/cuemby/dbtxn/pkg/health"
	"github.com/cuemby/dbtxn/pkg/logwriter"
	"github.com/cuemby/dbtxn/pkg/metrics"
	"github.com/cuemby/dbtxn/pkg/transport"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "logpuller",
	Short: "logpuller attaches to a server as a passive log-page follower",
	Long: `logpuller is the standalone log-writer follower daemon: it dials
one server, pulls log pages continuously into a local page store for
standby recovery, and logs its progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		profileName, _ := cmd.Flags().GetString("profile")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		return run(configPath, profileName, metricsAddr)
	},
}

func init() {
	rootCmd.Flags().String("config", "dbclient.yaml", "connection profile file")
	rootCmd.Flags().String("profile", "", "profile name (defaults to the config's default profile)")
	rootCmd.Flags().String("metrics-addr", "127.0.0.1:9091", "address to serve /metrics, /health, /ready, /live on")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit structured JSON logs instead of console output")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	clog.Init(clog.Config{Level: level, JSON: jsonOut})
}

func run(configPath, profileName, metricsAddr string) error {
	cfg, err := dbconfig.Load(configPath)
	if err != nil {
		return err
	}
	profile, err := cfg.Resolve(profileName)
	if err != nil {
		return err
	}
	if !profile.LogWriter.Enabled {
		return fmt.Errorf("logpuller: profile %q has log_writer.enabled=false", profile.Name)
	}

	mode := parseMode(profile.LogWriter.Mode)
	localDir := profile.LogWriter.LocalDir
	if localDir == "" {
		localDir = "logpuller-pages"
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := clog.WithComponent("logpuller")

	metrics.SetVersion("1.0.0")
	metrics.RegisterComponent("transport", false, "connecting")
	metrics.RegisterComponent("logwriter", false, "not opened")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("address", metricsAddr).Msg("metrics endpoint listening")

	checker := health.NewTCPChecker(profile.Address)
	if res := checker.Check(ctx); res.Healthy {
		metrics.RegisterComponent("transport", true, res.Message)
	} else {
		metrics.RegisterComponent("transport", false, res.Message)
	}

	conn, err := transport.Dial(ctx, profile.Address)
	if err != nil {
		return err
	}
	defer conn.Close()

	stream, err := conn.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("logpuller: opening fetch stream: %w", err)
	}
	client := transport.NewCallClient(stream)

	store, err := logwriter.OpenPageStore(localDir)
	if err != nil {
		return err
	}
	defer store.Close()
	metrics.RegisterComponent("logwriter", true, "opened "+localDir)

	follower := logwriter.NewFollower(client, store, mode)

	collector := metrics.NewCollector(nil, func() []metrics.LogWriterStats {
		return []metrics.LogWriterStats{follower}
	})
	collector.Start()
	defer collector.Stop()

	log.Info().Str("address", profile.Address).Str("mode", mode.String()).Msg("starting follower loop")

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return nil
		case <-ticker.C:
			n, err := follower.Step()
			if err != nil {
				return fmt.Errorf("logpuller: fetch round: %w", err)
			}
			if n > 0 {
				log.Debug().Int("pages", n).Int64("last_recv_pageid", follower.LastRecvPageID()).Int64("lag_pages", follower.LagPages()).Msg("pulled pages")
			}
			if follower.ShuttingDown() {
				metrics.RegisterComponent("transport", false, "server reported crashed")
				log.Warn().Msg("server reported crashed; follower stopped")
				return nil
			}
		}
	}
}

func parseMode(s string) logwriter.Mode {
	switch s {
	case "sync":
		return logwriter.Sync
	case "semi_sync":
		return logwriter.SemiSync
	default:
		return logwriter.Async
	}
}
