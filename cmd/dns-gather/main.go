package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yourusername/dns-gather/internal/config"
	"github.com/yourusername/dns-gather/internal/discovery"
	"github.com/yourusername/dns-gather/internal/gather"
	"github.com/yourusername/dns-gather/internal/metrics"
	"github.com/yourusername/dns-gather/internal/model"
	"github.com/yourusername/dns-gather/internal/report"
	"github.com/yourusername/dns-gather/internal/transfer"
)

var (
	// Version information (set via -ldflags)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"

	// CLI flags
	configPath string
	logLevel   string
	server     string
	zoneList   string
	workers    int
	outputDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dns-gather",
		Short: "Gather DNS zone data via zone transfer into an Excel report",
		Long: `dns-gather enumerates the zones on a DNS server, retrieves each zone's
records via AXFR zone transfer, and consolidates them into report-ready
PTR/CNAME/SRV/AAAA tables in an Excel workbook.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "dns-gather.yaml", "Path to YAML configuration file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&server, "server", "", "DNS server address (overrides config)")
	rootCmd.Flags().StringVar(&zoneList, "zones", "", "Comma-separated zone names (skips server-side enumeration)")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent zone transfers (overrides config)")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "Report output directory (overrides config)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dns-gather %s\n", version)
			fmt.Printf("  git commit: %s\n", gitCommit)
			fmt.Printf("  build date: %s\n", buildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return err
	}

	logger := setupLogging(cfg.LogLevel)

	logger.Info().
		Str("version", version).
		Str("server", cfg.Server).
		Int("port", cfg.Port).
		Int("workers", cfg.Workers).
		Msg("Starting dns-gather")

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if cfg.MetricsPort > 0 {
		metricsServer := startMetricsServer(cfg.MetricsPort, logger)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Metrics server shutdown error")
			}
		}()
	}

	provider := transfer.NewAXFRProvider(cfg.Server, cfg.Port, cfg.Timeout(), logger)
	if cfg.TSIG.KeyName != "" {
		provider.SetTSIGKey(cfg.TSIG.KeyName, cfg.TSIG.Secret, cfg.TSIG.Algorithm)
		logger.Info().Str("key", cfg.TSIG.KeyName).Msg("TSIG authentication configured")
	}

	if err := provider.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("DNS server connection test failed")
		return err
	}
	logger.Info().Str("addr", provider.Addr()).Msg("DNS server reachable")

	enum := discovery.NewEnumerator(cfg.DiscoveryServer, cfg.Port, cfg.Timeout(), logger)

	var zones []model.ZoneInfo
	if len(cfg.Zones) > 0 {
		zones = enum.FromList(ctx, cfg.Zones)
	} else {
		zones = enum.EnumerateZones(ctx)
	}
	if len(zones) == 0 {
		logger.Warn().Msg("No zones discovered, nothing to gather")
		return nil
	}
	metrics.ZonesDiscovered.Set(float64(len(zones)))
	logger.Info().Int("zones", len(zones)).Msg("Zone discovery completed")

	retriever := transfer.NewRetriever(provider, logger)
	runner := gather.NewRunner(retriever, cfg.Workers, logger)

	recordsByZone, zones := runner.Run(ctx, zones)

	exporter := report.NewExporter(cfg.OutputDir, logger)
	path, err := exporter.Write(zones, recordsByZone)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("export").Inc()
		logger.Error().Err(err).Msg("Report export failed")
		return err
	}

	metrics.LastSuccessTimestamp.SetToCurrentTime()

	summary := model.Summarize(zones, start, time.Now())
	logger.Info().
		Int("zones", summary.ZonesDiscovered).
		Int("transferred", summary.ZonesTransferred).
		Int("failed", summary.ZonesFailed).
		Int("records", summary.TotalRecords).
		Float64("duration_seconds", summary.Duration().Seconds()).
		Str("report", path).
		Msg("Gather run completed")

	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if server != "" {
		cfg.Server = server
		if cfg.DiscoveryServer == "" {
			cfg.DiscoveryServer = server
		}
	}
	if zoneList != "" {
		cfg.Zones = nil
		for _, z := range strings.Split(zoneList, ",") {
			if z = strings.TrimSpace(z); z != "" {
				cfg.Zones = append(cfg.Zones, z)
			}
		}
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging configures structured JSON logging
func setupLogging(level string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "dns-gather").
		Logger()
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", port).Msg("Starting metrics server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics server error")
		}
	}()

	return srv
}
