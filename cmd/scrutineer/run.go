package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahrav/go-scrutineer/infrastructure/extract"
	"github.com/ahrav/go-scrutineer/infrastructure/middleware"
	"github.com/ahrav/go-scrutineer/infrastructure/store"
	"github.com/ahrav/go-scrutineer/infrastructure/store/sqlite"
	"github.com/ahrav/go-scrutineer/internal/application"
	"github.com/ahrav/go-scrutineer/internal/fidelity"
)

// filterFlags are the competition filters shared by run and verify. Set
// flags override the configuration file.
type filterFlags struct {
	date, ageGroup, style, level string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Keep competitions on this day (YYYY-MM-DD); undated ones adopt it")
	cmd.Flags().StringVar(&f.ageGroup, "age-group", "", "Keep one age group, e.g. adult or sen_2")
	cmd.Flags().StringVar(&f.style, "style", "", "Keep one style: std or lat")
	cmd.Flags().StringVar(&f.level, "level", "", "Keep one level: E, D, C, B, A or S")
}

func (f *filterFlags) apply(cmd *cobra.Command, cfg *application.FilterConfig) {
	set := func(name, value string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst = value
		}
	}
	set("date", f.date, &cfg.Date)
	set("age-group", f.ageGroup, &cfg.AgeGroup)
	set("style", f.style, &cfg.Style)
	set("level", f.level, &cfg.Level)
}

type runFlags struct {
	filterFlags
	input, output, format string
	workers               int
	jsonOut               bool
}

func newRunCmd(c *cli) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Verify every event document below the input directory",
		Long: `Walks the input directory for .json/.yaml event documents, verifies
each competition and writes it to the output tree (accepted) or the
quarantine tree (rejected). Sources recorded in the ledger by an earlier
run are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input") {
				cfg.InputDir = flags.input
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputDir = flags.output
			}
			if cmd.Flags().Changed("format") {
				cfg.Format = flags.format
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = flags.workers
			}
			flags.apply(cmd, &cfg.Filter)
			if err := cfg.Validate(); err != nil {
				return err
			}
			summary, err := runPipeline(cmd.Context(), c.logger, cfg)
			if err != nil {
				return err
			}
			return printSummary(cmd, summary, flags.jsonOut)
		},
	}
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Directory of event documents")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Directory receiving verified competitions")
	cmd.Flags().StringVar(&flags.format, "format", "", "Store format: json or yaml")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Competitions verified in parallel")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print the summary as JSON")
	flags.register(cmd)
	return cmd
}

// runPipeline wires the adapters described by cfg and runs the pipeline
// once.
func runPipeline(ctx context.Context, logger *zap.Logger, cfg *application.Config) (application.Summary, error) {
	filter, err := cfg.Filter.Compile()
	if err != nil {
		return application.Summary{}, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewPrometheusMetrics(registry)
	if cfg.MetricsAddr != "" {
		stop := serveMetrics(logger, cfg.MetricsAddr, registry)
		defer stop()
	}

	gate, err := fidelity.NewGate(cfg.Gate)
	if err != nil {
		return application.Summary{}, err
	}
	verifier := middleware.NewVerificationMonitor(gate, middleware.NewOTelVerifyObserver(metrics))

	storeOpts := []store.Option{store.WithFormat(store.Format(cfg.Format))}
	if cfg.QuarantineDir != "" {
		storeOpts = append(storeOpts, store.WithQuarantineDir(cfg.QuarantineDir))
	}
	fs, err := store.NewFileStore(cfg.OutputDir, storeOpts...)
	if err != nil {
		return application.Summary{}, err
	}

	ledger, err := sqlite.Open(cfg.LedgerFile())
	if err != nil {
		return application.Summary{}, err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("closing ledger", zap.Error(err))
		}
	}()

	pipeline, err := application.NewPipeline(
		extract.NewDocumentExtractor(), fs, ledger, verifier,
		application.WithFilter(filter),
		application.WithWorkers(cfg.Workers),
		application.WithLogger(logger),
		application.WithMetrics(metrics),
	)
	if err != nil {
		return application.Summary{}, err
	}
	return pipeline.Run(ctx, cfg.InputDir)
}

// serveMetrics exposes registry on addr until the returned stop is called.
func serveMetrics(logger *zap.Logger, addr string, registry *prometheus.Registry) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	}
}

func printSummary(cmd *cobra.Command, s application.Summary, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	_, err := fmt.Fprintf(out,
		"run %s: %d sources, %d accepted, %d rejected, %d filtered, %d skipped, %d failed\n",
		s.RunID, s.Sources, s.Accepted, s.Rejected, s.Filtered, s.Skipped, s.Failed)
	return err
}
