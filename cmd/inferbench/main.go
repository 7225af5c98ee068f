package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/inferbench/benchmark"
	"github.com/nvr-ai/inferbench/config"
	"github.com/nvr-ai/inferbench/hardware"
	"github.com/nvr-ai/inferbench/inference"
	"github.com/nvr-ai/inferbench/inference/providers"
	"github.com/nvr-ai/inferbench/models"
	"github.com/nvr-ai/inferbench/util"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "inferbench",
		Short:         "ONNX inference benchmark harness",
		Long:          "Sweeps models, input sizes, execution providers and graph optimization levels and records load, first-run and steady state timings.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./inferbench.yaml)")
	pf.String("ort-library", "", "onnxruntime shared library (default: "+inference.DefaultLibraryPath()+")")
	pf.String("models-file", "", "YAML model catalog replacing the built-in table")
	pf.String("models-dir", "models", "directory holding the built-in models")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")

	rootCmd.AddCommand(
		runCmd(),
		modelsCmd(),
		providersCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	d := benchmark.DefaultRequest()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			// Alias errors are reported before the runtime is touched.
			if _, err := catalog.Resolve(cfg.Request.Model); err != nil {
				return err
			}

			backend, err := inference.NewORTBackend(inference.ORTOptions{
				LibraryPath: cfg.ORTLibrary,
				Verbose:     cfg.Request.Verbose,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			defer backend.Close()

			available, err := providers.NewCatalog(backend)
			if err != nil {
				return err
			}

			info := hardware.NewInfo(hardware.NewDefaultProbe())
			sweep := benchmark.NewSweep(benchmark.SweepOptions{
				Models:    catalog,
				Providers: available,
				Backend:   backend,
				Recorder: benchmark.NewRecorder(benchmark.RecorderOptions{
					Path:     cfg.Results,
					Hardware: info,
					Stdout:   cmd.OutOrStdout(),
					Logger:   logger,
				}),
				Logger: logger,
			})

			plan, err := sweep.Plan(cfg.Request)
			if err != nil {
				return err
			}

			results, err := sweep.Run(cmd.Context(), plan)
			failed := 0
			for _, r := range results {
				if !r.Success {
					failed++
				}
			}
			logger.Info("sweep finished", "cells", len(results), "failed", failed, "results", cfg.Results)
			return err
		},
	}

	f := cmd.Flags()
	f.String("model", d.Model, "model alias or all")
	f.Int("size", d.Size, "square input size, 0 sweeps 256, 512 and 1024")
	f.String("provider", d.Provider, "cpu, directml, cuda, tensorrt, gpu, all or a comma separated list")
	f.String("optimization", string(d.Optimization), "graph optimization level: none, basic, extended, full")
	f.Bool("compare-optimizations", false, "run every optimization level")
	f.Int("warmup", d.Warmup, "warmup iterations per cell")
	f.Int("runs", d.Runs, "timed iterations per cell")
	f.Int("gpu", 0, "GPU device index")
	f.Bool("verbose", false, "verbose runtime logging")
	f.Bool("profile", false, "write runtime profiles")
	f.Bool("save-optimized", false, "persist optimized graphs next to the model")
	f.Bool("load-optimized", false, "load previously saved optimized graphs")
	f.Bool("include-tensorrt", false, "keep tensorrt in gpu and all requests")
	f.Uint64("seed", d.Seed, "input generation seed")
	f.String("results", benchmark.DefaultResultsPath, "result log file")

	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List registered models and saved optimized artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			descriptors, err := catalog.Resolve(models.AliasAll)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %-10s %-8s %s\n", "ALIAS", "FIXED", "PRESENT", "PATH")
			dirs := make(map[string]bool)
			for _, d := range descriptors {
				fixed := "-"
				if d.HasFixedSize() {
					fixed = fmt.Sprintf("%dx%d", d.FixedSize, d.FixedSize)
				}
				fmt.Fprintf(out, "%-12s %-10s %-8t %s\n", d.Alias, fixed, util.FileExists(d.Path), d.Path)
				dirs[filepath.Dir(d.Path)] = true
			}

			for dir := range dirs {
				artifacts, err := util.LoadDirectoryArtifacts(dir)
				if err != nil || len(artifacts) == 0 {
					continue
				}
				fmt.Fprintf(out, "\noptimized artifacts in %s:\n", dir)
				for _, a := range artifacts {
					fmt.Fprintf(out, "  %-20s %-9s %-9s %10d bytes\n", a.Model, a.Provider, a.Level, a.Size)
				}
			}
			return nil
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List execution providers and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			backend, err := inference.NewORTBackend(inference.ORTOptions{
				LibraryPath: cfg.ORTLibrary,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			defer backend.Close()

			available, err := providers.NewCatalog(backend)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %-28s %-10s %s\n", "NAME", "CAPABILITY", "AVAILABLE", "NOTE")
			for _, d := range providers.Known() {
				note := ""
				if d.SlowCompile {
					note = "slow first run, needs --include-tensorrt in groups"
				}
				fmt.Fprintf(out, "%-10s %-28s %-10t %s\n", d.Name, d.Capability, available.IsAvailable(d.Name), note)
			}
			return nil
		},
	}
}

func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := util.NewLogger(os.Stderr, cfg.EffectiveLogLevel(), cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func loadCatalog(cfg *config.Config) (*models.Catalog, error) {
	if cfg.ModelsFile != "" {
		return models.LoadCatalogFile(cfg.ModelsFile)
	}
	return models.DefaultCatalog(cfg.ModelsDir), nil
}
