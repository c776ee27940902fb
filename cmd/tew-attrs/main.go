// =============================================================================
// tew-attrs - Main Entry Point
// =============================================================================
//
// Recovers the worker attribute table of Total Extreme Wrestling from two
// disassembly listings and publishes it as a CSV and a small static site.
//
// THE PIPELINE:
//   1. Name scan pairs each pushed string with the code assigned after it
//   2. Overrides patch names the scan is known to mangle
//   3. Definition scan fuses the string fragments of each compare block
//   4. Merger numbers the rows and flags gaps with "(No definition found)"
//   5. CUE Validator enforces the snapshot contract (crash on mismatch)
//   6. CSV, JSON snapshot and HTML pages are written
//
// WHEN A DESCRIPTION LOOKS WRONG:
//   Start at the beginning of the pipeline, not the end!
//   Listing dialect → Extractor → Overrides → Merger
// =============================================================================

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robert-at-pretension-io/tew-attrs/internal/config"
	"github.com/robert-at-pretension-io/tew-attrs/internal/facts"
	"github.com/robert-at-pretension-io/tew-attrs/internal/pipeline"
)

// app holds the persistent flags and the logger shared by every command
type app struct {
	configPath string
	verbose    bool
	timing     bool

	logger    *zap.Logger
	newLogger func(verbose bool) (*zap.Logger, error)
}

func main() {
	a := &app{newLogger: productionLogger}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func productionLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tew-attrs",
		Short: "Extract TEW worker attributes from disassembly listings",
		Long: `tew-attrs pairs attribute names with their definitions from two
disassembly listings of the TEW executable, writes them as a CSV and renders
a searchable HTML site from a categorized copy of that CSV.

Configuration is read from (first match wins):
  1. ./tew_attrs.json, ./tew_attrs.yaml, ./tew_attrs.yml
  2. ./.tew_attrs.json
  3. ~/.config/tew_attrs/config.json

Run 'tew-attrs init' to create a default configuration file.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: search the usual locations)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.timing, "timing", false, "write stage timings as JSONL to <output>/timing.jsonl")

	root.AddCommand(
		newInitCmd(a),
		newExtractCmd(a),
		newRenderCmd(a),
		newBuildCmd(a),
		newFactsCmd(a),
	)
	return root
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		cfg, err := config.LoadFile(a.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", a.configPath, err)
		}
		return cfg, nil
	}
	return config.Load()
}

func (a *app) pipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	p := pipeline.New(cfg, a.logger)
	p.Out = cmd.OutOrStdout()
	p.Timing = a.timing
	return p, nil
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a tew_attrs.json configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := config.FileName
			if a.configPath != "" {
				configPath = a.configPath
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(configPath); err == nil {
				fmt.Fprintf(out, "Config file %s already exists. Overwrite? [y/N]: ", configPath)
				var response string
				_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
				if response != "y" && response != "Y" {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			if err := config.DefaultConfig().Save(configPath); err != nil {
				return fmt.Errorf("creating config: %w", err)
			}

			fmt.Fprintf(out, "Created %s\n", configPath)
			fmt.Fprintln(out, "\nEdit this file to configure:")
			fmt.Fprintln(out, "  - Listing file names and encoding")
			fmt.Fprintln(out, "  - Name overrides for codes the scan mangles")
			fmt.Fprintln(out, "  - The disassembler dialect (code variable, concat routine, register)")
			return nil
		},
	}
}

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract attributes and write the CSV (and fact snapshot)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(cmd)
			if err != nil {
				return err
			}
			_, err = p.Run()
			return err
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render [csv]",
		Short: "Render the HTML site from a categorized CSV",
		Long: `Render the index page and one page per category from a categorized CSV.
Without an argument the CSV named by inputs.categorized is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(cmd)
			if err != nil {
				return err
			}
			path := p.Config.Resolve(p.Config.Inputs.Categorized)
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no categorized CSV given and inputs.categorized is not set")
			}
			if err := p.RenderFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Site written to %s\n", p.Config.OutputDir())
			return nil
		},
	}
}

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Extract, write the CSV and snapshot, then render the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(cmd)
			if err != nil {
				return err
			}
			if _, err := p.Build(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Site written to %s\n", p.Config.OutputDir())
			return nil
		},
	}
}

func newFactsCmd(a *app) *cobra.Command {
	var (
		outputPath string
		deltaFrom  string
		deltaOut   string
	)
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print or write the fact snapshot and its delta against an older one",
		Long: `Extract and validate without writing the CSV, then emit the snapshot.
With --delta-from, the rows added and removed since that snapshot are emitted
instead (or as well, when the snapshot goes to --output).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deltaOut != "" && deltaFrom == "" {
				return fmt.Errorf("--delta-out requires --delta-from")
			}
			p, err := a.pipeline(cmd)
			if err != nil {
				return err
			}
			res, err := p.Snapshot()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if outputPath != "" {
				if err := pipeline.WriteTables(outputPath, res.Tables); err != nil {
					return err
				}
				a.logger.Info("fact snapshot written", zap.String("path", outputPath))
			} else if deltaFrom == "" {
				return printJSON(out, res.Tables)
			}

			if deltaFrom == "" {
				return nil
			}
			prev, err := pipeline.ReadTables(deltaFrom)
			if err != nil {
				return fmt.Errorf("reading previous snapshot: %w", err)
			}
			delta := facts.ComputeDelta(prev, res.Tables)
			a.logger.Info("delta computed",
				zap.String("from", deltaFrom),
				zap.Int("added", len(delta.Added.Attributes)),
				zap.Int("removed", len(delta.Removed.Attributes)),
				zap.Bool("empty", delta.Empty()))

			if deltaOut != "" {
				return pipeline.WriteTables(deltaOut, delta)
			}
			return printJSON(out, delta)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the snapshot to this file instead of stdout")
	cmd.Flags().StringVar(&deltaFrom, "delta-from", "", "previous snapshot to diff against")
	cmd.Flags().StringVar(&deltaOut, "delta-out", "", "write the delta to this file instead of stdout")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
