package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rigconvert/internal/asset"
	"rigconvert/internal/assetstore"
	"rigconvert/internal/converr"
	"rigconvert/internal/logging"
	"rigconvert/internal/pipeline"
	"rigconvert/internal/preflight"
	"rigconvert/internal/runctx"
)

type convertSummary struct {
	RunID      string           `json:"run_id"`
	DryRun     bool             `json:"dry_run"`
	Rig        asset.ID         `json:"rig_id"`
	RigPath    string           `json:"rig_path"`
	Converted  []convertedAsset `json:"converted"`
	Passed     int              `json:"passed_through"`
	Rebinds    int              `json:"rebinds"`
	DurationMS int64            `json:"duration_ms"`
}

type convertedAsset struct {
	Kind   asset.Kind `json:"kind"`
	Source asset.ID   `json:"source"`
	Name   string     `json:"name"`
	Target asset.ID   `json:"target"`
	Path   string     `json:"path"`
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var outputRoot string
	var jsonOut bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "convert <rig>",
		Short: "Convert a rig and write the converted graph into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, r := range failed {
					names = append(names, fmt.Sprintf("%s: %s", r.Name, r.Detail))
				}
				return converr.Wrap(converr.ErrConfiguration, "preflight", "run checks", strings.Join(names, "; "), nil)
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			runID := uuid.NewString()
			if cfg.Logging.RunLogs {
				handler, closer, err := logging.OpenRunLog(cfg.Paths.LogDir, runID, "debug")
				if err != nil {
					return err
				}
				defer closeQuietly(closer)
				logger = logging.TeeLogger(logger, handler)
				logging.PruneRunLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, runID)
			}

			opts := pipeline.OptionsFromConfig(cfg)
			if strings.TrimSpace(outputRoot) != "" {
				opts.OutputRoot = assetstore.CleanPath(outputRoot)
			}

			run := func() error {
				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer closeQuietly(store)

				var target asset.Store = store
				if dryRun {
					target = assetstore.NewOverlay(store)
				}
				rigID, err := resolveAsset(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}

				observers := []pipeline.Observer{pipeline.LogObserver(logger)}
				if !jsonOut && !quiet {
					observers = append(observers, progressPrinter(cmd.ErrOrStderr()))
				}
				runCtx := runctx.WithRunID(cmd.Context(), runID)
				result, err := pipeline.New(target, opts, logger, pipeline.Observers(observers...)).Convert(runCtx, rigID)
				if err != nil {
					return err
				}
				return printConvertResult(cmd, result, dryRun, jsonOut)
			}
			if dryRun {
				return run()
			}
			return ctx.withWriteLock(run)
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Run the conversion in memory without writing to the store")
	cmd.Flags().StringVar(&outputRoot, "output-root", "", "Override the configured output directory inside the store")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-asset progress lines")
	return cmd
}

// progressPrinter writes one line per finished asset.
func progressPrinter(w io.Writer) pipeline.Observer {
	return pipeline.ObserverFunc(func(e pipeline.Event) {
		if e.Phase == pipeline.PhaseStart {
			return
		}
		fmt.Fprintf(w, "[%s %d/%d] %s %s\n", e.Stage, e.Index+1, e.Total, e.Name, e.Phase)
	})
}

func printConvertResult(cmd *cobra.Command, result *pipeline.Result, dryRun, jsonOut bool) error {
	summary := convertSummary{
		RunID:      result.RunID,
		DryRun:     dryRun,
		Rig:        result.Rig,
		RigPath:    result.RigPath,
		Passed:     len(result.Passed),
		Rebinds:    len(result.Changes),
		DurationMS: result.Duration.Milliseconds(),
	}
	for _, e := range result.Converted {
		summary.Converted = append(summary.Converted, convertedAsset{
			Kind: e.Kind, Source: e.Source, Name: e.SourceName, Target: e.Target, Path: e.Path,
		})
	}
	if jsonOut {
		return writeJSON(cmd, summary)
	}

	out := cmd.OutOrStdout()
	if len(summary.Converted) > 0 {
		rows := make([][]string, 0, len(summary.Converted))
		for _, c := range summary.Converted {
			rows = append(rows, []string{c.Kind.Label(), c.Name, c.Target.Short(), c.Path})
		}
		fmt.Fprintln(out, renderTable([]string{"Kind", "Source", "Converted", "Path"}, rows, nil))
	}
	converted, passed := result.Counts()
	countRows := make([][]string, 0, len(asset.Kinds()))
	for _, kind := range asset.Kinds() {
		if kind == asset.KindRig {
			continue
		}
		countRows = append(countRows, []string{kind.Label(), fmt.Sprint(converted[kind]), fmt.Sprint(passed[kind])})
	}
	fmt.Fprintln(out, renderTable([]string{"Kind", "Converted", "Passed"}, countRows, []columnAlignment{alignLeft, alignRight, alignRight}))
	fmt.Fprintf(out, "Converted rig: %s (%s)\n", result.RigPath, result.Rig)
	fmt.Fprintf(out, "Rebound %d references in %s\n", len(result.Changes), result.Duration.Round(time.Millisecond))
	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing was written to the store")
	}
	return nil
}
