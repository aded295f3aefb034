// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/katalvlaran/magfield/kernel"
	"github.com/katalvlaran/magfield/scene"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// debounceDur batches the burst of events an editor save produces.
const debounceDur = 100 * time.Millisecond

type evalFlags struct {
	scene     string
	quantity  string
	noSqueeze bool
	workers   int
	watch     bool
}

func newEvalCmd(a *app) *cobra.Command {
	f := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a scene file and print the field as JSON",
		Long: `Loads a YAML scene, computes its field and prints one JSON result.

With --watch the scene is evaluated again whenever the file changes, one
JSON document per evaluation, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run := func() error { return evalOnce(cmd.Context(), a.logger, f, cmd.OutOrStdout()) }
			if !f.watch {
				return run()
			}
			if err := run(); err != nil {
				a.logger.Error("evaluation failed", zap.String("scene", f.scene), zap.Error(err))
			}
			return watchScene(cmd.Context(), f.scene, a.logger, run)
		},
	}
	cmd.Flags().StringVarP(&f.scene, "scene", "s", "", "scene file (YAML)")
	cmd.Flags().StringVarP(&f.quantity, "field", "f", "", "B or H (overrides the scene)")
	cmd.Flags().BoolVar(&f.noSqueeze, "no-squeeze", false, "keep size-1 axes")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "concurrent sources (overrides the scene)")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "re-evaluate when the scene file changes")
	_ = cmd.MarkFlagRequired("scene")

	return cmd
}

// evalOnce loads, evaluates and prints the scene.
func evalOnce(ctx context.Context, logger *zap.Logger, f *evalFlags, out io.Writer) error {
	s, err := scene.Load(f.scene)
	if err != nil {
		return err
	}
	if f.quantity != "" {
		q, err := kernel.ParseQuantity(f.quantity)
		if err != nil {
			return err
		}
		s.Quantity = q.String()
	}
	if f.noSqueeze {
		s.Squeeze = false
	}
	if f.workers > 0 {
		s.Workers = f.workers
	}
	res, err := s.Evaluate(ctx, logger)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}

// watchScene calls eval after every settled change of path until ctx is
// done. Evaluation errors are logged, not returned.
func watchScene(ctx context.Context, path string, logger *zap.Logger, eval func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory and filter.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	logger.Info("watching scene", zap.String("scene", target))

	timer := time.NewTimer(debounceDur)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped", zap.String("scene", target))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("scene changed", zap.String("op", event.Op.String()))
			timer.Reset(debounceDur)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if err := eval(); err != nil {
				logger.Error("evaluation failed", zap.String("scene", target), zap.Error(err))
			}
		}
	}
}
