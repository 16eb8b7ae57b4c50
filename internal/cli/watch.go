package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce absorbs editor write bursts (truncate + write + rename)
// into a single regeneration.
const watchDebounce = 200 * time.Millisecond

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchConfigPath, "config", "abacgen.yaml", "path to synthesis config")
	watchCmd.Flags().StringVar(&watchOutPath, "out", "generated_policies.sql", "output SQL script path")
	watchCmd.Flags().IntVar(&watchMaxRules, "max-rules", 0, "rule budget override (0 = use config)")
	watchCmd.Flags().Int64Var(&watchSeed, "seed", 0, "random seed override")
}

var (
	watchConfigPath string
	watchOutPath    string
	watchMaxRules   int
	watchSeed       int64
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the seed script whenever the config changes",
	Long:  "Watches the config file and reruns synthesis on every change.\nA failed regeneration is reported and watching continues.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ov := overrides{
			maxRules:    watchMaxRules,
			maxRulesSet: cmd.Flags().Changed("max-rules"),
			seed:        watchSeed,
			seedSet:     cmd.Flags().Changed("seed"),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Initial pass: a broken config is fatal here, matching generate.
		stats, err := generateOnce(watchConfigPath, watchOutPath, ov)
		if err != nil {
			return err
		}
		printStats(cmd, stats, watchOutPath)

		return watchLoop(ctx, cmd, ov)
	},
}

// watchLoop blocks until ctx is cancelled, regenerating after each
// debounced change to the config file. The parent directory is watched
// rather than the file itself so rename-style saves keep working.
func watchLoop(ctx context.Context, cmd *cobra.Command, ov overrides) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(watchConfigPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(watchConfigPath)

	// Single debounce timer, reset on each event. Starts stopped.
	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounce.C:
			stats, err := generateOnce(watchConfigPath, watchOutPath, ov)
			if err != nil {
				fmt.Fprintf(os.Stderr, "regenerate: %v\n", err)
				continue
			}
			printStats(cmd, stats, watchOutPath)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		}
	}
}
