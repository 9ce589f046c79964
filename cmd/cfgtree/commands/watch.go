package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/internal/logging"
	"github.com/thoreinstein/cfgtree/pkg/config"
)

// watchCount holds the value of the watch --count flag.
var watchCount int

func init() {
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 0,
		"exit after this many changes (0 watches until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <file> <path>",
	Short: "Print a value whenever it changes on disk",
	Long: `Print the value at a path, then print it again each time the file is
changed so that the value differs. Press Ctrl+C to stop.`,
	Example: `  cfgtree watch config.yaml server.port
  cfgtree watch config.toml feature.flags --count 1`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completePath,
	RunE:              runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, path, err := openConfig(cmd, args[0])
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewSystemError(errors.Wrap(err, "creating file watcher"), "")
	}
	defer w.Close()

	// Editors often replace the file instead of writing it in place, so the
	// directory is watched rather than the file.
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "watching %s", path), "")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	changes := make(chan struct{}, 1)
	go forwardEvents(ctx, w, abs, changes)

	return watchValue(ctx, cfg, args[1], changes, cmd.OutOrStdout(), watchCount)
}

// forwardEvents signals changes for each write, create or rename of file.
// Signals are coalesced while the reader is busy.
func forwardEvents(ctx context.Context, w *fsnotify.Watcher, file string, changes chan<- struct{}) {
	log := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != file || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Debug("file event", "path", ev.Name, "op", ev.Op.String())
			select {
			case changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("watching file", "error", err)
		}
	}
}

// watchValue prints the value at path, then reloads cfg on every signal from
// changes and prints the value again when it differs. It returns after count
// changes when count is positive, or when ctx is done or changes is closed.
func watchValue(ctx context.Context, cfg *config.Config, path string, changes <-chan struct{}, out io.Writer, count int) error {
	last, _, err := cfg.Find(path)
	if err != nil {
		return classify(err, cfg.Resource().Name())
	}
	fmt.Fprintf(out, "%s = %s\n", path, inline(last))

	log := logging.FromContext(ctx)
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
		}

		if err := cfg.Reload(); err != nil {
			// A half-written file is common while an editor saves.
			log.Warn("reloading configuration", "path", cfg.Resource().Name(), "error", err)
			continue
		}
		cur, _, err := cfg.Find(path)
		if err != nil {
			log.Warn("reading configuration value", "path", path, "error", err)
			continue
		}
		if cur.Equal(last) {
			continue
		}

		fmt.Fprintf(out, "%s = %s\n", path, inline(cur))
		last = cur
		seen++
		if count > 0 && seen >= count {
			return nil
		}
	}
}
