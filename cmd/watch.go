package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brettadin/Anything-SpecApp/internal/logging"
	"github.com/brettadin/Anything-SpecApp/internal/watch"
)

var (
	watchExisting bool
	watchFor      time.Duration
	watchDesc     string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest files as they land in a directory until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if watchFor > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, watchFor)
			defer cancel()
		}

		out := cmd.OutOrStdout()
		var mu sync.Mutex
		handle := func(path string) {
			mu.Lock()
			defer mu.Unlock()
			d, err := ingestFile(s, path, watchDesc)
			if err != nil {
				logger.Warn("skipped file", logging.Fields{"file": path, "error": err.Error()})
				return
			}
			printIngested(out, d, false)
		}

		if watchExisting {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("read dir: %w", err)
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				handle(filepath.Join(dir, e.Name()))
			}
		}

		w, err := watch.New(time.Duration(c.WatchDebounceMs)*time.Millisecond, logger)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer w.Stop()
		if err := w.Watch(dir, handle); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Info("watching for new files", logging.Fields{"dir": dir})
		<-ctx.Done()
		return w.Stop()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "ingest files already present before watching")
	watchCmd.Flags().DurationVar(&watchFor, "for", 0, "stop after this long (default: until interrupted)")
	watchCmd.Flags().StringVar(&watchDesc, "desc", "", "description applied to every dataset")
}
