package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/verilog-tools/vlint/internal/runner"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Re-lint on every file change",
	Long: `Watch a directory tree and re-run the analyzer whenever a Verilog file
changes. Events are debounced so editor save bursts trigger one run.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, root); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	r := runner.New(cfg)

	lintOnce := func() {
		result, err := r.Run(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if verbose {
			result.RenderFiles(os.Stdout)
		}
		result.RenderText(os.Stdout)
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n\n", root)
	lintOnce()

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	var timer *time.Timer
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isVerilogFile(ev.Name) {
				if ev.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = watcher.Add(ev.Name)
					}
				}
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, lintOnce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func isVerilogFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".v" || ext == ".sv"
}
