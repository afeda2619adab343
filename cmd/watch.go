package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/sitegen/internal/build"
	"github.com/conneroisu/sitegen/internal/config"
	"github.com/conneroisu/sitegen/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Build the site and rebuild it whenever a source file changes",
	Long: `Build the site once, then watch the source directory and rebuild after
every burst of changes. Build errors are reported and watching continues.

Examples:
  sitegen watch                   # Watch the current directory
  sitegen watch --delay 500ms     # Wait longer for changes to settle
  sitegen watch -l debug          # Log every rendered output`,
	RunE: runWatch,
}

var watchDelay time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDelay, "delay", 300*time.Millisecond, "Quiet period before a rebuild starts")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := loadSite(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := filepath.Abs(s.cfg.Source)
	if err != nil {
		return fmt.Errorf("resolving source directory: %w", err)
	}

	fileWatcher, err := watcher.NewFileWatcher(watchDelay, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	configFile := configFilePath()

	session := newWatchSession(s, root, configFile)
	fileWatcher.AddDirFilter(watcher.NoGitFilter)
	fileWatcher.AddDirFilter(watcher.ExcludeDirFilter(s.output))
	fileWatcher.AddFilter(watcher.NoEditorFilter)
	fileWatcher.AddFilter(session.accepts)

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		s.logger.Info(ctx, "Changes detected", "files", len(events), "first", events[0].Path)
		if configFile != "" && touches(events, configFile) {
			session.reload(ctx, cmd)
		}
		session.rebuild(ctx)
		return nil
	})

	if err := fileWatcher.AddRecursive(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	if configFile != "" && !within(root, configFile) {
		if err := fileWatcher.AddPath(filepath.Dir(configFile)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", configFile, err)
		}
	}

	session.rebuild(ctx)

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (press Ctrl+C to stop)\n", root)
	<-ctx.Done()

	snapshot := session.metrics.GetSnapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "Stopped after %d builds (%d failed, average %s)\n",
		snapshot.TotalBuilds, snapshot.FailedBuilds, snapshot.AverageDuration.Round(time.Millisecond))

	return nil
}

// watchSession serializes rebuilds and keeps their metrics.
type watchSession struct {
	site       *site
	root       string
	configFile string
	metrics    *build.BuildMetrics
	mu         sync.Mutex

	// filter is read by the watch loop while a rebuild holds mu.
	filter   watcher.FileFilter
	filterMu sync.RWMutex
}

func newWatchSession(s *site, root, configFile string) *watchSession {
	return &watchSession{
		site:       s,
		root:       root,
		configFile: configFile,
		filter:     contentFilter(s.cfg, root, configFile),
		metrics:    build.NewBuildMetrics(),
	}
}

// contentFilter accepts the files a build reads: the content directories,
// every static directory, the CNAME marker and the config file.
func contentFilter(cfg *config.Config, root, configFile string) watcher.FileFilter {
	dirs := append([]string{cfg.Pages, cfg.Partials, cfg.Layouts, cfg.Data}, cfg.Static...)
	return watcher.ContentFilter(root, dirs, []string{config.CustomDomainMarker, configFile})
}

func (w *watchSession) accepts(path string) bool {
	w.filterMu.RLock()
	filter := w.filter
	w.filterMu.RUnlock()
	return filter(path)
}

// reload re-reads the configuration. A valid configuration replaces the
// site and starts the metrics over; an invalid one keeps the previous site.
func (w *watchSession) reload(ctx context.Context, cmd *cobra.Command) {
	initConfig()
	s, err := loadSite(cmd)
	if err != nil {
		w.site.logger.Error(ctx, err, "Configuration reload failed, keeping previous settings")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if s.output != w.site.output {
		s.logger.Warn(ctx, nil, "Output directory changes take effect after restarting watch",
			"output", w.site.output)
		s.output = w.site.output
	}
	w.site = s
	w.filterMu.Lock()
	w.filter = contentFilter(s.cfg, w.root, w.configFile)
	w.filterMu.Unlock()
	w.metrics.Reset()
	s.logger.Info(ctx, "Configuration reloaded", "config_file", w.configFile)
}

// rebuild runs one build. A failure is logged and the session carries on.
func (w *watchSession) rebuild(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	result, err := buildSite(ctx, w.site, false)
	w.metrics.RecordBuild(result, err)
	if err != nil {
		w.site.logger.Error(ctx, err, "Build failed, waiting for changes")
		return
	}

	w.site.logger.Info(ctx, "Build succeeded",
		"outputs", len(result.Manifest),
		"duration_ms", result.Duration.Milliseconds(),
		"success_rate", w.metrics.GetSuccessRate(),
	)
}

// configFilePath returns the absolute path of the config file in use, if any.
func configFilePath() string {
	used := viper.ConfigFileUsed()
	if used == "" {
		return ""
	}
	abs, err := filepath.Abs(used)
	if err != nil {
		return used
	}
	return abs
}

func touches(events []watcher.ChangeEvent, path string) bool {
	for _, e := range events {
		if filepath.Clean(e.Path) == path {
			return true
		}
	}
	return false
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
