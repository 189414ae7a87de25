package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/chazu/masonry/pkg/build"
)

// watchDebounce coalesces the bursts of events editors emit on save.
const watchDebounce = 200 * time.Millisecond

func newWatchCmd() *cobra.Command {
	opts := buildOpts{}
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch <script>",
		Short: "Rebuild a scene script whenever it changes",
		Long: `Build a scene script once, then rebuild it every time the file is saved.
Build errors are reported and watching continues. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			p, err := build.New(configFromContext(cmd.Context()), logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if metricsAddr != "" {
				ln, err := net.Listen("tcp", metricsAddr)
				if err != nil {
					return fmt.Errorf("metrics: %w", err)
				}
				go serveMetrics(ctx, ln, logger)
			}
			return watch(ctx, p, args[0], opts, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().BoolVar(&opts.mesh, "mesh", false, "tessellate records into meshes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON to a file on every build")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")

	return cmd
}

// watch rebuilds path on every change until ctx is done. The parent
// directory is watched because many editors replace the file on save.
func watch(ctx context.Context, p *build.Pipeline, path string, opts buildOpts, stdout io.Writer, logger *log.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	rebuild := func() {
		if err := runBuild(p, abs, opts, stdout, logger); err != nil {
			logger.Warn("build failed", "err", err)
		}
	}
	rebuild()
	logger.Info("watching", "script", path)

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event, abs) {
				continue
			}
			logger.Debug("script changed", "op", event.Op.String())
			debounce.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)

		case <-debounce.C:
			rebuild()
		}
	}
}

// relevant reports whether event rewrote the script at abs.
func relevant(event fsnotify.Event, abs string) bool {
	if filepath.Clean(event.Name) != abs {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
