package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/chazu/masonry/pkg/build"
)

type buildOpts struct {
	json   bool
	mesh   bool
	output string
}

func newBuildCmd() *cobra.Command {
	opts := buildOpts{}
	var metrics bool

	cmd := &cobra.Command{
		Use:   "build <script>",
		Short: "Evaluate a scene script and export its records",
		Long: `Evaluate a scene script, validate the scene and export one record per
reachable box under the configured aperture policy.

By default a summary table is printed. With --json the full result is
written as JSON; --mesh adds triangle meshes to it. --metrics prints the
export counters in the Prometheus text format to stderr.`,
		Example: `  masonry build examples/house.masonry
  masonry build --policy boolean --json --mesh -o house.json examples/house.masonry`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			p, err := build.New(configFromContext(cmd.Context()), logger)
			if err != nil {
				return err
			}
			err = runBuild(p, args[0], opts, cmd.OutOrStdout(), logger)
			if metrics {
				if werr := writeMetrics(cmd.ErrOrStderr(), prometheus.DefaultGatherer); werr != nil && err == nil {
					err = werr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "write the result as JSON")
	cmd.Flags().BoolVar(&opts.mesh, "mesh", false, "tessellate records into meshes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON to a file instead of stdout")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print export metrics to stderr after the build")

	return cmd
}

// runBuild builds path once and reports the result. Build errors are
// logged and turned into a single returned error.
func runBuild(p *build.Pipeline, path string, opts buildOpts, stdout io.Writer, logger *log.Logger) error {
	prog := newProgress(logger)
	res, err := p.RunFile(path, opts.mesh)
	if err != nil {
		return err
	}

	for _, e := range res.Errors {
		logger.Error(e.Message, "line", e.Line, "box", e.Box)
	}

	if opts.json || opts.output != "" {
		if err := writeJSON(res, opts.output, stdout); err != nil {
			return err
		}
	} else {
		fmt.Fprint(stdout, renderSummary(res))
	}

	if !res.OK() {
		return fmt.Errorf("build %s: %d errors", path, len(res.Errors))
	}
	prog.done(fmt.Sprintf("Built %s", filepath.Base(path)))
	return nil
}

func writeJSON(res *build.Result, output string, stdout io.Writer) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')
	if output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}
