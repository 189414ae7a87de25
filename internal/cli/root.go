// Package cli implements the masonry command-line interface.
//
// # Commands
//
//   - build: evaluate a scene script and export its records
//   - watch: rebuild a scene script whenever it changes
//
// All commands support --verbose (-v) for debug-level logging, --config
// for a TOML or YAML settings file and --policy to override the aperture
// policy. The logger and the loaded config travel through context.Context.
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chazu/masonry/pkg/config"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version. It is
// normally called from main with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// options are the persistent flags shared by every command.
type options struct {
	verbose    bool
	configPath string
	policy     string
}

// load resolves the effective config: defaults, then the config file,
// then the --policy flag.
func (o *options) load() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.policy != "" {
		cfg.Policy = o.policy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the masonry CLI with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "masonry",
		Short:        "masonry builds box-and-aperture scenes into exportable geometry",
		Long:         `masonry evaluates scene scripts made of boxes, apertures and attachments, and exports each box as a set of solids for a renderer.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			level := cfg.LogLevel()
			if opts.verbose {
				level = log.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("masonry %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	root.PersistentFlags().StringVarP(&opts.policy, "policy", "p", "", "aperture policy: decompose or boolean")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newWatchCmd())

	return root
}
