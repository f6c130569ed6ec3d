package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/emit"
	"github.com/agentx-labs/wsgen/internal/generator"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/agentx-labs/wsgen/internal/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

var (
	generateDirectory string
	generateFormat    string
	generateWatch     bool
)

func init() {
	generateCmd.Flags().StringVar(&generateDirectory, "directory", "", "Where to generate: manifest or derived (default from config)")
	generateCmd.Flags().StringVar(&generateFormat, "format", "", "Descriptor format: yaml or json (default from config)")
	generateCmd.Flags().BoolVar(&generateWatch, "watch", false, "Regenerate whenever a manifest changes")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate a workspace from the manifests at path",
	Long: `Generate a workspace from the manifests at path (default: current directory).

A workspace manifest takes precedence over a project manifest in the same
directory. For a project manifest, the generated workspace contains the
project and every project it depends on.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := locationArg(args)
		if err != nil {
			return err
		}
		cfg, err := generationConfig(cmd, viper.GetViper())
		if err != nil {
			return err
		}
		gen := newGenerator(cfg, log)

		if generateWatch {
			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for manifest changes (Ctrl+C to stop)\n", path)
			return watch.New(gen, path, cfg, log).Run(ctx)
		}

		out, err := gen.Generate(contextOf(cmd), path, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// generationConfig reads the configured generation settings and applies
// command line overrides.
func generationConfig(cmd *cobra.Command, v *viper.Viper) (config.Generation, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return config.Generation{}, err
	}
	if cmd.Flags().Changed("directory") {
		if cfg.Directory, err = config.ParseDirectory(generateDirectory); err != nil {
			return config.Generation{}, err
		}
	}
	if cmd.Flags().Changed("format") {
		if cfg.Options.Format, err = config.ParseFormat(generateFormat); err != nil {
			return config.Generation{}, err
		}
	}
	if verbosity > 0 {
		cfg.Options.Verbose = true
	}
	return cfg, nil
}

// newGenerator wires the generator to manifests and artifacts on the local
// filesystem.
func newGenerator(cfg config.Generation, log *zap.SugaredLogger) *generator.Generator {
	fs := afs.New()
	models := manifest.NewFileLoader(fs, log)
	return generator.New(generator.Deps{
		Detector: models,
		Graphs:   graph.NewLoader(models, log),
		Emitter:  emit.New(fs, cfg.DerivedRoot, log),
		Log:      log,
	})
}

// locationArg returns the absolute location named by the optional path
// argument.
func locationArg(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	return manifest.Abs(path)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
