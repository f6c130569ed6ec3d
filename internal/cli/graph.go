package cli

import (
	"io"

	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var graphFormat string

func init() {
	graphCmd.Flags().StringVar(&graphFormat, "format", "tree", "Output format: tree or dot")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Print the dependency graph of the manifests at path",
	Long: `Resolve the manifests at path and print the dependency graph without
generating anything. Use --format dot for Graphviz input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		write, err := graphWriter(graphFormat)
		if err != nil {
			return err
		}
		path, err := locationArg(args)
		if err != nil {
			return err
		}
		cfg, err := generationConfig(cmd, viper.GetViper())
		if err != nil {
			return err
		}
		_, g, err := newGenerator(cfg, log).Load(contextOf(cmd), path)
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), g)
	},
}

func graphWriter(format string) (func(io.Writer, *graph.Graph) error, error) {
	switch format {
	case "tree", "":
		return graph.WriteTree, nil
	case "dot":
		return graph.WriteDOT, nil
	default:
		return nil, errors.WithHint(errors.Newf("unknown graph format %q", format), "valid values are: tree, dot")
	}
}
