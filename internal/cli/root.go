package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/agentx-labs/wsgen/internal/branding"
	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/logging"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	verbosity int
	log       = logging.Nop()
)

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` reads project and workspace manifests, resolves them into a
dependency graph and generates a ready-to-build workspace from it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		l, err := newLogger(cmd, viper.GetViper())
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// newLogger builds the process logger. The -v flag overrides the configured
// verbosity.
func newLogger(cmd *cobra.Command, v *viper.Viper) (*zap.SugaredLogger, error) {
	cfg := logging.Config{
		Verbosity: v.GetInt(config.KeyVerbosity),
		JSON:      v.GetBool(config.KeyLogJSON),
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbosity = verbosity
	}
	return logging.New(cfg)
}

// Execute runs the root command with build info injected via ldflags.
// Errors are printed to stderr together with any hints they carry.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hints := errors.FlattenHints(withHints(err)); hints != "" {
		fmt.Fprintf(w, "Hint: %s\n", hints)
	}
}
