package cli

import (
	"fmt"
	"strings"

	"github.com/agentx-labs/wsgen/internal/branding"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/agentx-labs/wsgen/internal/scaffold"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	initWorkspace bool
	initName      string
	initProduct   string
	initNoTests   bool
	initGitignore bool
)

var products = []string{
	manifest.ProductApp,
	manifest.ProductFramework,
	manifest.ProductLibrary,
	manifest.ProductTool,
}

func init() {
	initCmd.Flags().BoolVar(&initWorkspace, "workspace", false, "Create a workspace manifest listing the projects below path")
	initCmd.Flags().StringVar(&initName, "name", "", "Project or workspace name (default: directory name)")
	initCmd.Flags().StringVar(&initProduct, "product", manifest.ProductApp, "Product of the main target: "+strings.Join(products, ", "))
	initCmd.Flags().BoolVar(&initNoTests, "no-tests", false, "Do not add a tests target")
	initCmd.Flags().BoolVar(&initGitignore, "gitignore", true, "Add generated artifact patterns to .gitignore")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter manifest",
	Long: `Create a starter manifest at path (default: current directory).

Without flags, creates project.yaml with a main target and a tests target.
With --workspace, creates workspace.yaml listing every project found below path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := locationArg(args)
		if err != nil {
			return err
		}
		ctx := contextOf(cmd)
		out := cmd.OutOrStdout()

		data := scaffold.NewData(initName, dir)
		kind := manifest.KindProject
		if initWorkspace {
			kind = manifest.KindWorkspace
			if data.Projects, err = scaffold.DiscoverProjects(ctx, dir); err != nil {
				return err
			}
		} else {
			if !validProduct(initProduct) {
				return errors.WithHintf(errors.Newf("unknown product %q", initProduct),
					"valid values are: %s", strings.Join(products, ", "))
			}
			data.Product = initProduct
			data.Tests = !initNoTests
		}

		result, err := scaffold.Generate(ctx, kind, data, dir)
		if err != nil {
			return err
		}

		for _, f := range result.Files {
			fmt.Fprintf(out, "Created %s\n", f)
		}
		if initWorkspace {
			fmt.Fprintf(out, "Listed %d projects\n", len(data.Projects))
		}
		if initGitignore {
			added, err := scaffold.EnsureGitignore(dir)
			if err != nil {
				return err
			}
			if len(added) > 0 {
				fmt.Fprintf(out, "Updated .gitignore: %s\n", strings.Join(added, " "))
			}
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
		}
		fmt.Fprintf(out, "Run '%s generate' to generate the workspace.\n", branding.CLIName())
		return nil
	},
}

func validProduct(p string) bool {
	for _, known := range products {
		if p == known {
			return true
		}
	}
	return false
}
