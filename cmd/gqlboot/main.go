// Command gqlboot compiles schema models into GraphQL schemas and serves them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	config "github.com/hanpama/gqlboot/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gqlboot",
		Short: "Compile schema models into executable GraphQL schemas",
		Long: `gqlboot turns a declarative schema model (YAML or JSON) into a GraphQL
schema with its data fetchers, batch loaders and type resolvers wired.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (YAML)")
	root.PersistentFlags().StringP("model", "m", "", "schema model file (YAML or JSON)")
	config.RegisterFlags(root.PersistentFlags())
	_ = root.MarkPersistentFlagRequired("model")

	root.AddCommand(newCompileCmd())
	root.AddCommand(newServeCmd())
	return root
}

// loadConfig reads configuration for cmd, honouring flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}
