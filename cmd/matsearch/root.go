package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/matsearch/internal/config"
	"github.com/kailas-cloud/matsearch/internal/version"
)

func newRootCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:           "matsearch",
		Short:         "Natural-language material search over a procurement catalog",
		Version:       version.Version,
		SilenceUsage:  true,
	}
	cmd.SetVersionTemplate("matsearch version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(),
		"Config environment; reads config/<env>.yaml (local, docker, prod)")

	cmd.AddCommand(
		newServeCmd(&env),
		newIngestCmd(&env),
		newSearchCmd(&env),
		newVersionCmd(),
	)
	return cmd
}
