package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the environment a spawned command would receive",
	Args:  cobra.NoArgs,
	RunE:  runEnv,
}

func init() {
	addEnvFlags(envCmd)
	rootCmd.AddCommand(envCmd)
}

func runEnv(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The path is never executed here.
	b, err := newBuilder(rootCmd.Name(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, kv := range b.Build().Environ() {
		if _, err := fmt.Fprintln(out, kv); err != nil {
			return err
		}
	}
	return nil
}
