// Command cedar evaluates authorization requests against Cedar
// policies, formats policy files, and checks policies and entities
// against a schema.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:                   "cedar",
	Short:                 "Policy-based authorization engine",
	DisableFlagsInUseLine: true,
	SilenceUsage:          true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a cedar.yaml config holding default policy/entity/schema paths")
	rootCmd.AddCommand(buildAuthorizeCommand())
	rootCmd.AddCommand(buildFormatCommand())
	rootCmd.AddCommand(buildCheckCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
