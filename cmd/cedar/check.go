package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charbonnierg/cedar"
	"github.com/charbonnierg/cedar/schema"
)

func buildCheckCommand() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:                   "check",
		Short:                 "Validate policies and entities against a schema",
		Example:               "cedar check -p policies.cedar -e entities.json -s schema.json",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doCheckCommand()
		},
	}
	checkCmd.Flags().StringVarP(&policiesFile, "policies", "p", "", "Cedar policy file")
	checkCmd.Flags().StringVarP(&entitiesFile, "entities", "e", "", "Entities JSON file")
	checkCmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "Schema JSON file")
	return checkCmd
}

func doCheckCommand() error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	schemaPath := resolvePath(schemaFile, cfg.Schema)
	if schemaPath == "" {
		return fmt.Errorf("no schema file: pass --schema or set `schema` in %s", DefaultConfigFile)
	}
	s, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}

	failed := false
	if path := resolvePath(policiesFile, cfg.Policies); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ps, err := cedar.NewPolicySetFromBytes(path, raw)
		if err != nil {
			return err
		}
		failed = reportResult("policies", cedar.ValidatePolicies(s, ps)) || failed
	}
	if path := resolvePath(entitiesFile, cfg.Entities); path != "" {
		entities, err := loadEntities(path)
		if err != nil {
			return err
		}
		failed = reportResult("entities", s.ValidateEntities(entities)) || failed
	}
	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// reportResult prints a validation result and reports whether it failed.
func reportResult(subject string, res schema.ValidationResult) bool {
	for _, warning := range res.Warnings {
		fmt.Printf("%s %s\n", color.YellowString("warning:"), warning)
	}
	for _, msg := range res.Errors {
		fmt.Printf("%s %s\n", color.RedString("error:"), msg)
	}
	if res.Passed() {
		fmt.Printf("%s %s validated\n", color.GreenString("ok:"), subject)
		return false
	}
	return true
}
