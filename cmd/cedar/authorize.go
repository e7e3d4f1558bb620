package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/charbonnierg/cedar"
	"github.com/charbonnierg/cedar/schema"
	"github.com/charbonnierg/cedar/types"
)

var (
	policiesFile string
	entitiesFile string
	schemaFile   string
	jsonOutput   bool
)

func buildAuthorizeCommand() *cobra.Command {
	authorizeCmd := &cobra.Command{
		Use:                   "authorize",
		Short:                 "Evaluate authorization requests against a policy set",
		Example:               "cedar authorize -p policies.cedar -e entities.json requests.json",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAuthorizeCommand(args[0])
		},
	}
	authorizeCmd.Flags().StringVarP(&policiesFile, "policies", "p", "", "Cedar policy file")
	authorizeCmd.Flags().StringVarP(&entitiesFile, "entities", "e", "", "Entities JSON file")
	authorizeCmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "Schema JSON file (validates policies and entities)")
	authorizeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print responses as JSON instead of a table")
	return authorizeCmd
}

func doAuthorizeCommand(requestsFile string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	authorizer, err := buildAuthorizer(cfg)
	if err != nil {
		return err
	}
	entities, err := loadEntities(resolvePath(entitiesFile, cfg.Entities))
	if err != nil {
		return err
	}
	requests, err := loadRequests(requestsFile)
	if err != nil {
		return err
	}

	responses := authorizer.IsAuthorizedBatch(requests, entities)

	if jsonOutput {
		out, err := json.MarshalIndent(responses, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	renderResponses(requests, responses)
	return nil
}

func buildAuthorizer(cfg *Config) (*cedar.Authorizer, error) {
	path := resolvePath(policiesFile, cfg.Policies)
	if path == "" {
		return nil, fmt.Errorf("no policy file: pass --policies or set `policies` in %s", DefaultConfigFile)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ps, err := cedar.NewPolicySetFromBytes(path, raw)
	if err != nil {
		return nil, err
	}
	var opts []cedar.AuthorizerOption
	if schemaPath := resolvePath(schemaFile, cfg.Schema); schemaPath != "" {
		s, err := loadSchema(schemaPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cedar.WithSchema(s))
	}
	return cedar.NewAuthorizer(ps, opts...)
}

func loadEntities(path string) (types.EntityMap, error) {
	if path == "" {
		return types.EntityMap{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entities types.EntityMap
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entities, nil
}

func loadSchema(path string) (*schema.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s schema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// loadRequests accepts a single request object or an array of requests.
// Requests without a correlation id are assigned a generated one so
// results can be matched back to inputs.
func loadRequests(path string) ([]cedar.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var requests []cedar.Request
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &requests); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		var req cedar.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		requests = []cedar.Request{req}
	}
	for i := range requests {
		if requests[i].CorrelationID == "" {
			requests[i].CorrelationID = xid.New().String()
		}
	}
	return requests, nil
}

func renderResponses(requests []cedar.Request, responses []cedar.Response) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Correlation ID", "Principal", "Action", "Resource", "Decision", "Reasons", "Errors"})
	for i, resp := range responses {
		req := requests[i]
		decision := color.GreenString("ALLOW")
		if resp.Decision == cedar.Deny {
			decision = color.RedString("DENY")
		}
		reasons := make([]string, len(resp.Diagnostics.Reasons))
		for j, r := range resp.Diagnostics.Reasons {
			reasons[j] = string(r)
		}
		t.AppendRow(table.Row{
			resp.CorrelationID,
			req.Principal.String(),
			req.Action.String(),
			req.Resource.String(),
			decision,
			strings.Join(reasons, ", "),
			strings.Join(resp.Diagnostics.Errors, "; "),
		})
	}
	t.Render()
}
