// Package json implements the JSON policy format. It decodes to and
// encodes from the same internal AST as the Cedar text parser, so a
// policy round-trips between the two forms without loss.
package json

import (
	"encoding/json"

	"github.com/charbonnierg/cedar/types"
)

type policyJSON struct {
	Annotations map[string]string `json:"annotations,omitempty"`
	Effect      string            `json:"effect"`
	Principal   scopeJSON         `json:"principal"`
	Action      scopeJSON         `json:"action"`
	Resource    scopeJSON         `json:"resource"`
	Conditions  []conditionJSON   `json:"conditions,omitempty"`
}

type scopeJSON struct {
	Op         string            `json:"op"`
	Entity     *types.EntityUID  `json:"entity,omitempty"`
	Entities   []types.EntityUID `json:"entities,omitempty"`
	EntityType string            `json:"entity_type,omitempty"`
	In         *scopeInJSON      `json:"in,omitempty"`
}

type scopeInJSON struct {
	Entity types.EntityUID `json:"entity"`
}

type conditionJSON struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body"`
}

// Expression nodes are encoded as single-key objects, the key naming the
// operator: `{"&&": {"left": ..., "right": ...}}`, `{"Value": 1}`,
// `{"ip": [...]}` and so on.

type unaryJSON struct {
	Arg json.RawMessage `json:"arg"`
}

type binaryJSON struct {
	Left  json.RawMessage `json:"left"`
	Right json.RawMessage `json:"right"`
}

type attrJSON struct {
	Left json.RawMessage `json:"left"`
	Attr string          `json:"attr"`
}

type likeJSON struct {
	Left    json.RawMessage `json:"left"`
	Pattern []patternComp   `json:"pattern"`
}

type patternComp struct {
	Wildcard bool
	Literal  string
}

func (p *patternComp) UnmarshalJSON(b []byte) error {
	var wildcard string
	if err := json.Unmarshal(b, &wildcard); err == nil {
		if wildcard != "Wildcard" {
			return errUnknownPatternComponent(wildcard)
		}
		p.Wildcard = true
		return nil
	}
	var lit struct {
		Literal string `json:"Literal"`
	}
	if err := json.Unmarshal(b, &lit); err != nil {
		return err
	}
	p.Literal = lit.Literal
	return nil
}

func (p patternComp) MarshalJSON() ([]byte, error) {
	if p.Wildcard {
		return json.Marshal("Wildcard")
	}
	return json.Marshal(struct {
		Literal string `json:"Literal"`
	}{Literal: p.Literal})
}

type isJSON struct {
	Left       json.RawMessage `json:"left"`
	EntityType string          `json:"entity_type"`
	In         *scopeInNode    `json:"in,omitempty"`
}

type scopeInNode struct {
	Entity json.RawMessage `json:"entity"`
}

type ifThenElseJSON struct {
	If   json.RawMessage `json:"if"`
	Then json.RawMessage `json:"then"`
	Else json.RawMessage `json:"else"`
}
