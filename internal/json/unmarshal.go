package json

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/types"
)

func errUnknownPatternComponent(s string) error {
	return fmt.Errorf("unknown pattern component %q", s)
}

// UnmarshalPolicy parses a policy in the JSON policy format.
func UnmarshalPolicy(b []byte) (*ast.Policy, error) {
	var pj policyJSON
	if err := json.Unmarshal(b, &pj); err != nil {
		return nil, fmt.Errorf("invalid policy JSON: %w", err)
	}
	return policyFromJSON(&pj)
}

func policyFromJSON(pj *policyJSON) (*ast.Policy, error) {
	var p *ast.Policy
	switch pj.Effect {
	case "permit":
		p = ast.NewPolicy(ast.EffectPermit)
	case "forbid":
		p = ast.NewPolicy(ast.EffectForbid)
	default:
		return nil, fmt.Errorf("unknown effect %q", pj.Effect)
	}

	// Annotation order is not represented in JSON; sort for stability.
	for _, k := range sortedKeys(pj.Annotations) {
		p.Annotations = append(p.Annotations, ast.Annotation{
			Key:   types.String(k),
			Value: types.String(pj.Annotations[k]),
		})
	}

	principal, err := principalScopeFromJSON(&pj.Principal)
	if err != nil {
		return nil, fmt.Errorf("principal: %w", err)
	}
	p.Principal = principal
	action, err := actionScopeFromJSON(&pj.Action)
	if err != nil {
		return nil, fmt.Errorf("action: %w", err)
	}
	p.Action = action
	resource, err := principalScopeFromJSON(&pj.Resource)
	if err != nil {
		return nil, fmt.Errorf("resource: %w", err)
	}
	p.Resource = resource

	for i, c := range pj.Conditions {
		body, err := nodeFromJSON(c.Body)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		switch c.Kind {
		case "when":
			p.Conditions = append(p.Conditions, ast.Condition{Kind: ast.ConditionWhen, Body: body})
		case "unless":
			p.Conditions = append(p.Conditions, ast.Condition{Kind: ast.ConditionUnless, Body: body})
		default:
			return nil, fmt.Errorf("condition %d: unknown kind %q", i, c.Kind)
		}
	}
	return p, nil
}

// principalScopeFromJSON handles the scope ops shared by the principal
// and resource slots.
func principalScopeFromJSON(sj *scopeJSON) (interface {
	ast.IsPrincipalScopeNode
	ast.IsResourceScopeNode
}, error) {
	switch sj.Op {
	case "All":
		return ast.ScopeTypeAll{}, nil
	case "==":
		if sj.Entity == nil {
			return nil, fmt.Errorf("missing entity for op ==")
		}
		return ast.ScopeTypeEq{Entity: *sj.Entity}, nil
	case "in":
		if sj.Entity == nil {
			return nil, fmt.Errorf("missing entity for op in")
		}
		return ast.ScopeTypeIn{Entity: *sj.Entity}, nil
	case "is":
		if sj.EntityType == "" {
			return nil, fmt.Errorf("missing entity_type for op is")
		}
		if sj.In != nil {
			return ast.ScopeTypeIsIn{
				Type:   types.EntityType(sj.EntityType),
				Entity: sj.In.Entity,
			}, nil
		}
		return ast.ScopeTypeIs{Type: types.EntityType(sj.EntityType)}, nil
	default:
		return nil, fmt.Errorf("unknown scope op %q", sj.Op)
	}
}

func actionScopeFromJSON(sj *scopeJSON) (ast.IsActionScopeNode, error) {
	switch sj.Op {
	case "All":
		return ast.ScopeTypeAll{}, nil
	case "==":
		if sj.Entity == nil {
			return nil, fmt.Errorf("missing entity for op ==")
		}
		return ast.ScopeTypeEq{Entity: *sj.Entity}, nil
	case "in":
		if sj.Entity != nil {
			return ast.ScopeTypeIn{Entity: *sj.Entity}, nil
		}
		if sj.Entities != nil {
			return ast.ScopeTypeInSet{Entities: sj.Entities}, nil
		}
		return nil, fmt.Errorf("missing entity or entities for op in")
	default:
		return nil, fmt.Errorf("unknown scope op %q", sj.Op)
	}
}

func nodeFromJSON(b []byte) (ast.IsNode, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("expression object must have exactly one operator key, got %d", len(obj))
	}
	var op string
	var body json.RawMessage
	for k, v := range obj {
		op, body = k, v
	}
	switch op {
	case "Value":
		v, err := types.UnmarshalValueJSON(body)
		if err != nil {
			return nil, err
		}
		return ast.NodeValue{Value: v}, nil
	case "Var":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			return nil, err
		}
		switch name {
		case "principal", "action", "resource", "context":
			return ast.NodeTypeVariable{Name: types.String(name)}, nil
		}
		return nil, fmt.Errorf("unknown variable %q", name)
	case "!":
		arg, err := unaryFromJSON(body)
		if err != nil {
			return nil, err
		}
		return ast.NodeTypeNot{UnaryNode: arg}, nil
	case "neg":
		arg, err := unaryFromJSON(body)
		if err != nil {
			return nil, err
		}
		return ast.NodeTypeNegate{UnaryNode: arg}, nil
	case "==":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeEquals{BinaryNode: b} })
	case "!=":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeNotEquals{BinaryNode: b} })
	case "in":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeIn{BinaryNode: b} })
	case "<":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeLessThan{BinaryNode: b} })
	case "<=":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeLessThanOrEqual{BinaryNode: b} })
	case ">":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeGreaterThan{BinaryNode: b} })
	case ">=":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeGreaterThanOrEqual{BinaryNode: b} })
	case "&&":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeAnd{BinaryNode: b} })
	case "||":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeOr{BinaryNode: b} })
	case "+":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeAdd{BinaryNode: b} })
	case "-":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeSub{BinaryNode: b} })
	case "*":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeMult{BinaryNode: b} })
	case "contains":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeContains{BinaryNode: b} })
	case "containsAll":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeContainsAll{BinaryNode: b} })
	case "containsAny":
		return binaryFromJSON(body, func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeContainsAny{BinaryNode: b} })
	case ".", "has":
		var aj attrJSON
		if err := json.Unmarshal(body, &aj); err != nil {
			return nil, err
		}
		left, err := nodeFromJSON(aj.Left)
		if err != nil {
			return nil, err
		}
		if op == "." {
			return ast.NodeTypeAccess{UnaryNode: ast.UnaryNode{Arg: left}, Attr: types.String(aj.Attr)}, nil
		}
		return ast.NodeTypeHas{UnaryNode: ast.UnaryNode{Arg: left}, Attr: types.String(aj.Attr)}, nil
	case "like":
		var lj likeJSON
		if err := json.Unmarshal(body, &lj); err != nil {
			return nil, err
		}
		left, err := nodeFromJSON(lj.Left)
		if err != nil {
			return nil, err
		}
		comps := make([]types.PatternComponent, len(lj.Pattern))
		for i, c := range lj.Pattern {
			comps[i] = types.PatternComponent{Star: c.Wildcard, Chunk: c.Literal}
		}
		return ast.NodeTypeLike{
			UnaryNode: ast.UnaryNode{Arg: left},
			Pattern:   types.NewPatternFromComponents(comps),
		}, nil
	case "is":
		var ij isJSON
		if err := json.Unmarshal(body, &ij); err != nil {
			return nil, err
		}
		left, err := nodeFromJSON(ij.Left)
		if err != nil {
			return nil, err
		}
		res := ast.NodeTypeIs{
			UnaryNode:  ast.UnaryNode{Arg: left},
			EntityType: types.EntityType(ij.EntityType),
		}
		if ij.In != nil {
			in, err := nodeFromJSON(ij.In.Entity)
			if err != nil {
				return nil, err
			}
			res.In = in
		}
		return res, nil
	case "if-then-else":
		var ij ifThenElseJSON
		if err := json.Unmarshal(body, &ij); err != nil {
			return nil, err
		}
		condN, err := nodeFromJSON(ij.If)
		if err != nil {
			return nil, err
		}
		thenN, err := nodeFromJSON(ij.Then)
		if err != nil {
			return nil, err
		}
		elseN, err := nodeFromJSON(ij.Else)
		if err != nil {
			return nil, err
		}
		return ast.NodeTypeIfThenElse{If: condN, Then: thenN, Else: elseN}, nil
	case "Set":
		var elems []json.RawMessage
		if err := json.Unmarshal(body, &elems); err != nil {
			return nil, err
		}
		res := ast.NodeTypeSet{Elements: make([]ast.IsNode, len(elems))}
		for i, e := range elems {
			n, err := nodeFromJSON(e)
			if err != nil {
				return nil, err
			}
			res.Elements[i] = n
		}
		return res, nil
	case "Record":
		var elems map[string]json.RawMessage
		if err := json.Unmarshal(body, &elems); err != nil {
			return nil, err
		}
		var res ast.NodeTypeRecord
		for _, k := range sortedKeys(elems) {
			n, err := nodeFromJSON(elems[k])
			if err != nil {
				return nil, err
			}
			res.Elements = append(res.Elements, ast.RecordElementNode{Key: types.String(k), Value: n})
		}
		return res, nil
	default:
		// Any other operator key is an extension call with an argument
		// list.
		var args []json.RawMessage
		if err := json.Unmarshal(body, &args); err != nil {
			return nil, fmt.Errorf("unknown operator %q", op)
		}
		res := ast.NodeTypeExtensionCall{Name: types.String(op), Args: make([]ast.IsNode, len(args))}
		for i, a := range args {
			n, err := nodeFromJSON(a)
			if err != nil {
				return nil, err
			}
			res.Args[i] = n
		}
		return res, nil
	}
}

func unaryFromJSON(b []byte) (ast.UnaryNode, error) {
	var uj unaryJSON
	if err := json.Unmarshal(b, &uj); err != nil {
		return ast.UnaryNode{}, err
	}
	arg, err := nodeFromJSON(uj.Arg)
	if err != nil {
		return ast.UnaryNode{}, err
	}
	return ast.UnaryNode{Arg: arg}, nil
}

func binaryFromJSON(b []byte, build func(ast.BinaryNode) ast.IsNode) (ast.IsNode, error) {
	var bj binaryJSON
	if err := json.Unmarshal(b, &bj); err != nil {
		return nil, err
	}
	left, err := nodeFromJSON(bj.Left)
	if err != nil {
		return nil, err
	}
	right, err := nodeFromJSON(bj.Right)
	if err != nil {
		return nil, err
	}
	return build(ast.BinaryNode{Left: left, Right: right}), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
