package json

import (
	"encoding/json"
	"fmt"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/types"
)

// MarshalPolicy renders a policy in the JSON policy format.
func MarshalPolicy(p *ast.Policy) ([]byte, error) {
	pj, err := policyToJSON(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(pj)
}

func policyToJSON(p *ast.Policy) (*policyJSON, error) {
	pj := policyJSON{Effect: "forbid"}
	if p.Effect == ast.EffectPermit {
		pj.Effect = "permit"
	}
	if len(p.Annotations) > 0 {
		pj.Annotations = make(map[string]string, len(p.Annotations))
		for _, a := range p.Annotations {
			pj.Annotations[string(a.Key)] = string(a.Value)
		}
	}
	pj.Principal = scopeToJSON(p.Principal)
	pj.Action = scopeToJSON(p.Action)
	pj.Resource = scopeToJSON(p.Resource)
	for _, c := range p.Conditions {
		kind := "when"
		if c.Kind == ast.ConditionUnless {
			kind = "unless"
		}
		body, err := nodeToJSON(c.Body)
		if err != nil {
			return nil, err
		}
		pj.Conditions = append(pj.Conditions, conditionJSON{Kind: kind, Body: body})
	}
	return &pj, nil
}

func scopeToJSON(s ast.IsScopeNode) scopeJSON {
	switch t := s.(type) {
	case ast.ScopeTypeAll:
		return scopeJSON{Op: "All"}
	case ast.ScopeTypeEq:
		e := t.Entity
		return scopeJSON{Op: "==", Entity: &e}
	case ast.ScopeTypeIn:
		e := t.Entity
		return scopeJSON{Op: "in", Entity: &e}
	case ast.ScopeTypeInSet:
		return scopeJSON{Op: "in", Entities: t.Entities}
	case ast.ScopeTypeIs:
		return scopeJSON{Op: "is", EntityType: string(t.Type)}
	case ast.ScopeTypeIsIn:
		return scopeJSON{Op: "is", EntityType: string(t.Type), In: &scopeInJSON{Entity: t.Entity}}
	}
	return scopeJSON{}
}

func op(name string, body any) (json.RawMessage, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	k, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(`{` + string(k) + `:` + string(b) + `}`), nil
}

func nodeToJSON(n ast.IsNode) (json.RawMessage, error) {
	switch t := n.(type) {
	case ast.NodeValue:
		b, err := types.MarshalValueJSON(t.Value)
		if err != nil {
			return nil, err
		}
		return op("Value", json.RawMessage(b))
	case ast.NodeTypeVariable:
		return op("Var", string(t.Name))
	case ast.NodeTypeNot:
		return unaryToJSON("!", t.UnaryNode)
	case ast.NodeTypeNegate:
		return unaryToJSON("neg", t.UnaryNode)
	case ast.NodeTypeAnd:
		return binaryToJSON("&&", t.BinaryNode)
	case ast.NodeTypeOr:
		return binaryToJSON("||", t.BinaryNode)
	case ast.NodeTypeEquals:
		return binaryToJSON("==", t.BinaryNode)
	case ast.NodeTypeNotEquals:
		return binaryToJSON("!=", t.BinaryNode)
	case ast.NodeTypeIn:
		return binaryToJSON("in", t.BinaryNode)
	case ast.NodeTypeLessThan:
		return binaryToJSON("<", t.BinaryNode)
	case ast.NodeTypeLessThanOrEqual:
		return binaryToJSON("<=", t.BinaryNode)
	case ast.NodeTypeGreaterThan:
		return binaryToJSON(">", t.BinaryNode)
	case ast.NodeTypeGreaterThanOrEqual:
		return binaryToJSON(">=", t.BinaryNode)
	case ast.NodeTypeAdd:
		return binaryToJSON("+", t.BinaryNode)
	case ast.NodeTypeSub:
		return binaryToJSON("-", t.BinaryNode)
	case ast.NodeTypeMult:
		return binaryToJSON("*", t.BinaryNode)
	case ast.NodeTypeContains:
		return binaryToJSON("contains", t.BinaryNode)
	case ast.NodeTypeContainsAll:
		return binaryToJSON("containsAll", t.BinaryNode)
	case ast.NodeTypeContainsAny:
		return binaryToJSON("containsAny", t.BinaryNode)
	case ast.NodeTypeAccess:
		return attrToJSON(".", t.Arg, string(t.Attr))
	case ast.NodeTypeHas:
		return attrToJSON("has", t.Arg, string(t.Attr))
	case ast.NodeTypeLike:
		left, err := nodeToJSON(t.Arg)
		if err != nil {
			return nil, err
		}
		comps := t.Pattern.Components()
		pattern := make([]patternComp, len(comps))
		for i, c := range comps {
			pattern[i] = patternComp{Wildcard: c.Star, Literal: c.Chunk}
		}
		return op("like", likeJSON{Left: left, Pattern: pattern})
	case ast.NodeTypeIs:
		left, err := nodeToJSON(t.Arg)
		if err != nil {
			return nil, err
		}
		body := isJSON{Left: left, EntityType: string(t.EntityType)}
		if t.In != nil {
			in, err := nodeToJSON(t.In)
			if err != nil {
				return nil, err
			}
			body.In = &scopeInNode{Entity: in}
		}
		return op("is", body)
	case ast.NodeTypeIfThenElse:
		condJ, err := nodeToJSON(t.If)
		if err != nil {
			return nil, err
		}
		thenJ, err := nodeToJSON(t.Then)
		if err != nil {
			return nil, err
		}
		elseJ, err := nodeToJSON(t.Else)
		if err != nil {
			return nil, err
		}
		return op("if-then-else", ifThenElseJSON{If: condJ, Then: thenJ, Else: elseJ})
	case ast.NodeTypeSet:
		elems := make([]json.RawMessage, len(t.Elements))
		for i, e := range t.Elements {
			b, err := nodeToJSON(e)
			if err != nil {
				return nil, err
			}
			elems[i] = b
		}
		return op("Set", elems)
	case ast.NodeTypeRecord:
		elems := make(map[string]json.RawMessage, len(t.Elements))
		for _, e := range t.Elements {
			b, err := nodeToJSON(e.Value)
			if err != nil {
				return nil, err
			}
			elems[string(e.Key)] = b
		}
		return op("Record", elems)
	case ast.NodeTypeExtensionCall:
		args := make([]json.RawMessage, len(t.Args))
		for i, a := range t.Args {
			b, err := nodeToJSON(a)
			if err != nil {
				return nil, err
			}
			args[i] = b
		}
		return op(string(t.Name), args)
	default:
		return nil, fmt.Errorf("unknown node type %T", n)
	}
}

func unaryToJSON(name string, u ast.UnaryNode) (json.RawMessage, error) {
	arg, err := nodeToJSON(u.Arg)
	if err != nil {
		return nil, err
	}
	return op(name, unaryJSON{Arg: arg})
}

func binaryToJSON(name string, b ast.BinaryNode) (json.RawMessage, error) {
	left, err := nodeToJSON(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := nodeToJSON(b.Right)
	if err != nil {
		return nil, err
	}
	return op(name, binaryJSON{Left: left, Right: right})
}

func attrToJSON(name string, arg ast.IsNode, attr string) (json.RawMessage, error) {
	left, err := nodeToJSON(arg)
	if err != nil {
		return nil, err
	}
	return op(name, attrJSON{Left: left, Attr: attr})
}
