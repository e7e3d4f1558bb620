package eval

import (
	"fmt"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/types"
)

// extensionArity maps every known extension function to its argument
// count, the method receiver included.
var extensionArity = map[types.String]int{
	"decimal":            1,
	"ip":                 1,
	"lessThan":           2,
	"lessThanOrEqual":    2,
	"greaterThan":        2,
	"greaterThanOrEqual": 2,
	"isIpv4":             1,
	"isIpv6":             1,
	"isLoopback":         1,
	"isMulticast":        1,
	"isInRange":          2,
}

func (e *evaluator) evalExtensionCall(t ast.NodeTypeExtensionCall) (types.Value, error) {
	arity, ok := extensionArity[t.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, t.Name)
	}
	if len(t.Args) != arity {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrTypeMismatch, t.Name, arity, len(t.Args))
	}
	args := make([]types.Value, len(t.Args))
	for i, a := range t.Args {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch t.Name {
	case "decimal":
		s, err := ValueToString(args[0])
		if err != nil {
			return nil, err
		}
		d, err := types.ParseDecimal(string(s))
		if err != nil {
			return nil, fmt.Errorf("decimal: %w", err)
		}
		return d, nil
	case "ip":
		s, err := ValueToString(args[0])
		if err != nil {
			return nil, err
		}
		ip, err := types.ParseIPAddr(string(s))
		if err != nil {
			return nil, fmt.Errorf("ip: %w", err)
		}
		return ip, nil
	case "lessThan":
		return decimalCompare(args, func(a, b types.Decimal) bool { return a.LessThan(b) })
	case "lessThanOrEqual":
		return decimalCompare(args, func(a, b types.Decimal) bool { return a.LessThan(b) || a == b })
	case "greaterThan":
		return decimalCompare(args, func(a, b types.Decimal) bool { return b.LessThan(a) })
	case "greaterThanOrEqual":
		return decimalCompare(args, func(a, b types.Decimal) bool { return b.LessThan(a) || a == b })
	case "isIpv4":
		return ipPredicate(args[0], types.IPAddr.IsIPv4)
	case "isIpv6":
		return ipPredicate(args[0], types.IPAddr.IsIPv6)
	case "isLoopback":
		return ipPredicate(args[0], types.IPAddr.IsLoopback)
	case "isMulticast":
		return ipPredicate(args[0], types.IPAddr.IsMulticast)
	case "isInRange":
		lhs, err := ValueToIP(args[0])
		if err != nil {
			return nil, err
		}
		rhs, err := ValueToIP(args[1])
		if err != nil {
			return nil, err
		}
		return types.Boolean(rhs.Contains(lhs)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, t.Name)
	}
}

func decimalCompare(args []types.Value, cmp func(a, b types.Decimal) bool) (types.Value, error) {
	a, err := ValueToDecimal(args[0])
	if err != nil {
		return nil, err
	}
	b, err := ValueToDecimal(args[1])
	if err != nil {
		return nil, err
	}
	return types.Boolean(cmp(a, b)), nil
}

func ipPredicate(arg types.Value, pred func(types.IPAddr) bool) (types.Value, error) {
	ip, err := ValueToIP(arg)
	if err != nil {
		return nil, err
	}
	return types.Boolean(pred(ip)), nil
}
