package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// explicitValue decodes any JSON value in the Cedar value format.
type explicitValue struct {
	Value Value
}

func (e *explicitValue) UnmarshalJSON(b []byte) error {
	v, err := UnmarshalValueJSON(b)
	if err != nil {
		return err
	}
	e.Value = v
	return nil
}

func (e explicitValue) MarshalJSON() ([]byte, error) {
	return marshalValueJSON(e.Value)
}

type extnJSON struct {
	Fn  string `json:"fn"`
	Arg string `json:"arg"`
}

type entityEscapeJSON struct {
	Entity *EntityUID `json:"__entity,omitempty"`
	Extn   *extnJSON  `json:"__extn,omitempty"`
}

// UnmarshalValueJSON parses a JSON document in the Cedar value format:
// booleans, integers and strings map to Boolean, Long and String, arrays
// map to Set, and objects map to Record unless they carry an `__entity`
// or `__extn` escape.
func UnmarshalValueJSON(b []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return valueFromJSON(raw)
}

func valueFromJSON(raw any) (Value, error) {
	switch t := raw.(type) {
	case bool:
		return Boolean(t), nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("invalid long %q: %w", t.String(), err)
		}
		return Long(i), nil
	case string:
		return String(t), nil
	case []any:
		vals := make([]Value, len(t))
		for i, e := range t {
			v, err := valueFromJSON(e)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return NewSet(vals), nil
	case map[string]any:
		if v, ok, err := unescapeJSON(t); err != nil {
			return nil, err
		} else if ok {
			return v, nil
		}
		m := make(RecordMap, len(t))
		for k, e := range t {
			v, err := valueFromJSON(e)
			if err != nil {
				return nil, err
			}
			m[String(k)] = v
		}
		return NewRecord(m), nil
	case nil:
		return nil, fmt.Errorf("null is not a valid value")
	default:
		return nil, fmt.Errorf("unsupported JSON value of type %T", raw)
	}
}

func unescapeJSON(obj map[string]any) (Value, bool, error) {
	if raw, ok := obj["__entity"]; ok {
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, true, err
		}
		var uid EntityUID
		if err := json.Unmarshal(b, &uid); err != nil {
			return nil, true, fmt.Errorf("invalid __entity escape: %w", err)
		}
		return uid, true, nil
	}
	if raw, ok := obj["__extn"]; ok {
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, true, err
		}
		var extn extnJSON
		if err := json.Unmarshal(b, &extn); err != nil {
			return nil, true, fmt.Errorf("invalid __extn escape: %w", err)
		}
		switch extn.Fn {
		case "decimal":
			v, err := ParseDecimal(extn.Arg)
			if err != nil {
				return nil, true, err
			}
			return v, true, nil
		case "ip":
			v, err := ParseIPAddr(extn.Arg)
			if err != nil {
				return nil, true, err
			}
			return v, true, nil
		default:
			return nil, true, fmt.Errorf("unknown extension function %q", extn.Fn)
		}
	}
	return nil, false, nil
}

// MarshalValueJSON renders a Value in the Cedar value format.
func MarshalValueJSON(v Value) ([]byte, error) { return marshalValueJSON(v) }

// marshalValueJSON renders a Value in the Cedar value format, using the
// `__entity` and `__extn` escapes for entity references and extension
// values.
func marshalValueJSON(v Value) ([]byte, error) {
	switch t := v.(type) {
	case EntityUID:
		return json.Marshal(entityEscapeJSON{Entity: &t})
	case Decimal:
		return json.Marshal(entityEscapeJSON{Extn: &extnJSON{Fn: "decimal", Arg: t.String()}})
	case IPAddr:
		return json.Marshal(entityEscapeJSON{Extn: &extnJSON{Fn: "ip", Arg: t.String()}})
	case nil:
		return nil, fmt.Errorf("cannot marshal nil value")
	default:
		// Boolean, Long, String and Record marshal themselves.
		return json.Marshal(v)
	}
}
