package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Resolver looks up named procedures while converting data into values.
type Resolver func(name string) (Callable, bool)

// Tagged forms recognized by FromGo inside single-key objects.
const (
	TagSymbol = "sym"
	TagProc   = "proc"
	TagMap    = "map"
	TagNull   = "null"
)

// UnmarshalValue decodes JSON into a Value.
// Floats are rejected; objects follow the tagged forms of FromGo.
func UnmarshalValue(data []byte, resolve Resolver) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromGo(raw, resolve)
}

// FromGo converts decoded YAML/JSON data into a Value.
//
// Scalars map directly. Single-key objects are tagged forms:
//
//	{sym: apple}          -> 'apple
//	{proc: add1}          -> procedure resolved by name
//	{map: [[k, v], ...]}  -> Map with arbitrary keys
//	{null: true}          -> null
//
// Any other object becomes a Map keyed by strings in sorted key order.
func FromGo(v any, resolve Resolver) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return NewString(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		return Int(int64(val)), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("floats are not supported: %s", val)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", val)
		}
		return Int(n), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are not supported: %v", val)
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			item, err := FromGo(elem, resolve)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = item
		}
		return list, nil
	case map[string]any:
		if len(val) == 1 {
			for tag, body := range val {
				if out, ok, err := fromTagged(tag, body, resolve); ok || err != nil {
					return out, err
				}
			}
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(Map, 0, len(val))
		for _, k := range keys {
			item, err := FromGo(val[k], resolve)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			m = append(m, P(NewString(k), item))
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func fromTagged(tag string, body any, resolve Resolver) (Value, bool, error) {
	switch tag {
	case TagSymbol:
		name, ok := body.(string)
		if !ok {
			return nil, true, fmt.Errorf("sym: expected a string, found %T", body)
		}
		return NewSymbol(name), true, nil
	case TagNull:
		return Null{}, true, nil
	case TagProc:
		name, ok := body.(string)
		if !ok {
			return nil, true, fmt.Errorf("proc: expected a string, found %T", body)
		}
		if resolve == nil {
			return nil, true, fmt.Errorf("proc: no resolver for %q", name)
		}
		fn, found := resolve(name)
		if !found {
			return nil, true, fmt.Errorf("proc: unknown procedure %q", name)
		}
		return NewProc(fn), true, nil
	case TagMap:
		entries, ok := body.([]any)
		if !ok {
			return nil, true, fmt.Errorf("map: expected a list of pairs, found %T", body)
		}
		pairs := make([]Pair, 0, len(entries))
		for i, entry := range entries {
			kv, ok := entry.([]any)
			if !ok || len(kv) != 2 {
				return nil, true, fmt.Errorf("map[%d]: expected a [key, value] pair", i)
			}
			k, err := FromGo(kv[0], resolve)
			if err != nil {
				return nil, true, fmt.Errorf("map[%d] key: %w", i, err)
			}
			v, err := FromGo(kv[1], resolve)
			if err != nil {
				return nil, true, fmt.Errorf("map[%d] value: %w", i, err)
			}
			pairs = append(pairs, P(k, v))
		}
		return NewMap(pairs...), true, nil
	}
	return nil, false, nil
}

// ToGo converts a value into plain data suitable for JSON output.
// Symbols, procedures and opaque values become their display strings.
func ToGo(v Value) any {
	switch val := v.(type) {
	case Null, nil:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case String:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case Map:
		out := make([]any, len(val))
		for i, p := range val {
			out[i] = []any{ToGo(p.Key), ToGo(p.Value)}
		}
		return out
	default:
		return Format(val)
	}
}
