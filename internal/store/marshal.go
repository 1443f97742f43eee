package store

import (
	"encoding/json"
	"fmt"

	"github.com/mattwparas/Rucket/internal/ir"
)

// marshalLocation converts a Location to canonical JSON TEXT for storage.
// The unknown location is stored as "{}".
func marshalLocation(loc ir.Location) (string, error) {
	obj := map[string]any{}
	if loc.Source != "" {
		obj["source"] = loc.Source
	}
	if loc.Line != 0 {
		obj["line"] = int64(loc.Line)
	}
	if loc.Column != 0 {
		obj["column"] = int64(loc.Column)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal location: %w", err)
	}
	return string(data), nil
}

// unmarshalLocation parses location JSON TEXT.
func unmarshalLocation(data string) (ir.Location, error) {
	var loc ir.Location
	if data == "" || data == "{}" {
		return loc, nil
	}
	if err := json.Unmarshal([]byte(data), &loc); err != nil {
		return ir.NoLocation, fmt.Errorf("unmarshal location: %w", err)
	}
	return loc, nil
}
