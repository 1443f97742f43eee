package ir

import (
	"context"
	"fmt"
)

// Location is the opaque call-site context threaded through calls for
// diagnostics. The engine forwards it into error messages and never
// interprets it otherwise. The zero value means "unknown".
type Location struct {
	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NoLocation is the documented default used when a caller supplies none.
var NoLocation = Location{}

// IsValid reports whether the location carries any information.
func (l Location) IsValid() bool {
	return l != NoLocation
}

// String renders the location as source:line:column.
func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}
	if l.Line == 0 {
		return l.Source
	}
	src := l.Source
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", src, l.Line, l.Column)
}

type locationKey struct{}

// WithLocation returns a context carrying loc as the current call site.
func WithLocation(ctx context.Context, loc Location) context.Context {
	return context.WithValue(ctx, locationKey{}, loc)
}

// LocationFrom returns the call site carried by ctx, or NoLocation.
func LocationFrom(ctx context.Context) Location {
	if ctx == nil {
		return NoLocation
	}
	if loc, ok := ctx.Value(locationKey{}).(Location); ok {
		return loc
	}
	return NoLocation
}
