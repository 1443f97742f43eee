package contract

import (
	"fmt"

	"github.com/mattwparas/Rucket/internal/ir"
)

// SiteKind records why a contract was attached.
type SiteKind string

const (
	// SiteTopLevel is a contract attached to a definition.
	SiteTopLevel SiteKind = "TOPLEVEL"

	// SiteArgument is a contract attached to a callable flowing into an argument position.
	SiteArgument SiteKind = "ARGUMENT"

	// SiteResult is a contract attached to a callable flowing out of a result position.
	SiteResult SiteKind = "RESULT"
)

// Site is binding-site metadata, used purely for diagnostics.
type Site struct {
	Kind SiteKind

	// Name identifies the function whose contract declared this position.
	Name string

	// Position is the argument index for SiteArgument, -1 otherwise.
	Position int

	// Location is the call site at which a call-time re-wrap happened.
	Location ir.Location
}

// String renders the site for messages, e.g. "argument 0 of apply-even".
func (s Site) String() string {
	switch s.Kind {
	case SiteArgument:
		return fmt.Sprintf("argument %d of %s", s.Position, displayName(s.Name))
	case SiteResult:
		return fmt.Sprintf("result of %s", displayName(s.Name))
	default:
		return displayName(s.Name)
	}
}

func displayName(name string) string {
	if name == "" {
		return "none"
	}
	return name
}
