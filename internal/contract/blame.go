package contract

import "fmt"

// BlameParty identifies which party broke a contract.
type BlameParty string

const (
	// BlameCaller blames the call site: a supplied value broke the callee's
	// declared input contract.
	BlameCaller BlameParty = "caller"

	// BlameSelf blames the function itself: its contract has no binding site
	// and its result broke its own contract.
	BlameSelf BlameParty = "self"

	// BlameSite blames the party recorded at the contract's binding site.
	BlameSite BlameParty = "site"
)

// Blame is the attribution carried by every violation.
type Blame struct {
	Party BlameParty

	// Name is the blamed party's name, or "" when none is known.
	Name string

	// Site is the binding site behind a BlameSite attribution.
	Site *Site
}

// String renders the attribution the way violation messages show it.
func (b Blame) String() string {
	switch b.Party {
	case BlameCaller:
		if b.Name == "" {
			return "call site"
		}
		return fmt.Sprintf("%s (call site)", b.Name)
	case BlameSelf:
		return fmt.Sprintf("%s - broke its own contract", displayName(b.Name))
	case BlameSite:
		if b.Site != nil && b.Site.Kind == SiteArgument {
			return fmt.Sprintf("supplier of argument %d to %s", b.Site.Position, displayName(b.Name))
		}
		if b.Site != nil && b.Site.Kind == SiteResult {
			return fmt.Sprintf("%s (producer of result)", displayName(b.Name))
		}
		return displayName(b.Name)
	default:
		return "none"
	}
}
