package contract

import "strings"

// Render converts a contract into its diagnostic string.
//
// Atomic contracts render as their name. Procedure contracts render as
// "(-> a1 ... an r)": the rendered argument contracts in declared order
// followed by the rendered result contract, separated by single spaces.
// Rendering is structural and side-effect free; contracts are acyclic so
// it always terminates.
func Render(c Contract) string {
	var b strings.Builder
	render(&b, c)
	return b.String()
}

func render(b *strings.Builder, c Contract) {
	if !isContract(c) {
		b.WriteString("#<malformed-contract>")
		return
	}
	switch c := c.(type) {
	case *Atomic:
		b.WriteString(c.name)
	case *Procedure:
		b.WriteString("(->")
		for _, arg := range c.args {
			b.WriteByte(' ')
			render(b, arg)
		}
		b.WriteByte(' ')
		render(b, c.result)
		b.WriteByte(')')
	}
}
