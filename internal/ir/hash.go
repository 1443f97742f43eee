package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainContract = "rucket/contract/v1"
	DomainManifest = "rucket/manifest/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContractHash identifies a contract by its rendered form.
// Two contracts that render identically share a hash.
func ContractHash(rendered string) string {
	return hashWithDomain(DomainContract, []byte(rendered))
}

// ManifestHash computes a content hash over compiled contract specs.
// Returns error if the specs cannot be canonically marshaled.
func ManifestHash(specs []ContractSpec) (string, error) {
	list := make([]any, len(specs))
	for i, s := range specs {
		list[i] = map[string]any{
			"name": s.Name,
			"doc":  s.Doc,
			"impl": s.Impl,
			"expr": exprToCanonical(s.Expr),
		}
	}
	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("ManifestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainManifest, canonical), nil
}

func exprToCanonical(e ContractExpr) map[string]any {
	out := map[string]any{"kind": string(e.Kind)}
	if e.Name != "" {
		out["name"] = e.Name
	}
	if len(e.Args) > 0 {
		args := make([]any, len(e.Args))
		for i, a := range e.Args {
			args[i] = exprToCanonical(a)
		}
		out["args"] = args
	}
	if e.Result != nil {
		out["result"] = exprToCanonical(*e.Result)
	}
	if len(e.Operands) > 0 {
		ops := make([]any, len(e.Operands))
		for i, o := range e.Operands {
			ops[i] = exprToCanonical(o)
		}
		out["operands"] = ops
	}
	if len(e.Bounds) > 0 {
		bounds := make([]any, len(e.Bounds))
		for i, b := range e.Bounds {
			bounds[i] = b
		}
		out["bounds"] = bounds
	}
	if len(e.Literals) > 0 {
		out["literals"] = e.Literals
	}
	return out
}
