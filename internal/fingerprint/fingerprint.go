// Package fingerprint computes content addresses for predicate trees.
//
// The address depends on structure only. Parameters are renamed by the
// order in which they are bound or first referenced, so two predicates that
// differ only in parameter identity or display name share a fingerprint.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/predkit/expr"
)

// Domain prefix for predicate fingerprints.
// Version suffix enables future algorithm migration.
const DomainPredicate = "predkit/predicate/v1"

// Canonical returns the normalized text that Of hashes.
//
// Parameters are written $0, $1, ... in binding order; free parameters get
// the next index on first reference. The text is NFC normalized so that
// visually identical string constants hash identically.
func Canonical(e expr.Expr) string {
	index := make(map[*expr.Param]int)
	assign := func(p *expr.Param) {
		if _, ok := index[p]; !ok {
			index[p] = len(index)
		}
	}
	expr.Walk(e, func(x expr.Expr) bool {
		switch n := x.(type) {
		case *expr.Lambda:
			for _, p := range n.Params {
				assign(p)
			}
		case *expr.ParamRef:
			assign(n.Param)
		}
		return true
	})

	text := expr.Format(e, func(p *expr.Param) string {
		return fmt.Sprintf("$%d:%s", index[p], p.Type())
	})
	return norm.NFC.String(text)
}

// Of returns the hex SHA-256 fingerprint of e.
func Of(e expr.Expr) string {
	return hashWithDomain(DomainPredicate, []byte(Canonical(e)))
}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
