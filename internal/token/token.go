// Package token normalizes free-text type labels into token sets and
// decides structural compatibility between them.
//
// Tokens are the unit of the structural type system: a label like
// "Orders + Inventory" becomes the set {orders, inventory}, and two ports
// are compatible when their token sets are subset- or overlap-related.
// Nothing here is nominal; token identity is the normalized word itself.
package token

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// fold performs full Unicode case folding, not just ASCII lowering.
var fold = cases.Fold()

// Set is a normalized token set. Sets compare structurally; use Equal,
// not ==.
type Set map[string]bool

// Tokenize splits a free-text label into a normalized token set.
// Labels split on ',' and '+', tokens are case-folded and trimmed, and
// empty fragments are dropped. Tokenize is pure and never fails; the
// empty string yields the empty set.
func Tokenize(label string) Set {
	set := make(Set)
	for _, part := range strings.FieldsFunc(label, func(r rune) bool {
		return r == ',' || r == '+'
	}) {
		tok := strings.TrimSpace(fold.String(part))
		if tok == "" {
			continue
		}
		set[tok] = true
	}
	return set
}

// Subset reports whether every token of a is in b. The empty set is
// vacuously a subset of anything; a non-empty a is never a subset of an
// empty b.
func Subset(a, b Set) bool {
	for tok := range a {
		if !b[tok] {
			return false
		}
	}
	return true
}

// Overlap reports whether a and b share at least one token. Empty sets
// overlap nothing, including themselves.
func Overlap(a, b Set) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for tok := range a {
		if b[tok] {
			return true
		}
	}
	return false
}

// Equal reports structural equality of two sets.
func Equal(a, b Set) bool {
	return len(a) == len(b) && Subset(a, b)
}

// Sorted returns the tokens in lexicographic order.
func (s Set) Sorted() []string {
	toks := make([]string, 0, len(s))
	for tok := range s {
		toks = append(toks, tok)
	}
	sort.Strings(toks)
	return toks
}

// Canonical returns the deterministic string form of the set: sorted
// tokens joined with "+". Tokenize(s.Canonical()) round-trips to an
// equal set.
func (s Set) Canonical() string {
	return strings.Join(s.Sorted(), "+")
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for tok := range s {
		out[tok] = true
	}
	return out
}
