package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeSplitsOnCommaAndPlus(t *testing.T) {
	set := Tokenize("Orders, Inventory+Shipping")
	assert.Equal(t, Set{"orders": true, "inventory": true, "shipping": true}, set)
}

func TestTokenizeFoldsCase(t *testing.T) {
	assert.True(t, Equal(Tokenize("ORDERS"), Tokenize("orders")))
	// Full case folding, not just ASCII: ß folds to ss.
	assert.True(t, Equal(Tokenize("STRASSE"), Tokenize("straße")))
}

func TestTokenizeDropsEmptyFragments(t *testing.T) {
	set := Tokenize(",+ , price ,+")
	require.Len(t, set, 1)
	assert.True(t, set["price"])
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   "))
}

func TestSubsetEmptyIsVacuous(t *testing.T) {
	// subset("", a) is true for all a, including empty a.
	assert.True(t, Subset(Tokenize(""), Tokenize("orders")))
	assert.True(t, Subset(Tokenize(""), Tokenize("")))
}

func TestSubsetNonEmptyAgainstEmptyFails(t *testing.T) {
	assert.False(t, Subset(Tokenize("orders"), Tokenize("")))
}

func TestSubset(t *testing.T) {
	a := Tokenize("orders")
	b := Tokenize("orders+inventory")
	assert.True(t, Subset(a, b))
	assert.False(t, Subset(b, a))
	assert.True(t, Subset(b, b))
}

func TestOverlapReflexiveWhenNonEmpty(t *testing.T) {
	a := Tokenize("orders+inventory")
	assert.True(t, Overlap(a, a))
}

func TestOverlapFalseForEmptySides(t *testing.T) {
	assert.False(t, Overlap(Tokenize(""), Tokenize("")))
	assert.False(t, Overlap(Tokenize(""), Tokenize("orders")))
	assert.False(t, Overlap(Tokenize("orders"), Tokenize("")))
}

func TestOverlapPartial(t *testing.T) {
	assert.True(t, Overlap(Tokenize("orders+price"), Tokenize("price+qty")))
	assert.False(t, Overlap(Tokenize("orders"), Tokenize("price")))
}

func TestCanonicalIsDeterministic(t *testing.T) {
	a := Tokenize("b+a+c")
	assert.Equal(t, "a+b+c", a.Canonical())
	// Round-trips to an equal set.
	assert.True(t, Equal(a, Tokenize(a.Canonical())))
}

func TestCloneIsIndependent(t *testing.T) {
	a := Tokenize("orders")
	b := a.Clone()
	b["extra"] = true
	assert.False(t, a["extra"])
}
