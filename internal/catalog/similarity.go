package catalog

import "github.com/pmezard/go-difflib/difflib"

// Similarity returns the Ratcliff/Obershelp ratio 2*M/(len(a)+len(b)) where M is
// the number of runes covered by the recursively found longest matching blocks.
// Sequences of 200 runes or more ignore popular runes when seeding blocks.
// No normalization is applied: comparison is case- and width-sensitive.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// runes splits s into one-rune strings, the element type the matcher compares.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
