package genome

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// CompareIDs orders chromosome identifiers naturally: runs of digits compare
// by numeric value and everything else compares case-insensitively, so
// "N2" < "N10" and "at1" == "AT1" for ordering purposes. Identifiers that tie
// are ordered by their raw bytes to keep the order total.
func CompareIDs(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			ei, ej := digitRun(ra, i), digitRun(rb, j)
			if c := compareNumeric(string(ra[i:ei]), string(rb[j:ej])); c != 0 {
				return c
			}
			i, j = ei, ej
			continue
		}
		if c := cmp.Compare(unicode.ToLower(ca), unicode.ToLower(cb)); c != 0 {
			return c
		}
		i++
		j++
	}
	if c := cmp.Compare(len(ra)-i, len(rb)-j); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func digitRun(r []rune, i int) int {
	for i < len(r) && unicode.IsDigit(r[i]) {
		i++
	}
	return i
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Prefix returns the letters of id with everything else removed, e.g. the
// species tag "at" for "at10".
func Prefix(id string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return r
		}
		return -1
	}, id)
}

// SortIDs returns the identifiers in genome-browser order. Ids are sorted
// naturally, then grouped by species prefix; groups holding more chromosomes
// come first. A prefix that contains another prefix as a subsequence (for
// example "hsX" and "hs") is folded into the shorter one.
func SortIDs(ids []string) []string {
	sorted := slices.Clone(ids)
	slices.SortStableFunc(sorted, CompareIDs)

	var prefixes []string
	for _, id := range sorted {
		if p := Prefix(id); !slices.Contains(prefixes, p) {
			prefixes = append(prefixes, p)
		}
	}

	removed := make(map[string]bool)
	for _, a := range prefixes {
		for _, b := range prefixes {
			if a == b || a == "" || b == "" {
				continue
			}
			if !removed[b] && isSubsequence(a, b) {
				removed[b] = true
			} else if !removed[a] && isSubsequence(b, a) {
				removed[a] = true
			}
		}
	}
	prefixes = slices.DeleteFunc(prefixes, func(p string) bool { return removed[p] })

	groups := make(map[string][]string, len(prefixes))
	assigned := make(map[string]bool, len(sorted))
	for _, p := range prefixes {
		for _, id := range sorted {
			if !assigned[id] && belongs(p, id) {
				groups[p] = append(groups[p], id)
				assigned[id] = true
			}
		}
	}
	slices.SortStableFunc(prefixes, func(a, b string) int {
		return cmp.Compare(len(groups[b]), len(groups[a]))
	})

	out := make([]string, 0, len(sorted))
	for _, p := range prefixes {
		out = append(out, groups[p]...)
	}
	for _, id := range sorted {
		if !assigned[id] {
			out = append(out, id)
		}
	}
	return out
}

func belongs(prefix, id string) bool {
	if prefix == "" {
		return Prefix(id) == ""
	}
	return isSubsequence(prefix, id)
}

// isSubsequence reports whether every character of sub appears in s in order.
func isSubsequence(sub, s string) bool {
	rs := []rune(s)
	j := 0
	for _, r := range sub {
		for j < len(rs) && rs[j] != r {
			j++
		}
		if j == len(rs) {
			return false
		}
		j++
	}
	return true
}
