package visitor

import "strings"

// SplitModifiers separates the access modifier from the other modifiers of
// a declaration. phrases are tried in order, so "protected internal" must
// come before "protected"; a phrase matches when all its words are present
// in any order. The access modifier is returned in phrase order and the
// remaining words in source order. equal compares single words.
func SplitModifiers(words, phrases []string, equal func(a, b string) bool) (access, rest string) {
	used := make([]bool, len(words))
	for _, phrase := range phrases {
		parts := strings.Fields(phrase)
		idx := make([]int, 0, len(parts))
		for _, p := range parts {
			for i, w := range words {
				if !used[i] && !containsIndex(idx, i) && equal(w, p) {
					idx = append(idx, i)
					break
				}
			}
		}
		if len(idx) != len(parts) {
			continue
		}
		for _, i := range idx {
			used[i] = true
		}
		access = phrase
		break
	}

	var remaining []string
	for i, w := range words {
		if !used[i] {
			remaining = append(remaining, w)
		}
	}
	return access, strings.Join(remaining, " ")
}

func containsIndex(idx []int, i int) bool {
	for _, v := range idx {
		if v == i {
			return true
		}
	}
	return false
}
