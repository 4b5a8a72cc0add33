package report

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	"github.com/standardbeagle/csfacts/internal/model"
)

// SuggestThreshold is the minimum Jaro-Winkler similarity for a class name
// to be suggested.
const SuggestThreshold = 0.80

// minStemLength keeps short words like "io" or "db" unstemmed.
const minStemLength = 3

// SuggestClasses returns up to max qualified class names similar to name,
// best first. Short names are compared so a wrong namespace still finds
// the class.
func SuggestClasses(repo *model.Repository, name string, max int) []string {
	type scored struct {
		name  string
		score float32
	}
	want := strings.ToLower(model.ShortName(name))
	var candidates []scored
	for _, cu := range repo.CompilationUnits {
		for _, ct := range cu.ClassTypes {
			full := ct.Head().Name
			score, err := edlib.StringsSimilarity(want, strings.ToLower(model.ShortName(full)), edlib.JaroWinkler)
			if err != nil || score < SuggestThreshold {
				continue
			}
			candidates = append(candidates, scored{full, score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	var out []string
	for _, c := range candidates {
		if len(out) == max {
			break
		}
		out = append(out, c.name)
	}
	return out
}

// SearchClasses lists the classes whose short name contains every word of
// query after stemming, so "invoices service" finds InvoiceService.
func SearchClasses(repo *model.Repository, query string) []ClassEntry {
	want := StemWords(SplitWords(query))
	if len(want) == 0 {
		return nil
	}
	var out []ClassEntry
	for _, entry := range ListClasses(repo, "") {
		have := make(map[string]bool)
		for _, s := range StemWords(SplitWords(model.ShortName(entry.Name))) {
			have[s] = true
		}
		matched := true
		for _, w := range want {
			if !have[w] {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, entry)
		}
	}
	return out
}

// SplitWords splits an identifier or phrase into lower-case words at
// separators, camelCase humps, acronym ends and letter/digit changes:
// "parseHTTPRequest2" gives parse, http, request, 2.
func SplitWords(s string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, ch := range runes {
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(ch):
				flush()
			case unicode.IsLetter(prev) != unicode.IsLetter(ch):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(ch) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// End of an acronym: the last capital starts the next word.
				flush()
			}
		}
		current = append(current, ch)
	}
	flush()
	return words
}

// StemWords applies Porter2 stemming to words of at least minStemLength
// characters and keeps shorter words as they are.
func StemWords(words []string) []string {
	stems := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) >= minStemLength {
			w = porter2.Stem(w)
		}
		stems = append(stems, w)
	}
	return stems
}
