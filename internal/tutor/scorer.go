// Package tutor implements the adaptive tutoring core: the lexical
// understanding scorer, the difficulty tier machine, and the per-session
// manager that owns all state mutation.
package tutor

import (
	"sort"
	"strings"
	"unicode"
)

// Score delta bounds. Negative signals are capped less aggressively downward
// than positive signals are capped upward so one frustrated message cannot
// crater the score as fast as enthusiasm raises it.
const (
	maxScoreDelta = 15
	minScoreDelta = -12
)

// positiveWeights maps understanding cues to their score contribution.
var positiveWeights = map[string]int{
	"ok":             8,
	"okay":           8,
	"k":              6,
	"got it":         10,
	"i understand":   12,
	"understood":     12,
	"makes sense":    10,
	"i see":          10,
	"clear now":      12,
	"thanks":         3,
	"thank you":      7,
	"that helps":     7,
	"helpful":        7,
	"great":          10,
	"awesome":        10,
	"perfect":        10,
	"nice":           6,
	"cool":           6,
	"works":          5,
	"resolved":       6,
	"solved":         6,
	"yes that helps": 6,
	"yup":            5,
	"yep":            5,
	"ok got it":      7,
}

// negativeWeights maps confusion cues to their score contribution.
var negativeWeights = map[string]int{
	"confused":         -6,
	"dont understand":  -7,
	"what do you mean": -5,
	"can you explain":  -5,
	"im lost":          -7,
	"unclear":          -5,
	"not sure":         -4,
	"unsure":           -4,
	"explain again":    -5,
	"simplify":         -4,
	"too hard":         -6,
	"too difficult":    -6,
	"slow down":        -4,
	"still confused":   -6,
	"no":               -3,
	"nah":              -3,
}

// Candidate phrases are matched longest-first, then strongest-first, so a
// 3-gram claims its words before any of its sub-phrases can score.
var (
	positiveOrder = sortedPhrases(positiveWeights)
	negativeOrder = sortedPhrases(negativeWeights)
)

func sortedPhrases(table map[string]int) []string {
	phrases := make([]string, 0, len(table))
	for p := range table {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		li, lj := len(strings.Fields(phrases[i])), len(strings.Fields(phrases[j]))
		if li != lj {
			return li > lj
		}
		wi, wj := abs(table[phrases[i]]), abs(table[phrases[j]])
		if wi != wj {
			return wi > wj
		}
		return phrases[i] < phrases[j]
	})
	return phrases
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Score computes a bounded understanding delta for one user utterance.
// It is pure: always an integer in [-12, 15], zero when nothing matches.
func Score(text string) int {
	grams := ngramSet(normalize(text))
	if len(grams) == 0 {
		return 0
	}

	raw := matchTotal(positiveOrder, positiveWeights, grams) +
		matchTotal(negativeOrder, negativeWeights, grams)

	if raw > maxScoreDelta {
		return maxScoreDelta
	}
	if raw < minScoreDelta {
		return minScoreDelta
	}
	return raw
}

// normalize lowercases, drops apostrophes so contractions collapse
// ("don't" -> "dont"), and maps all other punctuation to spaces.
func normalize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r == '\'' || r == '’':
			// skip
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

// ngramSet collects every contiguous 1-, 2- and 3-word phrase in the utterance.
func ngramSet(words []string) map[string]struct{} {
	grams := make(map[string]struct{}, len(words)*3)
	for i := range words {
		for n := 1; n <= 3 && i+n <= len(words); n++ {
			grams[strings.Join(words[i:i+n], " ")] = struct{}{}
		}
	}
	return grams
}

// matchTotal scans one table's phrases in precedence order. A matched phrase
// consumes itself and all of its word-subsequences so "ok got it" scores once,
// not as "ok" + "got it" + "ok got it".
func matchTotal(order []string, table map[string]int, grams map[string]struct{}) int {
	consumed := make(map[string]struct{})
	total := 0
	for _, phrase := range order {
		if _, ok := grams[phrase]; !ok {
			continue
		}
		if _, ok := consumed[phrase]; ok {
			continue
		}
		total += table[phrase]
		consume(phrase, consumed)
	}
	return total
}

func consume(phrase string, consumed map[string]struct{}) {
	consumed[phrase] = struct{}{}
	words := strings.Fields(phrase)
	for i := range words {
		for n := 1; n < len(words) && i+n <= len(words); n++ {
			consumed[strings.Join(words[i:i+n], " ")] = struct{}{}
		}
	}
}
