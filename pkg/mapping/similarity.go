package mapping

import (
	"sort"
	"strings"
)

// Similarity scores two strings in [0, 1] using Ratcliff/Obershelp
// matching: twice the number of matching characters over the recursive
// longest-common-substring decomposition, divided by the total length.
// Comparison is rune-based so accented labels score correctly.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchingRunes(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(total)
}

func matchingRunes(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a, b, alo, i, blo, j) +
		matchingRunes(a, b, i+size, ahi, j+size, bhi)
}

// longestMatch finds the longest run of equal runes between a[alo:ahi] and
// b[blo:bhi], preferring the earliest position in a, then in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, size int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > size {
				besti, bestj, size = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, size
}

// bestMatch returns the mapping key most similar to raw, provided its score
// meets the threshold. Keys are scanned in sorted order so ties resolve the
// same way on every run.
func bestMatch(raw string, mappings map[string]string, threshold float64) (string, bool) {
	lower := strings.ToLower(raw)
	var best string
	var bestScore float64
	found := false
	for _, key := range sortedKeys(mappings) {
		score := Similarity(lower, strings.ToLower(key))
		if score > bestScore && score >= threshold {
			bestScore = score
			best = key
			found = true
		}
	}
	return best, found
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
