package mapping

import (
	"math"
	"testing"
)

func TestSimilarityIdentical(t *testing.T) {
	if got := Similarity("Invoice", "Invoice"); got != 1.0 {
		t.Errorf("Expected 1.0, got %f", got)
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	if got := Similarity("abc", "xyz"); got != 0.0 {
		t.Errorf("Expected 0.0, got %f", got)
	}
}

func TestSimilarityPartialOverlap(t *testing.T) {
	// Longest common run "bcd" gives 2*3/8.
	if got := Similarity("abcd", "bcde"); got != 0.75 {
		t.Errorf("Expected 0.75, got %f", got)
	}
}

func TestSimilarityEmpty(t *testing.T) {
	if got := Similarity("", ""); got != 1.0 {
		t.Errorf("Expected 1.0 for two empty strings, got %f", got)
	}
	if got := Similarity("abc", ""); got != 0.0 {
		t.Errorf("Expected 0.0 against empty string, got %f", got)
	}
}

func TestSimilarityCountsRunesNotBytes(t *testing.T) {
	// "nº" and "n°" share one rune out of two on each side.
	if got := Similarity("nº", "n°"); got != 0.5 {
		t.Errorf("Expected 0.5, got %f", got)
	}
}

func TestSimilarityRecursesAroundLongestRun(t *testing.T) {
	// "abxcd" vs "abcd": run "ab", then "cd" on the right side, 2*4/9.
	got := Similarity("abxcd", "abcd")
	want := 2.0 * 4.0 / 9.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected %f, got %f", want, got)
	}
}

func TestBestMatchRespectsThreshold(t *testing.T) {
	mappings := map[string]string{"Description": "col_desc", "Amount": "col_amount"}

	key, ok := bestMatch("Descriptionn", mappings, 0.7)
	if !ok || key != "Description" {
		t.Errorf("Expected Description, got %q ok=%v", key, ok)
	}

	if _, ok := bestMatch("ZZZ", mappings, 0.7); ok {
		t.Error("Expected no match below threshold")
	}
}
