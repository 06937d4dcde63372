package storage

import "testing"

func TestTrigramSimilarity_Identical(t *testing.T) {
	if got := TrigramSimilarity("necklace", "necklace"); got != 1.0 {
		t.Errorf("identical strings = %v, want 1.0", got)
	}
	if got := TrigramSimilarity("Necklace", "NECKLACE"); got != 1.0 {
		t.Errorf("case must not matter, got %v", got)
	}
}

func TestTrigramSimilarity_Disjoint(t *testing.T) {
	if got := TrigramSimilarity("ring", "xyz"); got != 0 {
		t.Errorf("unrelated strings = %v, want 0", got)
	}
	if got := TrigramSimilarity("", "ring"); got != 0 {
		t.Errorf("empty string = %v, want 0", got)
	}
}

func TestTrigramSimilarity_TypoTolerance(t *testing.T) {
	typo := TrigramSimilarity("necklace", "neckless")
	if typo <= 0.2 {
		t.Errorf("one-typo word should stay above the loose threshold, got %v", typo)
	}
	unrelated := TrigramSimilarity("necklace", "bracelet")
	if typo <= unrelated {
		t.Errorf("typo (%v) must score higher than an unrelated word (%v)", typo, unrelated)
	}
}

func TestTrigramSimilarity_MultiWord(t *testing.T) {
	partial := TrigramSimilarity("Silver Necklace", "necklace")
	if partial <= 0.3 {
		t.Errorf("word contained in a multi-word string should clear the default threshold, got %v", partial)
	}
	full := TrigramSimilarity("Silver Necklace", "silver necklace")
	if full != 1.0 {
		t.Errorf("same words = %v, want 1.0", full)
	}
}

func TestTrigramSimilarity_Symmetric(t *testing.T) {
	a, b := "collier", "colier"
	if TrigramSimilarity(a, b) != TrigramSimilarity(b, a) {
		t.Error("similarity must be symmetric")
	}
}
