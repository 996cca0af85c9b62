package textutil_test

import (
	"math"
	"testing"

	"rigconvert/internal/textutil"
)

func TestCosineSimilarityNil(t *testing.T) {
	fp := textutil.NewFingerprint("body material")
	if got := textutil.CosineSimilarity(nil, fp); got != 0 {
		t.Fatalf("nil left = %v", got)
	}
	if got := textutil.CosineSimilarity(fp, nil); got != 0 {
		t.Fatalf("nil right = %v", got)
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	a := textutil.NewFingerprint("Materials/Body.mat")
	b := textutil.NewFingerprint("materials body mat")
	if got := textutil.CosineSimilarity(a, b); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical tokens = %v, want 1", got)
	}
}

func TestCosineSimilarityDisjoint(t *testing.T) {
	a := textutil.NewFingerprint("hair shader")
	b := textutil.NewFingerprint("idle clip")
	if got := textutil.CosineSimilarity(a, b); got != 0 {
		t.Fatalf("disjoint = %v", got)
	}
}

func TestNewFingerprintDropsShortTokens(t *testing.T) {
	if fp := textutil.NewFingerprint("a b c"); fp != nil {
		t.Fatalf("expected nil fingerprint, got %d tokens", fp.TokenCount())
	}
	fp := textutil.NewFingerprint("Body_mat Body")
	if fp.TokenCount() != 2 {
		t.Fatalf("TokenCount = %d, want 2", fp.TokenCount())
	}
}

func TestTokenize(t *testing.T) {
	got := textutil.Tokenize("Clips/Wave Hand (L).anim")
	want := []string{"clips", "wave", "hand", "anim"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClosestMatch(t *testing.T) {
	candidates := []string{
		"Clips/Idle.anim",
		"Materials/Body.mat",
		"Materials/Hair.mat",
	}
	got, ok := textutil.ClosestMatch("Materials/Body_mat", candidates, 0.5)
	if !ok || got != "Materials/Body.mat" {
		t.Fatalf("ClosestMatch = %q %v", got, ok)
	}
	if _, ok := textutil.ClosestMatch("Controllers/FX", candidates, 0.5); ok {
		t.Fatal("expected no match below threshold")
	}
	if _, ok := textutil.ClosestMatch("", candidates, 0); ok {
		t.Fatal("expected no match for empty query")
	}
}
