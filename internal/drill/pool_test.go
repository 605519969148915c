package drill_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/spencerchil/spencerbot/internal/anki"
	"github.com/spencerchil/spencerbot/internal/drill"
	"github.com/spencerchil/spencerbot/internal/drill/mock"
)

func TestBuildNamedDeck(t *testing.T) {
	t.Parallel()
	store := &mock.Store{
		Decks: []anki.Deck{{ID: "d1", Name: "Korean::Week3"}},
		Words: map[string][]anki.Word{
			"d1": {{Korean: "사과", English: "apple"}, {Korean: "물", English: "water"}},
		},
	}
	b := drill.NewPoolBuilder(store, nil)

	got, err := b.Build(context.Background(), "Korean::Week3")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Build returned %d words, want 2", len(got))
	}
}

func TestBuildUnknownDeckIsEmpty(t *testing.T) {
	t.Parallel()
	store := &mock.Store{Decks: []anki.Deck{{ID: "d1", Name: "Korean"}}}
	b := drill.NewPoolBuilder(store, nil)

	got, err := b.Build(context.Background(), "Japanese")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Build returned %d words for unknown deck, want 0", len(got))
	}
}

func TestBuildAllDecksDeduplicatesByKorean(t *testing.T) {
	t.Parallel()
	store := &mock.Store{
		Decks: []anki.Deck{
			{ID: "d1", Name: "Week1"},
			{ID: "d2", Name: "Week2"},
		},
		Words: map[string][]anki.Word{
			"d1": {{Korean: "사과", English: "apple"}, {Korean: "물", English: "water"}},
			"d2": {{Korean: "사과", English: "apple (fruit)"}, {Korean: "책", English: "book"}},
		},
	}
	b := drill.NewPoolBuilder(store, nil)

	got, err := b.Build(context.Background(), drill.AllDecks)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Build returned %d words, want 3 after dedupe", len(got))
	}
	for _, w := range got {
		if w.Korean == "사과" && w.English != "apple" {
			t.Errorf("duplicate kept gloss %q, want first occurrence %q", w.English, "apple")
		}
	}
}

func TestSampleCapsSizeWithoutDuplicates(t *testing.T) {
	t.Parallel()
	store := &mock.Store{}
	b := drill.NewPoolBuilder(store, rand.New(rand.NewSource(7)))

	pool := make([]anki.Word, 40)
	for i := range pool {
		pool[i] = anki.Word{Korean: fmt.Sprintf("단어%d", i)}
	}

	sample := b.Sample(pool)
	if len(sample) != drill.MaxSampleSize {
		t.Fatalf("Sample size = %d, want %d", len(sample), drill.MaxSampleSize)
	}
	seen := make(map[string]bool, len(sample))
	for _, w := range sample {
		if seen[w.Korean] {
			t.Errorf("Sample contains duplicate %q", w.Korean)
		}
		seen[w.Korean] = true
	}
}

func TestSampleSmallPoolReturnsAll(t *testing.T) {
	t.Parallel()
	b := drill.NewPoolBuilder(&mock.Store{}, rand.New(rand.NewSource(7)))

	pool := []anki.Word{{Korean: "사과"}, {Korean: "물"}}
	if got := b.Sample(pool); len(got) != 2 {
		t.Errorf("Sample size = %d, want 2", len(got))
	}
}

func TestSampleDoesNotMutatePool(t *testing.T) {
	t.Parallel()
	b := drill.NewPoolBuilder(&mock.Store{}, rand.New(rand.NewSource(7)))

	pool := make([]anki.Word, 20)
	for i := range pool {
		pool[i] = anki.Word{Korean: fmt.Sprintf("단어%d", i)}
	}
	b.Sample(pool)

	for i, w := range pool {
		if want := fmt.Sprintf("단어%d", i); w.Korean != want {
			t.Fatalf("pool[%d] = %q after Sample, want %q", i, w.Korean, want)
		}
	}
}
