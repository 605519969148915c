package drill

import (
	"context"
	"math/rand"
	"sync"

	"github.com/spencerchil/spencerbot/internal/anki"
)

// MaxSampleSize caps how many words a single generation call receives.
const MaxSampleSize = 15

// PoolBuilder loads the candidate vocabulary for a session's deck
// selection and samples bounded subsets for exercise generation.
type PoolBuilder struct {
	store anki.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPoolBuilder returns a builder reading from store. When rng is nil a
// time-seeded source is used; tests pass a fixed seed.
func NewPoolBuilder(store anki.Store, rng *rand.Rand) *PoolBuilder {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &PoolBuilder{store: store, rng: rng}
}

// Build returns the full word pool for the selection. For the all-decks
// sentinel it concatenates every deck's words in deck-listing order and
// deduplicates by Korean text, first occurrence winning. An empty result
// with a nil error means an empty (but valid) deck — callers must report
// that distinctly from a store failure.
func (b *PoolBuilder) Build(ctx context.Context, sel DeckSelection) ([]anki.Word, error) {
	if sel.IsAll() {
		return b.buildAll(ctx)
	}

	deckID, err := b.deckID(ctx, string(sel))
	if err != nil {
		return nil, err
	}
	if deckID == "" {
		return nil, nil
	}
	return b.store.WordsInDeck(ctx, deckID)
}

func (b *PoolBuilder) buildAll(ctx context.Context) ([]anki.Word, error) {
	decks, err := b.store.ListDecks(ctx)
	if err != nil {
		return nil, err
	}

	var pool []anki.Word
	seen := make(map[string]bool)
	for _, d := range decks {
		words, err := b.store.WordsInDeck(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		for _, w := range words {
			if seen[w.Korean] {
				continue
			}
			seen[w.Korean] = true
			pool = append(pool, w)
		}
	}
	return pool, nil
}

// deckID looks up the store ID for a canonical deck name. An unknown name
// yields "" (empty pool) rather than an error: the name was resolved
// earlier in the turn and the deck may have been deleted since.
func (b *PoolBuilder) deckID(ctx context.Context, name string) (string, error) {
	decks, err := b.store.ListDecks(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range decks {
		if d.Name == name {
			return d.ID, nil
		}
	}
	return "", nil
}

// Sample returns at most [MaxSampleSize] words drawn uniformly without
// replacement. The pool is not mutated; each call re-rolls (no caching, no
// weighting). Pools at or under the cap are returned in a copied slice
// unchanged.
func (b *PoolBuilder) Sample(pool []anki.Word) []anki.Word {
	out := make([]anki.Word, len(pool))
	copy(out, pool)
	if len(out) <= MaxSampleSize {
		return out
	}

	b.mu.Lock()
	b.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	b.mu.Unlock()
	return out[:MaxSampleSize]
}
