package drill

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/spencerchil/spencerbot/internal/anki"
	"github.com/spencerchil/spencerbot/internal/observe"
)

// timedStore decorates an [anki.Store] with query-latency samples. The
// engine wraps its store in one, so the resolver and pool builder are
// timed without knowing about metrics.
type timedStore struct {
	inner   anki.Store
	metrics *observe.Metrics
}

var _ anki.Store = (*timedStore)(nil)

func (t *timedStore) ListDecks(ctx context.Context) ([]anki.Deck, error) {
	start := time.Now()
	decks, err := t.inner.ListDecks(ctx)
	t.metrics.StoreQueryDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("query", "list_decks")))
	return decks, err
}

func (t *timedStore) WordsInDeck(ctx context.Context, deckID string) ([]anki.Word, error) {
	start := time.Now()
	words, err := t.inner.WordsInDeck(ctx, deckID)
	t.metrics.StoreQueryDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("query", "words_in_deck")))
	return words, err
}
