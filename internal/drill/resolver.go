package drill

import (
	"context"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/spencerchil/spencerbot/internal/anki"
)

// deckSeparator joins segments of hierarchical deck names.
const deckSeparator = "::"

// DeckResolver resolves free-text user input to a canonical deck name.
// Every call fetches the live deck list so a collection edited between
// turns is reflected immediately.
type DeckResolver struct {
	store anki.Store
}

// NewDeckResolver returns a resolver reading from store.
func NewDeckResolver(store anki.Store) *DeckResolver {
	return &DeckResolver{store: store}
}

// Resolve maps input to the canonical name of an existing deck.
//
// Matching is case-insensitive on the trimmed input: first the full deck
// name, then the final hierarchical segment ("Week3" matches
// "Korean::Week3"). The first match in store order wins; the store's
// iteration order is the documented tie-break when two decks share a final
// segment.
//
// A miss returns ok=false with a nil error — not-found is normal control
// flow, the caller treats the text as an exercise answer instead. A store
// failure returns a non-nil error wrapping [anki.ErrStoreUnavailable].
func (r *DeckResolver) Resolve(ctx context.Context, input string) (string, bool, error) {
	query := strings.ToLower(strings.TrimSpace(input))
	if query == "" {
		return "", false, nil
	}

	decks, err := r.store.ListDecks(ctx)
	if err != nil {
		return "", false, err
	}

	for _, d := range decks {
		if strings.ToLower(d.Name) == query {
			return d.Name, true, nil
		}
	}
	for _, d := range decks {
		lower := strings.ToLower(d.Name)
		if finalSegment(lower) == query {
			return d.Name, true, nil
		}
	}
	return "", false, nil
}

// Suggest returns up to n deck names ranked by Jaro-Winkler similarity to
// input, most similar first; ties keep the case-insensitive name order.
// With empty input it simply returns the first n names in display order.
// Suggestions are presentation only and never influence [Resolve].
func (r *DeckResolver) Suggest(ctx context.Context, input string, n int) ([]string, error) {
	decks, err := r.store.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	names := anki.SortedDeckNames(decks)

	query := strings.ToLower(strings.TrimSpace(input))
	if query != "" {
		sort.SliceStable(names, func(i, j int) bool {
			return deckSimilarity(query, names[i]) > deckSimilarity(query, names[j])
		})
	}
	if len(names) > n {
		names = names[:n]
	}
	return names, nil
}

// deckSimilarity scores name against query using the better of the full
// name and its final segment.
func deckSimilarity(query, name string) float64 {
	lower := strings.ToLower(name)
	full := matchr.JaroWinkler(query, lower, true)
	seg := matchr.JaroWinkler(query, finalSegment(lower), true)
	if seg > full {
		return seg
	}
	return full
}

// finalSegment returns the text after the last hierarchical separator.
func finalSegment(name string) string {
	if i := strings.LastIndex(name, deckSeparator); i >= 0 {
		return name[i+len(deckSeparator):]
	}
	return name
}
