// Package anki reads decks and notes from a local Anki collection database.
//
// The collection is treated as read-only: the bot never writes to it and
// every query opens a fresh connection, so a running Anki instance that
// releases its lock between queries is picked up immediately. Schema
// differences between Anki versions (the modern decks table versus the
// legacy JSON column in col) are handled internally; callers only see
// [Deck] and [Word] values.
package anki

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrStoreUnavailable is returned when the collection database cannot be
// opened or queried, typically because Anki itself holds the lock or the
// configured path does not exist.
var ErrStoreUnavailable = errors.New("anki: collection unavailable")

// defaultDeckID is the reserved default deck every collection contains.
// It is never shown to users.
const defaultDeckID = "1"

// Deck identifies a single deck in the collection. Name may be hierarchical
// with segments joined by "::" (e.g. "Korean::Week3").
type Deck struct {
	ID   string
	Name string
}

// Word is one vocabulary note: the Korean target text, its English gloss,
// and any free-form tags attached to the note.
type Word struct {
	Korean  string
	English string
	Tags    []string
}

// Store exposes read access to the collection.
//
// ListDecks returns decks in store iteration order with the default deck
// excluded; callers that display deck names should sort them themselves
// (see [SortedDeckNames]). Both methods fail with an error wrapping
// [ErrStoreUnavailable] when the database cannot be reached.
type Store interface {
	ListDecks(ctx context.Context) ([]Deck, error)
	WordsInDeck(ctx context.Context, deckID string) ([]Word, error)
}

// SortedDeckNames returns the deck names sorted case-insensitively.
// Resolution intentionally does NOT use this order; it follows store order.
func SortedDeckNames(decks []Deck) []string {
	names := make([]string, len(decks))
	for i, d := range decks {
		names[i] = d.Name
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}
