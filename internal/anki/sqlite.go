package anki

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// fieldSeparator is the unit separator Anki uses between note fields.
const fieldSeparator = "\x1f"

// Compile-time assertion that Collection satisfies the Store interface.
var _ Store = (*Collection)(nil)

// Collection reads a collection.anki2 SQLite file.
//
// A fresh database handle is opened per query and closed before the method
// returns. The file must exist at construction time.
type Collection struct {
	path string
}

// OpenCollection validates that a collection database exists at path and
// returns a [Collection] for it. When path is empty the default location
// for the given profile is used (~/.local/share/Anki2/<profile>/collection.anki2).
func OpenCollection(path, profile string) (*Collection, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("anki: resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".local", "share", "Anki2", profile, "collection.anki2")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: collection not found at %s", ErrStoreUnavailable, path)
	}
	return &Collection{path: path}, nil
}

// Path returns the collection file path. Used by health checks and logs.
func (c *Collection) Path() string {
	return c.path
}

// open returns a new handle to the collection. Anki holds an exclusive lock
// while it is running, which surfaces here as a "database is locked" error.
func (c *Collection) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+c.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return db, nil
}

// classify maps driver errors onto the package error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "locked") {
		return fmt.Errorf("%w: Anki appears to be open, close it and try again", ErrStoreUnavailable)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// ListDecks implements [Store.ListDecks]. It tries the modern decks table
// first (Anki 2.1.45+) and falls back to the legacy JSON column in col.
// The reserved default deck is excluded. Order is ascending deck id, which
// for Anki is creation order; deck-name resolution relies on this being
// stable across calls.
func (c *Collection) ListDecks(ctx context.Context) ([]Deck, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	decks, err := listDecksNewSchema(ctx, db)
	if err == nil {
		return decks, nil
	}
	if !isMissingTable(err) {
		return nil, classify(err)
	}

	decks, err = listDecksLegacySchema(ctx, db)
	if err != nil {
		return nil, classify(err)
	}
	return decks, nil
}

func listDecksNewSchema(ctx context.Context, db *sql.DB) ([]Deck, error) {
	// Ordered by id, not name: the unicase collation is not available
	// outside Anki.
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM decks WHERE id != 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		decks = append(decks, Deck{ID: fmt.Sprint(id), Name: name})
	}
	return decks, rows.Err()
}

func listDecksLegacySchema(ctx context.Context, db *sql.DB) ([]Deck, error) {
	var decksJSON string
	err := db.QueryRowContext(ctx, `SELECT decks FROM col LIMIT 1`).Scan(&decksJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if decksJSON == "" {
		return nil, nil
	}

	var raw map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(decksJSON), &raw); err != nil {
		return nil, fmt.Errorf("parse col.decks: %w", err)
	}

	var decks []Deck
	for id, obj := range raw {
		if id == defaultDeckID {
			continue
		}
		decks = append(decks, Deck{ID: id, Name: obj.Name})
	}
	// Map iteration order is random; match the modern schema's id order.
	sort.Slice(decks, func(i, j int) bool { return deckSortKey(decks[i].ID) < deckSortKey(decks[j].ID) })
	return decks, nil
}

// deckSortKey parses a deck ID for numeric ordering. Anki ids are epoch
// milliseconds, so this is creation order.
func deckSortKey(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// WordsInDeck implements [Store.WordsInDeck]. Notes are joined through
// cards; fields are split on the 0x1f separator with field 0 as the Korean
// text and field 1 as the English gloss. Notes with fewer than two fields
// are skipped.
func (c *Collection) WordsInDeck(ctx context.Context, deckID string) ([]Word, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT n.flds, n.tags
		FROM cards c
		JOIN notes n ON c.nid = n.id
		WHERE c.did = ?
	`, deckID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var words []Word
	for rows.Next() {
		var flds, tags string
		if err := rows.Scan(&flds, &tags); err != nil {
			return nil, classify(err)
		}
		fields := strings.Split(flds, fieldSeparator)
		if len(fields) < 2 {
			continue
		}
		words = append(words, Word{
			Korean:  strings.TrimSpace(fields[0]),
			English: strings.TrimSpace(fields[1]),
			Tags:    strings.Fields(tags),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return words, nil
}

// isMissingTable reports whether err is sqlite's "no such table" error.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "no such table")
}
