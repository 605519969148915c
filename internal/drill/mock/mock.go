// Package mock provides test doubles for the drill engine's collaborators:
// the flashcard store, the exercise generator and grader, speech synthesis,
// and the message sink.
//
// Zero values for response fields cause methods to return zero values and
// nil errors. Set Err fields to inject failures. All mocks record their
// invocations for assertions and are safe for concurrent use.
package mock

import (
	"context"
	"sync"

	"github.com/spencerchil/spencerbot/internal/anki"
	"github.com/spencerchil/spencerbot/internal/drill"
)

// Store is a mock implementation of anki.Store.
type Store struct {
	mu sync.Mutex

	// Decks is returned by ListDecks.
	Decks []anki.Deck

	// Words maps deck ID to the words returned by WordsInDeck.
	Words map[string][]anki.Word

	// ListErr, if non-nil, is returned by ListDecks.
	ListErr error

	// WordsErr, if non-nil, is returned by WordsInDeck.
	WordsErr error

	// WordsCalls records the deck IDs passed to WordsInDeck.
	WordsCalls []string
}

var _ anki.Store = (*Store)(nil)

// ListDecks returns the configured decks or error.
func (s *Store) ListDecks(ctx context.Context) ([]anki.Deck, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.Decks, nil
}

// WordsInDeck records the call and returns the configured words or error.
func (s *Store) WordsInDeck(ctx context.Context, deckID string) ([]anki.Word, error) {
	s.mu.Lock()
	s.WordsCalls = append(s.WordsCalls, deckID)
	s.mu.Unlock()
	if s.WordsErr != nil {
		return nil, s.WordsErr
	}
	return s.Words[deckID], nil
}

// GenerateCall records a single invocation of Generate.
type GenerateCall struct {
	// Kind is the exercise kind requested.
	Kind drill.Kind
	// Words is the sampled word set passed in.
	Words []anki.Word
}

// Generator is a mock implementation of drill.Generator.
type Generator struct {
	mu sync.Mutex

	// Payload is returned by Generate.
	Payload drill.Payload

	// GenerateErr, if non-nil, is returned by Generate.
	GenerateErr error

	// Entries is returned by VocabList.
	Entries []drill.VocabEntry

	// VocabErr, if non-nil, is returned by VocabList.
	VocabErr error

	// GenerateCalls records all Generate invocations.
	GenerateCalls []GenerateCall

	// VocabCalls records the raw text passed to VocabList.
	VocabCalls []string
}

var _ drill.Generator = (*Generator)(nil)

// Generate records the call and returns the configured payload or error.
func (g *Generator) Generate(ctx context.Context, kind drill.Kind, words []anki.Word) (drill.Payload, error) {
	g.mu.Lock()
	g.GenerateCalls = append(g.GenerateCalls, GenerateCall{Kind: kind, Words: words})
	g.mu.Unlock()
	if g.GenerateErr != nil {
		return nil, g.GenerateErr
	}
	return g.Payload, nil
}

// VocabList records the call and returns the configured entries or error.
func (g *Generator) VocabList(ctx context.Context, raw string) ([]drill.VocabEntry, error) {
	g.mu.Lock()
	g.VocabCalls = append(g.VocabCalls, raw)
	g.mu.Unlock()
	if g.VocabErr != nil {
		return nil, g.VocabErr
	}
	return g.Entries, nil
}

// GradeCall records a single invocation of Grade.
type GradeCall struct {
	// Exercise is the pending exercise being graded.
	Exercise drill.Exercise
	// StudentText is the raw answer text.
	StudentText string
}

// Grader is a mock implementation of drill.Grader.
type Grader struct {
	mu sync.Mutex

	// Result is returned by Grade.
	Result drill.GradeResult

	// Err, if non-nil, is returned by Grade.
	Err error

	// Calls records all Grade invocations.
	Calls []GradeCall
}

var _ drill.Grader = (*Grader)(nil)

// Grade records the call and returns the configured result or error.
func (g *Grader) Grade(ctx context.Context, ex drill.Exercise, studentText string) (drill.GradeResult, error) {
	g.mu.Lock()
	g.Calls = append(g.Calls, GradeCall{Exercise: ex, StudentText: studentText})
	g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Result, nil
}

// Speech is a mock implementation of drill.Speech.
type Speech struct {
	mu sync.Mutex

	// Audio is returned by Synthesize.
	Audio []byte

	// Err, if non-nil, is returned by Synthesize.
	Err error

	// Texts records the text passed to Synthesize.
	Texts []string
}

var _ drill.Speech = (*Speech)(nil)

// Synthesize records the call and returns the configured audio or error.
func (s *Speech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	s.Texts = append(s.Texts, text)
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Audio, nil
}

// Sink records messages emitted by the engine.
type Sink struct {
	mu sync.Mutex

	// Err, if non-nil, is returned by Send.
	Err error

	// Messages records all sent messages in order.
	Messages []drill.Message
}

var _ drill.Sink = (*Sink)(nil)

// Send records the message and returns the configured error.
func (s *Sink) Send(ctx context.Context, msg drill.Message) error {
	s.mu.Lock()
	s.Messages = append(s.Messages, msg)
	s.mu.Unlock()
	return s.Err
}

// Last returns the most recently recorded message, or the zero Message.
func (s *Sink) Last() drill.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Messages) == 0 {
		return drill.Message{}
	}
	return s.Messages[len(s.Messages)-1]
}
