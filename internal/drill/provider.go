package drill

import (
	"context"
	"fmt"

	"github.com/spencerchil/spencerbot/internal/anki"
)

// Generator produces exercise content from sampled vocabulary. It is an
// external collaborator (a language-model service); the engine only
// depends on this interface.
//
// Implementations must validate their output into the typed [Payload]
// union before returning it and must be safe for concurrent use.
type Generator interface {
	// Generate creates one exercise of the given kind from the sampled
	// words. The returned payload's concrete type must match the kind.
	Generate(ctx context.Context, kind Kind, words []anki.Word) (Payload, error)

	// VocabList formats raw user-supplied words into a vocabulary list for
	// the stateless vocab channel.
	VocabList(ctx context.Context, raw string) ([]VocabEntry, error)
}

// Grader scores a student's answer against a pending exercise.
type Grader interface {
	// Grade evaluates studentText against ex. The returned result's
	// concrete type must match ex.Kind.
	Grade(ctx context.Context, ex Exercise, studentText string) (GradeResult, error)
}

// Speech synthesises text to MP3 audio. Synthesis failures are recoverable:
// audio-bearing exercises degrade to text-only presentation.
type Speech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// GenerateError wraps a generator failure with the kind that failed.
type GenerateError struct {
	Kind Kind
	Err  error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("drill: generate %s exercise: %v", e.Kind, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// GradeError wraps a grader failure with the kind that failed.
type GradeError struct {
	Kind Kind
	Err  error
}

func (e *GradeError) Error() string {
	return fmt.Sprintf("drill: grade %s exercise: %v", e.Kind, e.Err)
}

func (e *GradeError) Unwrap() error { return e.Err }
