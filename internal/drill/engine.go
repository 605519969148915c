package drill

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/spencerchil/spencerbot/internal/anki"
	"github.com/spencerchil/spencerbot/internal/observe"
)

// maxListedDecks caps deck names shown in listings and prompts.
const maxListedDecks = 10

// vocabPageSize is the number of entries per vocabulary panel.
const vocabPageSize = 10

// Engine is the generic session state machine. One instance serves all
// users and all exercise kinds; per-kind behaviour lives in the registry.
type Engine struct {
	sessions SessionStore
	decks    anki.Store
	resolver *DeckResolver
	pool     *PoolBuilder
	gen      Generator
	grader   Grader
	speech   Speech

	log     *slog.Logger
	metrics *observe.Metrics
	rng     *rand.Rand
}

// EngineOption configures an [Engine].
type EngineOption func(*Engine)

// WithSpeech enables audio synthesis for the audio-bearing kinds. Without
// it those kinds present text-only.
func WithSpeech(s Speech) EngineOption {
	return func(e *Engine) { e.speech = s }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithMetrics overrides the default metrics instance.
func WithMetrics(m *observe.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithRand overrides the sampling source. Test hook.
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// NewEngine builds an engine over the given session store, flashcard store,
// and external generation/grading services.
func NewEngine(sessions SessionStore, decks anki.Store, gen Generator, grader Grader, opts ...EngineOption) *Engine {
	e := &Engine{
		sessions: sessions,
		gen:      gen,
		grader:   grader,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	e.decks = &timedStore{inner: decks, metrics: e.metrics}
	e.resolver = NewDeckResolver(e.decks)
	e.pool = NewPoolBuilder(e.decks, e.rng)
	return e
}

// HandleTurn processes one inbound message for a learning channel. All
// user-visible output goes through sink; the returned error is for logging
// only and has already been surfaced to the user as a friendly message.
func (e *Engine) HandleTurn(ctx context.Context, userID string, kind Kind, text string, sink Sink) error {
	err := e.handle(ctx, userID, kind, text, sink)
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordTurn(ctx, string(kind), status)
	return err
}

func (e *Engine) handle(ctx context.Context, userID string, kind Kind, text string, sink Sink) error {
	text = strings.TrimSpace(text)

	// The vocabulary channel is stateless: no deck, no session, no grading.
	if kind == KindVocab {
		return e.handleVocab(ctx, text, sink)
	}

	// Reserved commands take priority over everything, in this order.
	switch strings.ToLower(text) {
	case "stop":
		return e.handleStop(ctx, userID, sink)
	case "skip":
		return e.handleSkip(ctx, userID, kind, sink)
	case "list":
		return e.handleList(ctx, userID, sink)
	case "all":
		return e.handleAll(ctx, userID, sink)
	}

	// Anything else might be a deck name. A successful selection is a
	// standalone turn; it never also generates an exercise.
	name, ok, err := e.resolver.Resolve(ctx, text)
	if err != nil {
		sink.Send(ctx, storeUnavailableMessage())
		return fmt.Errorf("drill: resolve deck: %w", err)
	}
	if ok {
		return e.selectDeck(ctx, userID, DeckSelection(name), sink)
	}

	deck, hasDeck := e.sessions.ActiveDeck(userID)
	if !hasDeck {
		return e.promptDeckSelection(ctx, text, sink)
	}

	// From here the text is a student answer (or a request for a first
	// exercise).
	if ex, pending := e.sessions.Exercise(userID); pending {
		if ex.Kind == kind {
			return e.gradeAndContinue(ctx, userID, kind, deck, ex, text, sink)
		}
		// The pending exercise belongs to another channel; the user
		// switched mid-exercise. Discard it without grading.
		e.sessions.ClearExercise(userID)
	}
	return e.generate(ctx, userID, kind, deck, sink)
}

func (e *Engine) handleStop(ctx context.Context, userID string, sink Sink) error {
	if _, hadDeck := e.sessions.ActiveDeck(userID); hadDeck {
		e.metrics.ActiveSessions.Add(ctx, -1)
	}
	e.sessions.Reset(userID)
	return sink.Send(ctx, Message{
		Title: "👋 Session Ended",
		Body:  "Deck selection and any pending exercise have been cleared. Type a deck name to start again.",
		Color: ColorNeutral,
	})
}

func (e *Engine) handleSkip(ctx context.Context, userID string, kind Kind, sink Sink) error {
	ex, ok := e.sessions.Exercise(userID)
	if !ok {
		// Nothing to skip.
		return nil
	}
	if ex.Kind != kind {
		// The pending exercise belongs to another channel. Discard it
		// like any other cross-channel turn; this channel's renderer
		// can't reveal it.
		e.sessions.ClearExercise(userID)
		return nil
	}
	e.sessions.ClearExercise(userID)
	spec, _ := specFor(kind)
	if err := sink.Send(ctx, spec.reveal(ex)); err != nil {
		return err
	}
	deck, hasDeck := e.sessions.ActiveDeck(userID)
	if !hasDeck {
		return nil
	}
	return e.generate(ctx, userID, kind, deck, sink)
}

func (e *Engine) handleList(ctx context.Context, userID string, sink Sink) error {
	decks, err := e.decks.ListDecks(ctx)
	if err != nil {
		sink.Send(ctx, storeUnavailableMessage())
		return fmt.Errorf("drill: list decks: %w", err)
	}

	msg := Message{Title: "📋 Decks", Color: ColorInfo}
	if deck, ok := e.sessions.ActiveDeck(userID); ok {
		value := string(deck)
		if words, err := e.pool.Build(ctx, deck); err == nil {
			value = fmt.Sprintf("%s (%d words)", deck, len(words))
		}
		msg.Fields = append(msg.Fields, Field{Name: "Active Deck", Value: value})
	}

	names := anki.SortedDeckNames(decks)
	if len(names) == 0 {
		msg.Body = "No decks found in the collection."
		return sink.Send(ctx, msg)
	}
	overflow := 0
	if len(names) > maxListedDecks {
		overflow = len(names) - maxListedDecks
		names = names[:maxListedDecks]
	}
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "• %s\n", n)
	}
	if overflow > 0 {
		fmt.Fprintf(&b, "… and %d more", overflow)
	}
	msg.Fields = append(msg.Fields, Field{Name: "Available", Value: strings.TrimRight(b.String(), "\n")})
	return sink.Send(ctx, msg)
}

func (e *Engine) handleAll(ctx context.Context, userID string, sink Sink) error {
	_, hadDeck := e.sessions.ActiveDeck(userID)
	e.sessions.SetActiveDeck(userID, AllDecks)
	if !hadDeck {
		e.metrics.ActiveSessions.Add(ctx, 1)
	}

	// Selection already took effect; a read failure or an empty pool only
	// changes the message.
	words, err := e.pool.Build(ctx, AllDecks)
	if err != nil {
		sink.Send(ctx, storeUnavailableMessage())
		return fmt.Errorf("drill: build all-decks pool: %w", err)
	}
	if len(words) == 0 {
		return sink.Send(ctx, Message{
			Title: "✅ Studying All Decks",
			Body:  "No words found across your decks yet. Add some cards and send any message to begin.",
			Color: ColorWarning,
		})
	}
	return sink.Send(ctx, Message{
		Title: "✅ Studying All Decks",
		Body:  fmt.Sprintf("**%d** unique words across all decks. Send any message to begin.", len(words)),
		Color: ColorSuccess,
	})
}

func (e *Engine) selectDeck(ctx context.Context, userID string, deck DeckSelection, sink Sink) error {
	_, hadDeck := e.sessions.ActiveDeck(userID)
	e.sessions.SetActiveDeck(userID, deck)
	if !hadDeck {
		e.metrics.ActiveSessions.Add(ctx, 1)
	}

	words, err := e.pool.Build(ctx, deck)
	if err != nil {
		sink.Send(ctx, storeUnavailableMessage())
		return fmt.Errorf("drill: build pool for %q: %w", deck, err)
	}
	if len(words) == 0 {
		return sink.Send(ctx, emptyDeckMessage(deck))
	}
	return sink.Send(ctx, Message{
		Title: "✅ Deck Selected",
		Body:  fmt.Sprintf("**%s** — %d words. Send any message to begin.", deck, len(words)),
		Color: ColorSuccess,
	})
}

// promptDeckSelection is the no-active-deck guard. The failed input doubles
// as a fuzzy query for suggestions.
func (e *Engine) promptDeckSelection(ctx context.Context, input string, sink Sink) error {
	msg := Message{
		Title: "❌ No Deck Selected",
		Body:  "Type a deck name to begin, or 'all' to study every deck.",
		Color: ColorWarning,
	}
	if suggestions, err := e.resolver.Suggest(ctx, input, 3); err == nil && len(suggestions) > 0 {
		msg.Fields = append(msg.Fields, Field{Name: "Did you mean", Value: strings.Join(suggestions, ", ")})
	}
	return sink.Send(ctx, msg)
}

func (e *Engine) gradeAndContinue(ctx context.Context, userID string, kind Kind, deck DeckSelection, ex Exercise, answer string, sink Sink) error {
	// Cleared before grading so a failure can never wedge the session with
	// a half-graded exercise.
	e.sessions.ClearExercise(userID)

	start := time.Now()
	res, err := e.grader.Grade(ctx, ex, answer)
	e.metrics.GradingDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("kind", string(kind))))
	if err != nil {
		e.metrics.RecordProviderError(ctx, "grader", string(kind))
		e.log.Error("grading failed", "kind", kind, "user", userID, "error", err)
		sink.Send(ctx, retryMessage("Grading failed"))
		return &GradeError{Kind: kind, Err: err}
	}

	if err := sink.Send(ctx, specMustExist(kind).presentGrade(ex, res, answer)); err != nil {
		return err
	}
	// Grading always chains into the next exercise.
	return e.generate(ctx, userID, kind, deck, sink)
}

func (e *Engine) generate(ctx context.Context, userID string, kind Kind, deck DeckSelection, sink Sink) error {
	words, err := e.pool.Build(ctx, deck)
	if err != nil {
		sink.Send(ctx, storeUnavailableMessage())
		return fmt.Errorf("drill: build pool for %q: %w", deck, err)
	}
	if len(words) == 0 {
		return sink.Send(ctx, emptyDeckMessage(deck))
	}

	start := time.Now()
	payload, err := e.gen.Generate(ctx, kind, e.pool.Sample(words))
	e.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("kind", string(kind))))
	if err != nil {
		e.metrics.RecordProviderError(ctx, "generator", string(kind))
		e.log.Error("generation failed", "kind", kind, "user", userID, "error", err)
		sink.Send(ctx, retryMessage("Couldn't generate an exercise"))
		return &GenerateError{Kind: kind, Err: err}
	}

	ex := Exercise{Kind: kind, OriginDeck: deck, Payload: payload}
	spec := specMustExist(kind)

	var audio []byte
	audioOK := false
	if spec.ttsText != nil && e.speech != nil {
		tstart := time.Now()
		audio, err = e.speech.Synthesize(ctx, spec.ttsText(payload))
		e.metrics.SynthesisDuration.Record(ctx, time.Since(tstart).Seconds())
		if err != nil {
			// Recoverable: the exercise degrades to text-only.
			e.metrics.RecordProviderError(ctx, "speech", string(kind))
			e.log.Warn("synthesis failed, presenting text only", "kind", kind, "error", err)
			audio = nil
		} else {
			audioOK = true
		}
	}

	msg := spec.present(ex, audioOK)
	if audioOK {
		msg.Audio = audio
		msg.AudioName = "exercise.mp3"
	}
	msg.Footer = fmt.Sprintf("Active deck: %s · 'skip' to reveal · 'stop' to end · 'list' for decks", deck)

	e.sessions.SetExercise(userID, ex)
	return sink.Send(ctx, msg)
}

func (e *Engine) handleVocab(ctx context.Context, text string, sink Sink) error {
	if text == "" {
		return sink.Send(ctx, Message{
			Title: "📚 Vocabulary",
			Body:  "Send one or more Korean words to get a vocabulary breakdown.",
			Color: ColorInfo,
		})
	}

	start := time.Now()
	entries, err := e.gen.VocabList(ctx, text)
	e.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("kind", string(KindVocab))))
	if err != nil {
		e.metrics.RecordProviderError(ctx, "generator", string(KindVocab))
		e.log.Error("vocab list failed", "error", err)
		sink.Send(ctx, retryMessage("Couldn't build the vocabulary list"))
		return &GenerateError{Kind: KindVocab, Err: err}
	}
	if len(entries) == 0 {
		return sink.Send(ctx, Message{
			Title: "📚 Vocabulary",
			Body:  "No vocabulary recognised in that message.",
			Color: ColorWarning,
		})
	}

	pages := (len(entries) + vocabPageSize - 1) / vocabPageSize
	for i := 0; i < pages; i++ {
		lo := i * vocabPageSize
		hi := min(lo+vocabPageSize, len(entries))

		msg := Message{Title: "📚 Vocabulary List", Color: ColorInfo}
		if pages > 1 {
			msg.Title = fmt.Sprintf("📚 Vocabulary List (%d/%d)", i+1, pages)
		}
		for _, v := range entries[lo:hi] {
			msg.Fields = append(msg.Fields, Field{Name: vocabFieldName(v), Value: vocabFieldValue(v)})
		}
		if err := sink.Send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func vocabFieldName(v VocabEntry) string {
	if v.Romanization != "" {
		return fmt.Sprintf("%s (%s)", v.Korean, v.Romanization)
	}
	return v.Korean
}

func vocabFieldValue(v VocabEntry) string {
	var b strings.Builder
	b.WriteString(v.English)
	if v.PartOfSpeech != "" {
		fmt.Fprintf(&b, " · %s", v.PartOfSpeech)
	}
	if v.ExampleKorean != "" {
		fmt.Fprintf(&b, "\n%s", v.ExampleKorean)
		if v.ExampleEnglish != "" {
			fmt.Fprintf(&b, " (%s)", v.ExampleEnglish)
		}
	}
	return b.String()
}

// specMustExist returns the registry entry for a kind that was already
// validated at the routing layer.
func specMustExist(kind Kind) kindSpec {
	spec, ok := specFor(kind)
	if !ok {
		panic(fmt.Sprintf("drill: no registry entry for kind %q", kind))
	}
	return spec
}

func storeUnavailableMessage() Message {
	return Message{
		Title: "⚠️ Collection Unavailable",
		Body:  "The flashcard collection can't be read right now (is Anki open or syncing?). Try again in a moment.",
		Color: ColorError,
	}
}

func emptyDeckMessage(deck DeckSelection) Message {
	return Message{
		Title: "❌ Empty Deck",
		Body:  fmt.Sprintf("**%s** has no words yet. Add some cards and try again.", deck),
		Color: ColorWarning,
	}
}

func retryMessage(reason string) Message {
	return Message{
		Title: "⚠️ Something Went Wrong",
		Body:  reason + ". Please try again.",
		Color: ColorError,
	}
}
