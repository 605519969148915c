package drill

import "fmt"

// AllDecks is the deck selection meaning "aggregate every deck,
// deduplicated". It is a display value as well as a sentinel.
const AllDecks = "All"

// DeckSelection is either a canonical deck name or the [AllDecks] sentinel.
type DeckSelection string

// IsAll reports whether the selection is the all-decks sentinel.
func (d DeckSelection) IsAll() bool {
	return d == AllDecks
}

// Exercise is one generated drill instance, pending a student answer.
// Exercises are immutable once generated and consumed exactly once, by
// either a grade or a skip.
type Exercise struct {
	// Kind routes the exercise to its grading contract. A pending exercise
	// whose Kind differs from the channel the student answers in is stale
	// and discarded without grading.
	Kind Kind

	// OriginDeck is the deck selection that was active at generation time.
	OriginDeck DeckSelection

	// Payload carries the kind-specific generated content.
	Payload Payload
}

// Payload is the closed set of per-kind exercise contents. External
// generator output is validated into one of these concrete types at the
// ingest boundary; the engine and registry only ever see the typed union.
type Payload interface {
	payload()
	// Validate checks that the required fields for the kind are present.
	Validate() error
}

// TranslationPayload is a single sentence to translate in one direction.
type TranslationPayload struct {
	Direction string // "en_to_kr" or "kr_to_en"
	Prompt    string
	Answer    string
	WordsUsed []string
	Note      string
}

func (TranslationPayload) payload() {}

func (p TranslationPayload) Validate() error {
	if p.Prompt == "" || p.Answer == "" {
		return fmt.Errorf("translation payload missing prompt or answer")
	}
	return nil
}

// AudioPayload is a listening exercise: a Korean sentence synthesised to
// speech, answered with its meaning.
type AudioPayload struct {
	Korean       string
	Romanization string
	English      string
	TTSText      string
}

func (AudioPayload) payload() {}

func (p AudioPayload) Validate() error {
	if p.Korean == "" || p.English == "" {
		return fmt.Errorf("audio payload missing korean or english")
	}
	return nil
}

// DictationPayload is a full Korean sentence the student transcribes from
// audio.
type DictationPayload struct {
	Korean    string
	English   string
	TTSText   string
	WordsUsed []string
}

func (DictationPayload) payload() {}

func (p DictationPayload) Validate() error {
	if p.Korean == "" {
		return fmt.Errorf("dictation payload missing korean")
	}
	return nil
}

// ClozeBlank is one numbered gap in a cloze paragraph.
type ClozeBlank struct {
	Position int
	Korean   string
	English  string
}

// ClozePayload is a fill-in-the-blank paragraph.
type ClozePayload struct {
	Paragraph     string
	Blanks        []ClozeBlank
	FullParagraph string
	WordsUsed     []string
}

func (ClozePayload) payload() {}

func (p ClozePayload) Validate() error {
	if p.Paragraph == "" || len(p.Blanks) == 0 {
		return fmt.Errorf("cloze payload missing paragraph or blanks")
	}
	return nil
}

// ReadingPayload is a short story with comprehension questions.
type ReadingPayload struct {
	StoryKorean  string
	StoryEnglish string
	Questions    []string
	Answers      []string
	WordsUsed    []string
}

func (ReadingPayload) payload() {}

func (p ReadingPayload) Validate() error {
	if p.StoryKorean == "" || len(p.Questions) == 0 {
		return fmt.Errorf("reading payload missing story or questions")
	}
	return nil
}

// WritingPayload is a free-writing scenario with target vocabulary.
type WritingPayload struct {
	Prompt      string
	TargetWords []string
	EnglishHint string
}

func (WritingPayload) payload() {}

func (p WritingPayload) Validate() error {
	if p.Prompt == "" {
		return fmt.Errorf("writing payload missing prompt")
	}
	return nil
}

// GivenWord is one vocabulary item handed to the student in a
// sentence-building exercise.
type GivenWord struct {
	Korean  string
	English string
}

// BuildPayload is a sentence-building exercise over a small word set.
type BuildPayload struct {
	GivenWords     []GivenWord
	DifficultyNote string
	ExampleAnswer  string
}

func (BuildPayload) payload() {}

func (p BuildPayload) Validate() error {
	if len(p.GivenWords) == 0 || p.ExampleAnswer == "" {
		return fmt.Errorf("build payload missing given words or example answer")
	}
	return nil
}

// VocabEntry is one row of a generated vocabulary list (stateless kind).
type VocabEntry struct {
	Korean         string
	Romanization   string
	English        string
	PartOfSpeech   string
	ExampleKorean  string
	ExampleEnglish string
}

// GradeResult is the closed set of per-kind grading outcomes. Every result
// carries a 0-100 score; the kind-specific detail varies.
type GradeResult interface {
	graded()
	// Score returns the 0-100 overall score for color tiering.
	Score() int
}

// SentenceGrade covers the kinds graded as a single answer against a
// reference: both translation directions, audio, dictation, and build.
type SentenceGrade struct {
	Correct   bool
	Points    int
	Feedback  string
	Corrected string
	Diff      string // dictation only

	// Build-specific flags; zero-valued for other kinds.
	AllWordsUsed   bool
	GrammarCorrect bool
	ExampleAnswer  string
}

func (SentenceGrade) graded() {}

func (g SentenceGrade) Score() int { return g.Points }

// BlankResult is one graded cloze blank.
type BlankResult struct {
	Position int
	Correct  bool
	Student  string
	Answer   string
}

// ClozeGrade is the per-blank grading outcome for cloze exercises.
type ClozeGrade struct {
	Points   int
	Results  []BlankResult
	Feedback string
}

func (ClozeGrade) graded() {}

func (g ClozeGrade) Score() int { return g.Points }

// QuestionResult is one graded reading-comprehension question.
type QuestionResult struct {
	Question string
	Correct  bool
	Feedback string
}

// ReadingGrade is the per-question grading outcome for reading exercises.
type ReadingGrade struct {
	Points          int
	Results         []QuestionResult
	OverallFeedback string
}

func (ReadingGrade) graded() {}

func (g ReadingGrade) Score() int { return g.Points }

// Correction is one suggested fix in a graded writing submission.
type Correction struct {
	Original    string
	Corrected   string
	Explanation string
}

// WritingGrade is the grading outcome for free writing.
type WritingGrade struct {
	Points          int
	TargetUsed      []string
	TargetMissed    []string
	Corrections     []Correction // at most 5
	OverallFeedback string
	ImprovedVersion string
}

func (WritingGrade) graded() {}

func (g WritingGrade) Score() int { return g.Points }
