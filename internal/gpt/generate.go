package gpt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spencerchil/spencerbot/internal/anki"
	"github.com/spencerchil/spencerbot/internal/drill"
)

// Generation system prompts, one per kind. All demand raw JSON with a fixed
// shape at B1 level; the exact wording matters more than it looks, small
// rewordings change how often the model wraps output in fences or prose.
const (
	vocabSystem = `You are a Korean language teacher. Generate a B1-level vocabulary list from the provided Korean words. Follow these translation rules:

VERBS:
- If transitive (takes a direct object): translate as "to do (something)" where (something) is in parentheses only if the object is unspecified. If the object is specified or implied (e.g. 공연 관람 - watching a performance), no parentheses.
- If intransitive (no direct object): translate as "to be something" (e.g. 어색하다 - to be awkward).

GRAMMAR PATTERNS:
- Translate with brief explanation followed by "(grammar pattern)" in parentheses (e.g. -고 나면 - after doing (grammar pattern)).

NOUNS:
- Translate with single concise English noun or noun phrase, no articles unless necessary.

ADVERBS AND PARTICLES:
- Translate with single concise English equivalent.

GENERAL RULES:
- One translation per term, choosing the most common/useful meaning
- If a term has a spelling error, correct it and translate the corrected version
- No slashes between multiple definitions
- Keep translations concise
- Bold the Korean term in output

Return a JSON array with objects containing: korean, romanization, english, part_of_speech, example_korean, example_english. Return ONLY the JSON array, no markdown or additional text.`

	translationSystem = `You are a Korean language teacher. Generate a B1-level translation exercise appropriate for intermediate learners. Direction: %s. Return a JSON object with: direction, prompt, answer, words_used (list), difficulty_note. Return ONLY JSON, no markdown.`

	audioSystem = `You are a Korean language teacher. Generate a B1-level audio exercise with a sentence in Korean appropriate for intermediate learners. Return JSON with: korean, romanization, english, tts_text. Return ONLY JSON, no markdown.`

	dictationSystem = `Generate a B1-level dictation exercise with a full Korean sentence (not just words) appropriate for intermediate learners. Return JSON with: korean, english, tts_text, words_used (list of words in sentence). Return ONLY JSON, no markdown.`

	clozeSystem = `Generate a B1-level cloze exercise appropriate for intermediate learners: 4-6 sentence Korean paragraph with 3-5 blanks numbered _1_, _2_, etc. Return JSON with: paragraph (with blanks), blanks (list of {position, korean, english}), full_paragraph (with words filled in), words_used. Return ONLY JSON, no markdown.`

	readingSystem = `Generate a B1-level reading exercise appropriate for intermediate learners: 6-10 sentence Korean story with 3 English comprehension questions. Return JSON with: story_korean, story_english (translation), questions (list), answers (list), words_used. Return ONLY JSON, no markdown.`

	writeSystem = `Generate a B1-level Korean writing prompt appropriate for intermediate learners. Return JSON with: prompt (scenario for student to write about), target_words (list of Korean words to use), english_hint (context hint in English). Return ONLY JSON, no markdown.`

	buildSystem = `Generate a B1-level sentence building exercise appropriate for intermediate learners. Pick 3-5 words and create an example sentence using them. Return JSON with: given_words (list of {korean, english}), difficulty_note, example_answer. Return ONLY JSON, no markdown.`
)

// Generate implements drill.Generator.
func (c *Client) Generate(ctx context.Context, kind drill.Kind, words []anki.Word) (drill.Payload, error) {
	terms := koreanTerms(words)

	switch kind {
	case drill.KindTranslateEnKr, drill.KindTranslateKrEn:
		return c.generateTranslation(ctx, kind, terms)
	case drill.KindAudio:
		raw, err := c.completeJSON(ctx, audioSystem,
			"Generate an audio exercise using these Korean words: "+terms)
		if err != nil {
			return nil, err
		}
		return parseAudio(raw)
	case drill.KindDictation:
		raw, err := c.completeJSON(ctx, dictationSystem,
			"Generate a dictation using these words: "+terms)
		if err != nil {
			return nil, err
		}
		return parseDictation(raw)
	case drill.KindCloze:
		raw, err := c.completeJSON(ctx, clozeSystem,
			"Generate a cloze exercise using these words: "+terms)
		if err != nil {
			return nil, err
		}
		return parseCloze(raw)
	case drill.KindReading:
		raw, err := c.completeJSON(ctx, readingSystem,
			"Generate a reading story using these words: "+terms)
		if err != nil {
			return nil, err
		}
		return parseReading(raw)
	case drill.KindWrite:
		raw, err := c.completeJSON(ctx, writeSystem,
			"Generate a writing prompt using these target words: "+terms)
		if err != nil {
			return nil, err
		}
		return parseWriting(raw)
	case drill.KindBuild:
		raw, err := c.completeJSON(ctx, buildSystem,
			"Generate a sentence building exercise using words from: "+terms)
		if err != nil {
			return nil, err
		}
		return parseBuild(raw)
	}
	return nil, fmt.Errorf("gpt: unsupported exercise kind %q", kind)
}

func (c *Client) generateTranslation(ctx context.Context, kind drill.Kind, terms string) (drill.Payload, error) {
	direction, directionText := "en_to_kr", "English to Korean"
	if kind == drill.KindTranslateKrEn {
		direction, directionText = "kr_to_en", "Korean to English"
	}

	raw, err := c.completeJSON(ctx,
		fmt.Sprintf(translationSystem, directionText),
		fmt.Sprintf("Generate a %s translation exercise using these words: %s", directionText, terms))
	if err != nil {
		return nil, err
	}
	return parseTranslation(raw, direction)
}

// VocabList implements drill.Generator. JSON mode forces an object at the
// top level even though the prompt asks for an array, so both shapes are
// accepted.
func (c *Client) VocabList(ctx context.Context, raw string) ([]drill.VocabEntry, error) {
	body, err := c.completeJSON(ctx, vocabSystem, "Generate vocab list for these words:\n"+raw)
	if err != nil {
		return nil, err
	}
	return parseVocabList(body)
}

// --- Wire shapes and ingest validation ---

type vocabWire struct {
	Korean         string `json:"korean"`
	Romanization   string `json:"romanization"`
	English        string `json:"english"`
	PartOfSpeech   string `json:"part_of_speech"`
	ExampleKorean  string `json:"example_korean"`
	ExampleEnglish string `json:"example_english"`
}

func parseVocabList(raw []byte) ([]drill.VocabEntry, error) {
	var wires []vocabWire
	if err := json.Unmarshal(raw, &wires); err != nil {
		var wrapped struct {
			Vocab []vocabWire `json:"vocab"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("gpt: parse vocab list: %w", err)
		}
		wires = wrapped.Vocab
	}

	entries := make([]drill.VocabEntry, 0, len(wires))
	for _, w := range wires {
		if w.Korean == "" {
			continue
		}
		entries = append(entries, drill.VocabEntry{
			Korean:         w.Korean,
			Romanization:   w.Romanization,
			English:        w.English,
			PartOfSpeech:   w.PartOfSpeech,
			ExampleKorean:  w.ExampleKorean,
			ExampleEnglish: w.ExampleEnglish,
		})
	}
	return entries, nil
}

func parseTranslation(raw []byte, direction string) (drill.TranslationPayload, error) {
	var w struct {
		Prompt         string   `json:"prompt"`
		Answer         string   `json:"answer"`
		WordsUsed      []string `json:"words_used"`
		DifficultyNote string   `json:"difficulty_note"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.TranslationPayload{}, fmt.Errorf("gpt: parse translation exercise: %w", err)
	}
	p := drill.TranslationPayload{
		Direction: direction,
		Prompt:    w.Prompt,
		Answer:    w.Answer,
		WordsUsed: w.WordsUsed,
		Note:      w.DifficultyNote,
	}
	if err := p.Validate(); err != nil {
		return drill.TranslationPayload{}, fmt.Errorf("gpt: translation exercise: %w", err)
	}
	return p, nil
}

func parseAudio(raw []byte) (drill.AudioPayload, error) {
	var w struct {
		Korean       string `json:"korean"`
		Romanization string `json:"romanization"`
		English      string `json:"english"`
		TTSText      string `json:"tts_text"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.AudioPayload{}, fmt.Errorf("gpt: parse audio exercise: %w", err)
	}
	p := drill.AudioPayload{
		Korean:       w.Korean,
		Romanization: w.Romanization,
		English:      w.English,
		TTSText:      w.TTSText,
	}
	if p.TTSText == "" {
		p.TTSText = p.Korean
	}
	if err := p.Validate(); err != nil {
		return drill.AudioPayload{}, fmt.Errorf("gpt: audio exercise: %w", err)
	}
	return p, nil
}

func parseDictation(raw []byte) (drill.DictationPayload, error) {
	var w struct {
		Korean    string   `json:"korean"`
		English   string   `json:"english"`
		TTSText   string   `json:"tts_text"`
		WordsUsed []string `json:"words_used"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.DictationPayload{}, fmt.Errorf("gpt: parse dictation exercise: %w", err)
	}
	p := drill.DictationPayload{
		Korean:    w.Korean,
		English:   w.English,
		TTSText:   w.TTSText,
		WordsUsed: w.WordsUsed,
	}
	if p.TTSText == "" {
		p.TTSText = p.Korean
	}
	if err := p.Validate(); err != nil {
		return drill.DictationPayload{}, fmt.Errorf("gpt: dictation exercise: %w", err)
	}
	return p, nil
}

func parseCloze(raw []byte) (drill.ClozePayload, error) {
	var w struct {
		Paragraph string `json:"paragraph"`
		Blanks    []struct {
			Position int    `json:"position"`
			Korean   string `json:"korean"`
			English  string `json:"english"`
		} `json:"blanks"`
		FullParagraph string   `json:"full_paragraph"`
		WordsUsed     []string `json:"words_used"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.ClozePayload{}, fmt.Errorf("gpt: parse cloze exercise: %w", err)
	}
	p := drill.ClozePayload{
		Paragraph:     w.Paragraph,
		FullParagraph: w.FullParagraph,
		WordsUsed:     w.WordsUsed,
	}
	for _, b := range w.Blanks {
		p.Blanks = append(p.Blanks, drill.ClozeBlank{
			Position: b.Position,
			Korean:   b.Korean,
			English:  b.English,
		})
	}
	if err := p.Validate(); err != nil {
		return drill.ClozePayload{}, fmt.Errorf("gpt: cloze exercise: %w", err)
	}
	return p, nil
}

func parseReading(raw []byte) (drill.ReadingPayload, error) {
	var w struct {
		StoryKorean  string   `json:"story_korean"`
		StoryEnglish string   `json:"story_english"`
		Questions    []string `json:"questions"`
		Answers      []string `json:"answers"`
		WordsUsed    []string `json:"words_used"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.ReadingPayload{}, fmt.Errorf("gpt: parse reading exercise: %w", err)
	}
	p := drill.ReadingPayload{
		StoryKorean:  w.StoryKorean,
		StoryEnglish: w.StoryEnglish,
		Questions:    w.Questions,
		Answers:      w.Answers,
		WordsUsed:    w.WordsUsed,
	}
	if err := p.Validate(); err != nil {
		return drill.ReadingPayload{}, fmt.Errorf("gpt: reading exercise: %w", err)
	}
	return p, nil
}

func parseWriting(raw []byte) (drill.WritingPayload, error) {
	var w struct {
		Prompt      string   `json:"prompt"`
		TargetWords []string `json:"target_words"`
		EnglishHint string   `json:"english_hint"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.WritingPayload{}, fmt.Errorf("gpt: parse writing prompt: %w", err)
	}
	p := drill.WritingPayload{
		Prompt:      w.Prompt,
		TargetWords: w.TargetWords,
		EnglishHint: w.EnglishHint,
	}
	if err := p.Validate(); err != nil {
		return drill.WritingPayload{}, fmt.Errorf("gpt: writing prompt: %w", err)
	}
	return p, nil
}

func parseBuild(raw []byte) (drill.BuildPayload, error) {
	var w struct {
		GivenWords []struct {
			Korean  string `json:"korean"`
			English string `json:"english"`
		} `json:"given_words"`
		DifficultyNote string `json:"difficulty_note"`
		ExampleAnswer  string `json:"example_answer"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.BuildPayload{}, fmt.Errorf("gpt: parse build exercise: %w", err)
	}
	p := drill.BuildPayload{
		DifficultyNote: w.DifficultyNote,
		ExampleAnswer:  w.ExampleAnswer,
	}
	for _, g := range w.GivenWords {
		p.GivenWords = append(p.GivenWords, drill.GivenWord{Korean: g.Korean, English: g.English})
	}
	if err := p.Validate(); err != nil {
		return drill.BuildPayload{}, fmt.Errorf("gpt: build exercise: %w", err)
	}
	return p, nil
}
