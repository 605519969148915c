package drill

import (
	"fmt"
	"strings"
)

// kindSpec is the per-kind configuration consumed by the engine. The
// control flow in engine.go is identical for every kind; these four facets
// are the only thing that varies.
type kindSpec struct {
	// title and describe head the exercise panel.
	title    string
	describe string

	// ttsText extracts the text to synthesise. Empty result (or nil func)
	// means the kind has no audio.
	ttsText func(Payload) string

	// present renders the exercise panel fields. audioOK is false when the
	// kind carries audio but synthesis failed, in which case the panel
	// must degrade to a text-only variant.
	present func(Exercise, bool) Message

	// reveal renders the skip ("show me the answer") panel.
	reveal func(Exercise) Message

	// presentGrade renders the grading outcome.
	presentGrade func(Exercise, GradeResult, string) Message
}

// specFor returns the registry entry for k. Unknown kinds are a programmer
// error caught at routing time, so the second return is for tests only.
func specFor(k Kind) (kindSpec, bool) {
	s, ok := kindSpecs[k]
	return s, ok
}

var kindSpecs map[Kind]kindSpec

func init() {
	kindSpecs = map[Kind]kindSpec{
		KindTranslateEnKr: {
			title:        "Translation Exercise 🇺🇸 → 🇰🇷",
			present:      presentTranslation,
			reveal:       revealTranslation,
			presentGrade: gradeSentencePanel,
		},
		KindTranslateKrEn: {
			title:        "Translation Exercise 🇰🇷 → 🇺🇸",
			present:      presentTranslation,
			reveal:       revealTranslation,
			presentGrade: gradeSentencePanel,
		},
		KindAudio: {
			title:        "🔊 Audio Exercise",
			describe:     "Listen to the audio and respond with the meaning.",
			ttsText:      func(p Payload) string { return p.(AudioPayload).TTSText },
			present:      presentAudio,
			reveal:       revealAudio,
			presentGrade: gradeAudioPanel,
		},
		KindDictation: {
			title:        "🎤 Dictation Exercise",
			describe:     "Listen and type what you hear in Korean.",
			ttsText:      func(p Payload) string { return p.(DictationPayload).TTSText },
			present:      presentDictation,
			reveal:       revealDictation,
			presentGrade: gradeDictationPanel,
		},
		KindCloze: {
			title:        "📝 Cloze Exercise",
			describe:     "Fill in the blanks with the correct words.",
			present:      presentCloze,
			reveal:       revealCloze,
			presentGrade: gradeClozePanel,
		},
		KindReading: {
			title:        "📖 Reading Comprehension",
			describe:     "Read the story and answer the questions in English.",
			present:      presentReading,
			reveal:       revealReading,
			presentGrade: gradeReadingPanel,
		},
		KindWrite: {
			title:        "✏️ Free Writing Exercise",
			present:      presentWriting,
			reveal:       revealWriting,
			presentGrade: gradeWritingPanel,
		},
		KindBuild: {
			title:        "🏗️ Sentence Building Exercise",
			describe:     "Build a sentence using the given words.",
			present:      presentBuild,
			reveal:       revealBuild,
			presentGrade: gradeBuildPanel,
		},
	}
}

// ── Exercise presentation ─────────────────────────────────────────────────────

func presentTranslation(ex Exercise, _ bool) Message {
	p := ex.Payload.(TranslationPayload)
	return Message{
		Title: kindSpecs[ex.Kind].title,
		Body:  "**" + p.Prompt + "**",
		Color: ColorInfo,
	}
}

func presentAudio(ex Exercise, audioOK bool) Message {
	p := ex.Payload.(AudioPayload)
	msg := Message{
		Title:  kindSpecs[ex.Kind].title,
		Body:   kindSpecs[ex.Kind].describe,
		Color:  ColorInfo,
		Fields: []Field{{Name: "Korean (spoiler)", Value: p.Korean, Spoiler: true}},
	}
	if !audioOK {
		msg.Body = "(Audio unavailable)"
		msg.Fields = append(msg.Fields, Field{Name: "English", Value: p.English})
	}
	return msg
}

func presentDictation(ex Exercise, audioOK bool) Message {
	p := ex.Payload.(DictationPayload)
	msg := Message{
		Title:  kindSpecs[ex.Kind].title,
		Body:   kindSpecs[ex.Kind].describe,
		Color:  ColorInfo,
		Fields: []Field{{Name: "English", Value: p.English}},
	}
	if !audioOK {
		msg.Body = "(Audio unavailable)"
	}
	return msg
}

func presentCloze(ex Exercise, _ bool) Message {
	p := ex.Payload.(ClozePayload)
	msg := Message{
		Title:  kindSpecs[ex.Kind].title,
		Body:   kindSpecs[ex.Kind].describe,
		Color:  ColorInfo,
		Fields: []Field{{Name: "Paragraph", Value: p.Paragraph}},
	}
	hints := make([]string, 0, len(p.Blanks))
	for _, b := range p.Blanks {
		hints = append(hints, fmt.Sprintf("%d=%s", b.Position, b.English))
	}
	if len(hints) > 0 {
		msg.Fields = append(msg.Fields, Field{Name: "Hints", Value: strings.Join(hints, ", ")})
	}
	return msg
}

func presentReading(ex Exercise, _ bool) Message {
	p := ex.Payload.(ReadingPayload)
	msg := Message{
		Title: kindSpecs[ex.Kind].title,
		Body:  kindSpecs[ex.Kind].describe,
		Color: ColorInfo,
		Fields: []Field{
			{Name: "Story", Value: p.StoryKorean},
			{Name: "English (spoiler)", Value: p.StoryEnglish, Spoiler: true},
		},
	}
	for i, q := range p.Questions {
		msg.Fields = append(msg.Fields, Field{Name: fmt.Sprintf("Question %d", i+1), Value: q})
	}
	return msg
}

func presentWriting(ex Exercise, _ bool) Message {
	p := ex.Payload.(WritingPayload)
	msg := Message{
		Title: kindSpecs[ex.Kind].title,
		Body:  p.Prompt,
		Color: ColorInfo,
	}
	if len(p.TargetWords) > 0 {
		msg.Fields = append(msg.Fields, Field{Name: "Target Words", Value: strings.Join(p.TargetWords, ", ")})
	}
	if p.EnglishHint != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Hint", Value: p.EnglishHint})
	}
	return msg
}

func presentBuild(ex Exercise, _ bool) Message {
	p := ex.Payload.(BuildPayload)
	msg := Message{
		Title: kindSpecs[ex.Kind].title,
		Body:  kindSpecs[ex.Kind].describe,
		Color: ColorInfo,
	}
	if words := givenWordList(p.GivenWords); words != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Given Words", Value: words})
	}
	if p.DifficultyNote != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Difficulty Note", Value: p.DifficultyNote})
	}
	return msg
}

// ── Skip reveals ──────────────────────────────────────────────────────────────

const skipTitle = "⏭️ Skipped"

func revealTranslation(ex Exercise) Message {
	p := ex.Payload.(TranslationPayload)
	msg := Message{
		Title: skipTitle,
		Color: ColorNeutral,
		Fields: []Field{
			{Name: "Question", Value: p.Prompt},
			{Name: "Answer", Value: p.Answer},
		},
	}
	if len(p.WordsUsed) > 0 {
		msg.Fields = append(msg.Fields, Field{Name: "Words Used", Value: strings.Join(p.WordsUsed, ", ")})
	}
	return msg
}

func revealAudio(ex Exercise) Message {
	p := ex.Payload.(AudioPayload)
	return Message{
		Title: skipTitle,
		Color: ColorNeutral,
		Fields: []Field{
			{Name: "Korean", Value: p.Korean},
			{Name: "English", Value: p.English},
		},
	}
}

func revealDictation(ex Exercise) Message {
	p := ex.Payload.(DictationPayload)
	return Message{
		Title: skipTitle,
		Color: ColorNeutral,
		Fields: []Field{
			{Name: "Korean", Value: p.Korean},
			{Name: "English", Value: p.English},
		},
	}
}

func revealCloze(ex Exercise) Message {
	p := ex.Payload.(ClozePayload)
	return Message{
		Title:  skipTitle,
		Color:  ColorNeutral,
		Fields: []Field{{Name: "Full Paragraph", Value: p.FullParagraph}},
	}
}

func revealReading(ex Exercise) Message {
	p := ex.Payload.(ReadingPayload)
	msg := Message{Title: skipTitle, Color: ColorNeutral}
	for i, q := range p.Questions {
		answer := "?"
		if i < len(p.Answers) {
			answer = p.Answers[i]
		}
		msg.Fields = append(msg.Fields, Field{
			Name:  fmt.Sprintf("Q%d: %s", i+1, q),
			Value: answer,
		})
	}
	return msg
}

func revealWriting(ex Exercise) Message {
	p := ex.Payload.(WritingPayload)
	msg := Message{
		Title:  skipTitle,
		Color:  ColorNeutral,
		Fields: []Field{{Name: "Prompt", Value: p.Prompt}},
	}
	if len(p.TargetWords) > 0 {
		msg.Fields = append(msg.Fields, Field{Name: "Target Words", Value: strings.Join(p.TargetWords, ", ")})
	}
	return msg
}

func revealBuild(ex Exercise) Message {
	p := ex.Payload.(BuildPayload)
	msg := Message{
		Title:  skipTitle,
		Color:  ColorNeutral,
		Fields: []Field{{Name: "Example Answer", Value: p.ExampleAnswer}},
	}
	if words := givenWordList(p.GivenWords); words != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Given Words", Value: words})
	}
	return msg
}

// ── Grade panels ──────────────────────────────────────────────────────────────

// scoreTitle builds the "✅ Score: N/100" header used by the
// single-answer kinds.
func scoreTitle(correct bool, score int) string {
	mark := "❌"
	if correct {
		mark = "✅"
	}
	return fmt.Sprintf("%s Score: %d/100", mark, score)
}

func gradeSentencePanel(ex Exercise, res GradeResult, student string) Message {
	g := res.(SentenceGrade)
	msg := Message{
		Title: scoreTitle(g.Correct, g.Points),
		Color: ScoreColor(g.Points),
		Fields: []Field{
			{Name: "Your Answer", Value: student},
		},
	}

	switch p := ex.Payload.(type) {
	case TranslationPayload:
		msg.Fields = append(msg.Fields, Field{Name: "Reference Answer", Value: p.Answer})
	case BuildPayload:
		msg.Fields[0].Name = "Your Sentence"
		msg.Fields = append(msg.Fields,
			Field{Name: "All Words Used", Value: checkmark(g.AllWordsUsed), Inline: true},
			Field{Name: "Grammar Correct", Value: checkmark(g.GrammarCorrect), Inline: true},
		)
	}

	if g.Feedback != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Feedback", Value: g.Feedback})
	}
	if g.Corrected != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Corrected", Value: g.Corrected})
	}
	if p, ok := ex.Payload.(BuildPayload); ok {
		example := g.ExampleAnswer
		if example == "" {
			example = p.ExampleAnswer
		}
		msg.Fields = append(msg.Fields, Field{Name: "Example Answer", Value: example})
	}
	return msg
}

func gradeAudioPanel(ex Exercise, res GradeResult, student string) Message {
	g := res.(SentenceGrade)
	p := ex.Payload.(AudioPayload)
	msg := Message{
		Title: scoreTitle(g.Correct, g.Points),
		Color: ScoreColor(g.Points),
		Fields: []Field{
			{Name: "Your Answer", Value: student},
			{Name: "Korean", Value: p.Korean},
			{Name: "English", Value: p.English},
		},
	}
	if g.Feedback != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Feedback", Value: g.Feedback})
	}
	return msg
}

func gradeDictationPanel(ex Exercise, res GradeResult, student string) Message {
	g := res.(SentenceGrade)
	p := ex.Payload.(DictationPayload)
	msg := Message{
		Title: scoreTitle(g.Correct, g.Points),
		Color: ScoreColor(g.Points),
		Fields: []Field{
			{Name: "Your Answer", Value: student},
			{Name: "Correct Answer", Value: p.Korean},
		},
	}
	if g.Feedback != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Feedback", Value: g.Feedback})
	}
	if g.Diff != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Diff", Value: g.Diff})
	}
	return msg
}

func gradeClozePanel(_ Exercise, res GradeResult, _ string) Message {
	g := res.(ClozeGrade)
	msg := Message{
		Title: fmt.Sprintf("Score: %d/100", g.Points),
		Color: ScoreColor(g.Points),
	}
	for _, r := range g.Results {
		msg.Fields = append(msg.Fields, Field{
			Name:  fmt.Sprintf("%s Blank %d", checkmark(r.Correct), r.Position),
			Value: fmt.Sprintf("Student: %s\nCorrect: %s", r.Student, r.Answer),
		})
	}
	if g.Feedback != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Feedback", Value: g.Feedback})
	}
	return msg
}

func gradeReadingPanel(_ Exercise, res GradeResult, _ string) Message {
	g := res.(ReadingGrade)
	msg := Message{
		Title: fmt.Sprintf("Score: %d/100", g.Points),
		Color: ScoreColor(g.Points),
	}
	for _, r := range g.Results {
		msg.Fields = append(msg.Fields, Field{
			Name:  fmt.Sprintf("%s %s", checkmark(r.Correct), r.Question),
			Value: r.Feedback,
		})
	}
	if g.OverallFeedback != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Overall Feedback", Value: g.OverallFeedback})
	}
	return msg
}

func gradeWritingPanel(_ Exercise, res GradeResult, _ string) Message {
	g := res.(WritingGrade)
	msg := Message{
		Title: fmt.Sprintf("Score: %d/100", g.Points),
		Color: ScoreColor(g.Points),
	}
	if len(g.TargetUsed) > 0 {
		msg.Fields = append(msg.Fields, Field{Name: "✅ Words Used", Value: strings.Join(g.TargetUsed, ", ")})
	}
	if len(g.TargetMissed) > 0 {
		msg.Fields = append(msg.Fields, Field{Name: "❌ Words Missed", Value: strings.Join(g.TargetMissed, ", ")})
	}
	for i, c := range g.Corrections {
		if i >= 5 {
			break
		}
		value := fmt.Sprintf("**%s** → **%s**", c.Original, c.Corrected)
		if c.Explanation != "" {
			value += "\n" + c.Explanation
		}
		msg.Fields = append(msg.Fields, Field{Name: "Correction", Value: value})
	}
	if g.OverallFeedback != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Feedback", Value: g.OverallFeedback})
	}
	if g.ImprovedVersion != "" {
		msg.Fields = append(msg.Fields, Field{Name: "Improved Version", Value: g.ImprovedVersion})
	}
	return msg
}

// gradeBuildPanel reuses the sentence panel; kept as its own entry so the
// table reads one row per kind.
func gradeBuildPanel(ex Exercise, res GradeResult, student string) Message {
	return gradeSentencePanel(ex, res, student)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func checkmark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func givenWordList(words []GivenWord) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %s (%s)", w.Korean, w.English)
	}
	return b.String()
}
