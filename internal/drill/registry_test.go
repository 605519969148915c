package drill

import (
	"strings"
	"testing"
)

func TestRegistryCoversAllStatefulKinds(t *testing.T) {
	t.Parallel()
	kinds := []Kind{
		KindTranslateEnKr, KindTranslateKrEn, KindAudio, KindDictation,
		KindCloze, KindReading, KindWrite, KindBuild,
	}
	for _, k := range kinds {
		spec, ok := specFor(k)
		if !ok {
			t.Errorf("specFor(%q) missing", k)
			continue
		}
		if spec.present == nil || spec.reveal == nil || spec.presentGrade == nil {
			t.Errorf("specFor(%q) has nil facets", k)
		}
	}
	if _, ok := specFor(KindVocab); ok {
		t.Error("specFor(vocab) present, want absent: vocab bypasses the session engine")
	}
}

func TestAudioKindsDeclareTTSText(t *testing.T) {
	t.Parallel()
	if spec, _ := specFor(KindAudio); spec.ttsText == nil {
		t.Error("audio kind has no ttsText")
	}
	if spec, _ := specFor(KindDictation); spec.ttsText == nil {
		t.Error("dictation kind has no ttsText")
	}
	if spec, _ := specFor(KindCloze); spec.ttsText != nil {
		t.Error("cloze kind declares ttsText, want none")
	}
}

func TestScoreColorTiers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		score int
		want  Color
	}{
		{100, ColorSuccess},
		{80, ColorSuccess},
		{79, ColorWarning},
		{50, ColorWarning},
		{49, ColorError},
		{0, ColorError},
	}
	for _, tt := range tests {
		if got := ScoreColor(tt.score); got != tt.want {
			t.Errorf("ScoreColor(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestPresentAudioDegradesWithoutAudio(t *testing.T) {
	t.Parallel()
	ex := Exercise{
		Kind:    KindAudio,
		Payload: AudioPayload{Korean: "사과를 먹어요", English: "I eat an apple", TTSText: "사과를 먹어요"},
	}

	withAudio := presentAudio(ex, true)
	if len(withAudio.Fields) != 1 || !withAudio.Fields[0].Spoiler {
		t.Fatalf("with audio: fields = %+v, want one spoiler field", withAudio.Fields)
	}

	degraded := presentAudio(ex, false)
	if degraded.Body != "(Audio unavailable)" {
		t.Errorf("degraded body = %q, want %q", degraded.Body, "(Audio unavailable)")
	}
	if len(degraded.Fields) != 2 {
		t.Fatalf("degraded fields = %d, want 2 (Korean spoiler + English)", len(degraded.Fields))
	}
	if degraded.Fields[1].Value != "I eat an apple" {
		t.Errorf("degraded English field = %q, want the gloss", degraded.Fields[1].Value)
	}
}

func TestRevealReadingPairsQuestionsWithAnswers(t *testing.T) {
	t.Parallel()
	ex := Exercise{
		Kind: KindReading,
		Payload: ReadingPayload{
			StoryKorean: "이야기",
			Questions:   []string{"Who?", "Where?"},
			Answers:     []string{"Mina"},
		},
	}
	msg := revealReading(ex)
	if len(msg.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(msg.Fields))
	}
	if msg.Fields[0].Value != "Mina" {
		t.Errorf("first answer = %q, want %q", msg.Fields[0].Value, "Mina")
	}
	if msg.Fields[1].Value != "?" {
		t.Errorf("missing answer = %q, want placeholder %q", msg.Fields[1].Value, "?")
	}
}

func TestGradeSentencePanelBuildVariant(t *testing.T) {
	t.Parallel()
	ex := Exercise{
		Kind: KindBuild,
		Payload: BuildPayload{
			GivenWords:    []GivenWord{{Korean: "사과", English: "apple"}},
			ExampleAnswer: "사과를 먹어요.",
		},
	}
	res := SentenceGrade{Correct: true, Points: 85, AllWordsUsed: true, GrammarCorrect: false}

	msg := gradeSentencePanel(ex, res, "사과가 먹어요.")
	if msg.Color != ColorSuccess {
		t.Errorf("color = %v, want %v", msg.Color, ColorSuccess)
	}
	if msg.Fields[0].Name != "Your Sentence" {
		t.Errorf("first field = %q, want %q", msg.Fields[0].Name, "Your Sentence")
	}
	var sawExample bool
	for _, f := range msg.Fields {
		if f.Name == "Example Answer" && f.Value == "사과를 먹어요." {
			sawExample = true
		}
	}
	if !sawExample {
		t.Error("build grade panel missing example answer fallback from the payload")
	}
	if !strings.HasPrefix(msg.Title, "✅") {
		t.Errorf("title = %q, want ✅ prefix for a correct answer", msg.Title)
	}
}

func TestGradeClozePanelPerBlank(t *testing.T) {
	t.Parallel()
	res := ClozeGrade{
		Points: 50,
		Results: []BlankResult{
			{Position: 1, Correct: true, Student: "사과", Answer: "사과"},
			{Position: 2, Correct: false, Student: "물", Answer: "책"},
		},
	}
	msg := gradeClozePanel(Exercise{Kind: KindCloze}, res, "ignored")
	if len(msg.Fields) != 2 {
		t.Fatalf("fields = %d, want one per blank", len(msg.Fields))
	}
	if !strings.HasPrefix(msg.Fields[0].Name, "✅") || !strings.HasPrefix(msg.Fields[1].Name, "❌") {
		t.Errorf("blank marks = %q, %q", msg.Fields[0].Name, msg.Fields[1].Name)
	}
}
