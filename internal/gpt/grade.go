package gpt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spencerchil/spencerbot/internal/drill"
)

// Grading system prompts, one per grading contract.
const (
	gradeTranslationSystem = `You are a Korean language teacher grading translations. Return JSON with: correct (bool), score (0-100), feedback (string), corrected (null if correct, otherwise corrected version). Return ONLY JSON, no markdown.`

	gradeAudioSystem = `Grade an audio listening response. Student may answer with English meaning or romanization. Return JSON with: correct (bool), score (0-100), feedback, corrected (null if correct). Return ONLY JSON, no markdown.`

	gradeDictationSystem = `Grade a Korean dictation. Strip punctuation (.,!?。) before comparing. Provide character-level diff using **correct** and ~~wrong~~ markdown. Return JSON with: correct (bool), score (0-100), feedback, diff, corrected. Return ONLY JSON, no markdown in JSON values.`

	gradeClozeSystem = `Grade cloze (fill-in-the-blank) responses. Parse answers in order. Return JSON with: results (list of {position, correct (bool), student, answer}), score (0-100), feedback. Return ONLY JSON, no markdown.`

	gradeReadingSystem = `Grade reading comprehension. Parse student answers (numbered or prose). Return JSON with: results (list of {question, correct (bool), feedback}), score (0-100), overall_feedback. Return ONLY JSON, no markdown.`

	gradeWritingSystem = `Grade Korean writing. Return JSON with: score (0-100), target_words_used (list), target_words_missed (list), corrections (list of max 5: {original, corrected, explanation}), overall_feedback, improved_version. Return ONLY JSON, no markdown in values.`

	gradeBuildSystem = `Grade a Korean sentence built from given words. Return JSON with: correct (bool), score (0-100), all_words_used (bool), grammar_correct (bool), feedback, corrected (null if correct), example_answer (always include). Return ONLY JSON, no markdown in values.`
)

// Grade implements drill.Grader. Dispatch follows the payload type, which
// the engine guarantees matches the channel kind.
func (c *Client) Grade(ctx context.Context, ex drill.Exercise, studentText string) (drill.GradeResult, error) {
	switch p := ex.Payload.(type) {
	case drill.TranslationPayload:
		raw, err := c.completeJSON(ctx, gradeTranslationSystem,
			fmt.Sprintf("Grade this translation.\nPrompt: %s\nCorrect answer: %s\nStudent answer: %s",
				p.Prompt, p.Answer, studentText))
		if err != nil {
			return nil, err
		}
		return parseSentenceGrade(raw)
	case drill.AudioPayload:
		raw, err := c.completeJSON(ctx, gradeAudioSystem,
			fmt.Sprintf("Korean: %s\nEnglish: %s\nStudent answered: %s",
				p.Korean, p.English, studentText))
		if err != nil {
			return nil, err
		}
		return parseSentenceGrade(raw)
	case drill.DictationPayload:
		raw, err := c.completeJSON(ctx, gradeDictationSystem,
			fmt.Sprintf("Correct: %s\nStudent: %s", p.Korean, studentText))
		if err != nil {
			return nil, err
		}
		return parseSentenceGrade(raw)
	case drill.ClozePayload:
		blanks, err := marshalBlanks(p.Blanks)
		if err != nil {
			return nil, err
		}
		raw, err := c.completeJSON(ctx, gradeClozeSystem,
			fmt.Sprintf("Blanks: %s\nStudent answers: %s", blanks, studentText))
		if err != nil {
			return nil, err
		}
		return parseClozeGrade(raw)
	case drill.ReadingPayload:
		questions, _ := json.Marshal(p.Questions)
		answers, _ := json.Marshal(p.Answers)
		raw, err := c.completeJSON(ctx, gradeReadingSystem,
			fmt.Sprintf("Questions: %s\nCorrect answers: %s\nStudent response: %s",
				questions, answers, studentText))
		if err != nil {
			return nil, err
		}
		return parseReadingGrade(raw)
	case drill.WritingPayload:
		raw, err := c.completeJSON(ctx, gradeWritingSystem,
			fmt.Sprintf("Prompt: %s\nTarget words: %s\nStudent writing: %s",
				p.Prompt, strings.Join(p.TargetWords, ", "), studentText))
		if err != nil {
			return nil, err
		}
		return parseWritingGrade(raw)
	case drill.BuildPayload:
		given, err := marshalGivenWords(p.GivenWords)
		if err != nil {
			return nil, err
		}
		raw, err := c.completeJSON(ctx, gradeBuildSystem,
			fmt.Sprintf("Given words: %s\nExample answer: %s\nStudent sentence: %s",
				given, p.ExampleAnswer, studentText))
		if err != nil {
			return nil, err
		}
		return parseSentenceGrade(raw)
	}
	return nil, fmt.Errorf("gpt: unsupported exercise payload %T", ex.Payload)
}

func marshalBlanks(blanks []drill.ClozeBlank) ([]byte, error) {
	type wire struct {
		Position int    `json:"position"`
		Korean   string `json:"korean"`
		English  string `json:"english"`
	}
	out := make([]wire, 0, len(blanks))
	for _, b := range blanks {
		out = append(out, wire{Position: b.Position, Korean: b.Korean, English: b.English})
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("gpt: marshal blanks: %w", err)
	}
	return raw, nil
}

func marshalGivenWords(words []drill.GivenWord) ([]byte, error) {
	type wire struct {
		Korean  string `json:"korean"`
		English string `json:"english"`
	}
	out := make([]wire, 0, len(words))
	for _, w := range words {
		out = append(out, wire{Korean: w.Korean, English: w.English})
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("gpt: marshal given words: %w", err)
	}
	return raw, nil
}

// --- Wire shapes ---

func parseSentenceGrade(raw []byte) (drill.SentenceGrade, error) {
	var w struct {
		Correct        bool   `json:"correct"`
		Score          int    `json:"score"`
		Feedback       string `json:"feedback"`
		Corrected      string `json:"corrected"`
		Diff           string `json:"diff"`
		AllWordsUsed   bool   `json:"all_words_used"`
		GrammarCorrect bool   `json:"grammar_correct"`
		ExampleAnswer  string `json:"example_answer"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.SentenceGrade{}, fmt.Errorf("gpt: parse grade: %w", err)
	}
	return drill.SentenceGrade{
		Correct:        w.Correct,
		Points:         clampScore(w.Score),
		Feedback:       w.Feedback,
		Corrected:      w.Corrected,
		Diff:           w.Diff,
		AllWordsUsed:   w.AllWordsUsed,
		GrammarCorrect: w.GrammarCorrect,
		ExampleAnswer:  w.ExampleAnswer,
	}, nil
}

func parseClozeGrade(raw []byte) (drill.ClozeGrade, error) {
	var w struct {
		Results []struct {
			Position int    `json:"position"`
			Correct  bool   `json:"correct"`
			Student  string `json:"student"`
			Answer   string `json:"answer"`
		} `json:"results"`
		Score    int    `json:"score"`
		Feedback string `json:"feedback"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.ClozeGrade{}, fmt.Errorf("gpt: parse cloze grade: %w", err)
	}
	g := drill.ClozeGrade{Points: clampScore(w.Score), Feedback: w.Feedback}
	for _, r := range w.Results {
		g.Results = append(g.Results, drill.BlankResult{
			Position: r.Position,
			Correct:  r.Correct,
			Student:  r.Student,
			Answer:   r.Answer,
		})
	}
	return g, nil
}

func parseReadingGrade(raw []byte) (drill.ReadingGrade, error) {
	var w struct {
		Results []struct {
			Question string `json:"question"`
			Correct  bool   `json:"correct"`
			Feedback string `json:"feedback"`
		} `json:"results"`
		Score           int    `json:"score"`
		OverallFeedback string `json:"overall_feedback"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.ReadingGrade{}, fmt.Errorf("gpt: parse reading grade: %w", err)
	}
	g := drill.ReadingGrade{Points: clampScore(w.Score), OverallFeedback: w.OverallFeedback}
	for _, r := range w.Results {
		g.Results = append(g.Results, drill.QuestionResult{
			Question: r.Question,
			Correct:  r.Correct,
			Feedback: r.Feedback,
		})
	}
	return g, nil
}

func parseWritingGrade(raw []byte) (drill.WritingGrade, error) {
	var w struct {
		Score        int      `json:"score"`
		TargetUsed   []string `json:"target_words_used"`
		TargetMissed []string `json:"target_words_missed"`
		Corrections  []struct {
			Original    string `json:"original"`
			Corrected   string `json:"corrected"`
			Explanation string `json:"explanation"`
		} `json:"corrections"`
		OverallFeedback string `json:"overall_feedback"`
		ImprovedVersion string `json:"improved_version"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return drill.WritingGrade{}, fmt.Errorf("gpt: parse writing grade: %w", err)
	}
	g := drill.WritingGrade{
		Points:          clampScore(w.Score),
		TargetUsed:      w.TargetUsed,
		TargetMissed:    w.TargetMissed,
		OverallFeedback: w.OverallFeedback,
		ImprovedVersion: w.ImprovedVersion,
	}
	for i, c := range w.Corrections {
		if i >= 5 {
			break
		}
		g.Corrections = append(g.Corrections, drill.Correction{
			Original:    c.Original,
			Corrected:   c.Corrected,
			Explanation: c.Explanation,
		})
	}
	return g, nil
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
