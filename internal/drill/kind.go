// Package drill implements the per-user exercise session engine behind the
// Korean learning channels: deck resolution, word pool building, session
// state, and the turn-by-turn generate/grade loop shared by every exercise
// kind.
package drill

// Kind identifies one exercise type. Each learning channel is bound to
// exactly one Kind; the engine's control flow is identical across kinds and
// only the registry facets (generation, grading, presentation) differ.
type Kind string

const (
	// KindVocab is the stateless vocabulary-list channel. It bypasses
	// sessions entirely: raw input words in, a formatted list out.
	KindVocab Kind = "vocab"

	KindTranslateEnKr Kind = "translate_en_kr"
	KindTranslateKrEn Kind = "translate_kr_en"
	KindAudio         Kind = "audio"
	KindDictation     Kind = "dictation"
	KindCloze         Kind = "cloze"
	KindReading       Kind = "reading"
	KindWrite         Kind = "write"
	KindBuild         Kind = "build"
)

// IsValid reports whether k is a recognised exercise kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindVocab, KindTranslateEnKr, KindTranslateKrEn, KindAudio,
		KindDictation, KindCloze, KindReading, KindWrite, KindBuild:
		return true
	}
	return false
}

// Stateless reports whether k runs outside the session machinery.
func (k Kind) Stateless() bool {
	return k == KindVocab
}
