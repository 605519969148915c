package drill

import "context"

// Color is a presentation hint for a message panel. The chat layer maps it
// to whatever accent the platform supports.
type Color int

const (
	ColorNeutral Color = iota
	ColorInfo
	ColorSuccess
	ColorWarning
	ColorError
)

// ScoreColor maps a 0-100 grade score to its presentation tier.
func ScoreColor(score int) Color {
	switch {
	case score >= 80:
		return ColorSuccess
	case score >= 50:
		return ColorWarning
	default:
		return ColorError
	}
}

// Field is one labeled value in a message panel. Spoiler fields must be
// visually suppressed by the presentation layer until revealed.
type Field struct {
	Name    string
	Value   string
	Inline  bool
	Spoiler bool
}

// Message is one structured response panel emitted by the engine: a title,
// optional body and fields, and an optional audio attachment. The engine
// never talks to the chat platform directly; it only emits Messages.
type Message struct {
	Title  string
	Body   string
	Color  Color
	Fields []Field
	Footer string

	// Audio, when non-nil, is an MP3 attachment named AudioName.
	Audio     []byte
	AudioName string
}

// Sink receives messages for a single channel, in order. A turn may emit
// several messages (e.g. a grade panel followed by the next exercise).
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to the [Sink] interface.
type SinkFunc func(ctx context.Context, msg Message) error

// Send implements [Sink].
func (f SinkFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
