// Package narrator turns AI responses into spoken audio. The actual speech
// synthesis happens wherever a narration channel is attached; when none is
// available the capability degrades to a no-op.
package narrator

// Narrator speaks response text aloud. Implementations guarantee at most one
// audible utterance: Speak cancels whatever was playing first.
type Narrator interface {
	Speak(text string)
	Cancel()
}

// Noop is the narrator used when no narration channel exists.
type Noop struct{}

func (Noop) Speak(string) {}
func (Noop) Cancel()      {}
