// Package backend provides the display abstraction the demo draws on.
package backend

import "github.com/rivo/uniseg"

// EventType identifies the type of backend event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventClosed is returned by PollEvent once the backend has shut down.
	EventClosed
)

// Key represents a keyboard key.
type Key int

// Key constants for special keys.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyUp
	KeyDown
	KeyCtrlC
)

// Event represents a backend event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune

	// Resize event fields
	Width, Height int
}

// KeyEvent returns a key event for a special key.
func KeyEvent(k Key) Event {
	return Event{Type: EventKey, Key: k}
}

// RuneEvent returns a key event for a printable character.
func RuneEvent(r rune) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r}
}

// Style is a set of text attributes.
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleDim
	StyleReverse
	StyleUnderline

	StyleDefault Style = 0
)

// Has returns true if s contains all attributes of other.
func (s Style) Has(other Style) bool {
	return s&other == other
}

// Backend defines the interface for display backends.
type Backend interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	// A PollEvent blocked at the time returns an EventClosed event.
	Shutdown()

	// Size returns the current dimensions in cells.
	Size() (width, height int)

	// Clear clears the entire screen.
	Clear()

	// DrawText draws text starting at (x, y). Text past the right edge
	// is clipped. Positions outside the screen are silently ignored.
	DrawText(x, y int, text string, style Style)

	// Show synchronizes the internal buffer with the actual display.
	Show()

	// PollEvent waits for and returns the next event.
	// This is a blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event)
}

// glyph is one grapheme cluster placed on screen.
type glyph struct {
	runes []rune
	width int
}

// layout splits text into grapheme clusters with their display widths.
func layout(text string) []glyph {
	var out []glyph
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w <= 0 {
			continue
		}
		out = append(out, glyph{runes: g.Runes(), width: w})
	}
	return out
}
