package backend

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// NullBackend is an in-memory backend for tests and headless runs.
//
// When created with a writer, every line that changed since the previous
// Show is written to it, which turns the screen into a plain text log.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	cells         [][]rune
	shown         []string
	out           io.Writer
	shows         int

	events    chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
		closed: make(chan struct{}),
	}
}

// NewNullBackendWithWriter creates a null backend that reports changed
// lines to w on every Show.
func NewNullBackendWithWriter(width, height int, w io.Writer) *NullBackend {
	b := NewNullBackend(width, height)
	b.out = w
	return b
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reset()
	return nil
}

func (b *NullBackend) reset() {
	b.cells = make([][]rune, b.height)
	for i := range b.cells {
		b.cells[i] = []rune(strings.Repeat(" ", b.width))
	}
	b.shown = make([]string, b.height)
}

// Shutdown unblocks PollEvent. It is safe to call more than once.
func (b *NullBackend) Shutdown() {
	b.closeOnce.Do(func() { close(b.closed) })
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.width, b.height
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = ' '
		}
	}
}

func (b *NullBackend) DrawText(x, y int, text string, _ Style) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= len(b.cells) {
		return
	}
	row := b.cells[y]
	for _, g := range layout(text) {
		if x+g.width > len(row) {
			return
		}
		if x >= 0 {
			row[x] = g.runes[0]
			for i := 1; i < g.width; i++ {
				row[x+i] = ' '
			}
		}
		x += g.width
	}
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shows++
	for y := range b.cells {
		line := strings.TrimRight(string(b.cells[y]), " ")
		if line == b.shown[y] {
			continue
		}
		b.shown[y] = line
		if b.out != nil && line != "" {
			fmt.Fprintln(b.out, line)
		}
	}
}

func (b *NullBackend) PollEvent() Event {
	select {
	case ev := <-b.events:
		return ev
	case <-b.closed:
		return Event{Type: EventClosed}
	}
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

// Line returns row y as last drawn, without trailing spaces.
func (b *NullBackend) Line(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= len(b.cells) {
		return ""
	}
	return strings.TrimRight(string(b.cells[y]), " ")
}

// Lines returns every row as last drawn.
func (b *NullBackend) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.cells))
	for y := range b.cells {
		out[y] = strings.TrimRight(string(b.cells[y]), " ")
	}
	return out
}

// ShowCount returns how many times Show was called.
func (b *NullBackend) ShowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.shows
}

// Resize simulates a terminal resize for testing.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width = width
	b.height = height
	b.reset()
	b.mu.Unlock()

	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
