package backend

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestNullBackendInit(t *testing.T) {
	b := NewNullBackend(80, 24)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	w, h := b.Size()
	if w != 80 || h != 24 {
		t.Errorf("expected size (80, 24), got (%d, %d)", w, h)
	}
}

func TestNullBackendDrawText(t *testing.T) {
	b := NewNullBackend(10, 3)
	b.Init()

	b.DrawText(2, 1, "hello", StyleBold)
	if got := b.Line(1); got != "  hello" {
		t.Errorf("expected %q, got %q", "  hello", got)
	}

	// Clipped at the right edge.
	b.DrawText(0, 0, "0123456789abc", StyleDefault)
	if got := b.Line(0); got != "0123456789" {
		t.Errorf("expected clipped line, got %q", got)
	}

	// Out of bounds rows are ignored.
	b.DrawText(0, 5, "x", StyleDefault)
	b.DrawText(0, -1, "x", StyleDefault)
	if got := b.Line(5); got != "" {
		t.Errorf("expected empty line, got %q", got)
	}
}

func TestNullBackendClear(t *testing.T) {
	b := NewNullBackend(10, 2)
	b.Init()

	b.DrawText(0, 0, "abc", StyleDefault)
	b.Clear()

	for i, line := range b.Lines() {
		if line != "" {
			t.Errorf("line %d not cleared: %q", i, line)
		}
	}
}

func TestNullBackendShowWritesChangedLines(t *testing.T) {
	var out bytes.Buffer
	b := NewNullBackendWithWriter(20, 3, &out)
	b.Init()

	b.DrawText(0, 0, "Sleeping...", StyleDefault)
	b.DrawText(0, 1, "mode: view-post", StyleDefault)
	b.Show()

	// Unchanged lines are not repeated.
	b.DrawText(0, 0, "Woke up!   ", StyleDefault)
	b.Show()

	want := "Sleeping...\nmode: view-post\nWoke up!\n"
	if out.String() != want {
		t.Errorf("expected output %q, got %q", want, out.String())
	}
	if b.ShowCount() != 2 {
		t.Errorf("expected 2 shows, got %d", b.ShowCount())
	}
}

func TestNullBackendEvents(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()

	b.PostEvent(RuneEvent('s'))
	b.PostEvent(KeyEvent(KeyEnter))

	if ev := b.PollEvent(); ev.Type != EventKey || ev.Key != KeyRune || ev.Rune != 's' {
		t.Errorf("unexpected first event %+v", ev)
	}
	if ev := b.PollEvent(); ev.Key != KeyEnter {
		t.Errorf("unexpected second event %+v", ev)
	}
}

func TestNullBackendShutdownUnblocksPoll(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()

	got := make(chan Event, 1)
	go func() { got <- b.PollEvent() }()

	b.Shutdown()
	b.Shutdown()

	select {
	case ev := <-got:
		if ev.Type != EventClosed {
			t.Errorf("expected EventClosed, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("PollEvent did not return after Shutdown")
	}
}

func TestNullBackendResize(t *testing.T) {
	b := NewNullBackend(10, 2)
	b.Init()
	b.Resize(20, 4)

	if w, h := b.Size(); w != 20 || h != 4 {
		t.Errorf("expected (20, 4), got (%d, %d)", w, h)
	}
	ev := b.PollEvent()
	if ev.Type != EventResize || ev.Width != 20 || ev.Height != 4 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestStyleHas(t *testing.T) {
	s := StyleBold | StyleReverse
	if !s.Has(StyleBold) || !s.Has(StyleReverse) {
		t.Error("expected bold and reverse")
	}
	if s.Has(StyleDim) {
		t.Error("unexpected dim")
	}
	if !s.Has(StyleDefault) {
		t.Error("every style contains the default")
	}
}

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(sim)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sim.SetSize(40, 5)
	return term, sim
}

func simLine(sim tcell.SimulationScreen, y, width int) string {
	var sb strings.Builder
	for x := 0; x < width; x++ {
		mainc, _, _, _ := sim.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		if mainc == 0 {
			mainc = ' '
		}
		sb.WriteRune(mainc)
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestTerminalDrawText(t *testing.T) {
	term, sim := newSimTerminal(t)
	defer term.Shutdown()

	term.DrawText(1, 2, "Woke up!", StyleBold)
	term.Show()

	if got := simLine(sim, 2, 40); got != " Woke up!" {
		t.Errorf("expected %q, got %q", " Woke up!", got)
	}

	_, _, style, _ := sim.GetContent(1, 2) //nolint:staticcheck // GetContent is the correct API
	_, _, attrs := style.Decompose()
	if attrs&tcell.AttrBold == 0 {
		t.Error("expected bold attribute")
	}

	term.Clear()
	term.Show()
	if got := simLine(sim, 2, 40); got != "" {
		t.Errorf("expected cleared line, got %q", got)
	}
}

func TestTerminalEvents(t *testing.T) {
	term, _ := newSimTerminal(t)
	defer term.Shutdown()

	term.PostEvent(RuneEvent('q'))
	term.PostEvent(KeyEvent(KeyCtrlC))

	// A resize event may be delivered first after SetSize.
	var keys []Event
	for len(keys) < 2 {
		ev := term.PollEvent()
		if ev.Type == EventKey {
			keys = append(keys, ev)
		}
	}
	if keys[0].Key != KeyRune || keys[0].Rune != 'q' {
		t.Errorf("unexpected first key %+v", keys[0])
	}
	if keys[1].Key != KeyCtrlC {
		t.Errorf("unexpected second key %+v", keys[1])
	}
}

func TestTerminalPollAfterShutdown(t *testing.T) {
	term, _ := newSimTerminal(t)

	got := make(chan Event, 1)
	go func() {
		for {
			ev := term.PollEvent()
			if ev.Type == EventClosed {
				got <- ev
				return
			}
		}
	}()

	term.Shutdown()

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("PollEvent did not report EventClosed after Shutdown")
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		in   tcell.Key
		want Key
	}{
		{tcell.KeyRune, KeyRune},
		{tcell.KeyEscape, KeyEscape},
		{tcell.KeyEnter, KeyEnter},
		{tcell.KeyTab, KeyTab},
		{tcell.KeyUp, KeyUp},
		{tcell.KeyDown, KeyDown},
		{tcell.KeyCtrlC, KeyCtrlC},
		{tcell.KeyF5, KeyNone},
	}
	for _, tt := range tests {
		if got := convertKey(tt.in); got != tt.want {
			t.Errorf("convertKey(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
