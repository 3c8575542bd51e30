package app

import (
	"errors"
	"testing"
)

func TestMode_StringAndParseRoundTrip(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Errorf("ParseMode(%q) failed: %v", m, err)
			continue
		}
		if got != m {
			t.Errorf("ParseMode(%q) = %v, want %v", m, got, m)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeNone, false},
		{"none", ModeNone, false},
		{"  View-Post ", ModeViewPost, false},
		{"background-looper", ModeBackgroundLooper, false},
		{"teleport", ModeNone, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnknownMode) {
			t.Errorf("ParseMode(%q) error should wrap ErrUnknownMode, got %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseModes(t *testing.T) {
	modes, err := ParseModes([]string{"view-post", "handler-send-message"})
	if err != nil {
		t.Fatalf("ParseModes failed: %v", err)
	}
	if len(modes) != 2 || modes[0] != ModeViewPost || modes[1] != ModeHandlerSendMessage {
		t.Errorf("unexpected modes %v", modes)
	}

	if _, err := ParseModes([]string{"none"}); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected none to be rejected, got %v", err)
	}
}

func TestMode_Keys(t *testing.T) {
	for i, m := range Modes() {
		want := rune('1' + i)
		if m.Key() != want {
			t.Errorf("%v.Key() = %q, want %q", m, m.Key(), want)
		}
		got, ok := ModeForKey(want)
		if !ok || got != m {
			t.Errorf("ModeForKey(%q) = %v, %v", want, got, ok)
		}
	}

	if _, ok := ModeForKey('0'); ok {
		t.Error("'0' should not select a mode")
	}
	if _, ok := ModeForKey('7'); ok {
		t.Error("'7' should not select a mode")
	}
	if ModeNone.Key() != 0 {
		t.Error("ModeNone should have no key")
	}
	if Mode(99).String() != "unknown" {
		t.Error("expected unknown name for invalid mode")
	}
}
