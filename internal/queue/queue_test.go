package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

func newTestQueue() (*Queue, fakeClock) {
	fc := clockwork.NewFakeClock()
	return New(WithClock(fc)), fc
}

// drainReady pops every message that is due right now.
func drainReady(t *testing.T, q *Queue) []*Message {
	t.Helper()
	var out []*Message
	for {
		p := q.Next()
		if p.Status != StatusReady {
			return out
		}
		out = append(out, p.Message)
	}
}

func payloads(msgs []*Message) []any {
	out := make([]any, len(msgs))
	for i, m := range msgs {
		out[i] = m.Payload
	}
	return out
}

func TestQueue_NextEmpty(t *testing.T) {
	q, _ := newTestQueue()

	if p := q.Next(); p.Status != StatusEmpty {
		t.Fatalf("expected StatusEmpty, got %v", p.Status)
	}
	if q.Len() != 0 {
		t.Errorf("expected Len 0, got %d", q.Len())
	}
}

func TestQueue_OrderByDueThenSeq(t *testing.T) {
	q, fc := newTestQueue()

	enqueue := []struct {
		payload string
		delay   time.Duration
	}{
		{"a", 100 * time.Millisecond},
		{"b", 50 * time.Millisecond},
		{"c", 0},
		{"d", 50 * time.Millisecond},
		{"e", 0},
		{"f", -time.Second}, // clamped to zero
	}
	for _, e := range enqueue {
		if err := q.Enqueue(e.payload, e.delay); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", e.payload, err)
		}
	}

	fc.Advance(time.Second)
	got := payloads(drainReady(t, q))
	want := []any{"c", "e", "f", "b", "d", "a"}

	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v (full order %v)", i, want[i], got[i], got)
		}
	}
}

func TestQueue_WaitUntil(t *testing.T) {
	q, fc := newTestQueue()
	start := fc.Now()

	_ = q.Enqueue("later", 100*time.Millisecond)
	_ = q.Enqueue("sooner", 50*time.Millisecond)

	p := q.Next()
	if p.Status != StatusWait {
		t.Fatalf("expected StatusWait, got %v", p.Status)
	}
	if want := start.Add(50 * time.Millisecond); !p.WaitUntil.Equal(want) {
		t.Errorf("expected WaitUntil %v, got %v", want, p.WaitUntil)
	}

	fc.Advance(49 * time.Millisecond)
	if p := q.Next(); p.Status != StatusWait {
		t.Fatalf("message released early: %v", p.Status)
	}

	fc.Advance(time.Millisecond)
	p = q.Next()
	if p.Status != StatusReady || p.Message.Payload != "sooner" {
		t.Fatalf("expected 'sooner' to be ready, got %v %+v", p.Status, p.Message)
	}
	if q.Len() != 1 {
		t.Errorf("expected 1 pending message, got %d", q.Len())
	}
}

func TestQueue_EnqueueAtAndPostAt(t *testing.T) {
	q, fc := newTestQueue()
	at := fc.Now().Add(time.Minute)

	if err := q.EnqueueAt("data", at); err != nil {
		t.Fatalf("EnqueueAt failed: %v", err)
	}
	if err := q.PostAt(func() {}, at); err != nil {
		t.Fatalf("PostAt failed: %v", err)
	}

	fc.Advance(time.Minute)
	msgs := drainReady(t, q)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].IsCallback() || msgs[0].Payload != "data" {
		t.Errorf("expected data message first, got %+v", msgs[0])
	}
	if !msgs[1].IsCallback() || msgs[1].Payload != nil {
		t.Errorf("expected callback message second, got %+v", msgs[1])
	}
}

func TestQueue_PostNil(t *testing.T) {
	q, _ := newTestQueue()

	if err := q.Post(nil, 0); !errors.Is(err, ErrNilCallback) {
		t.Errorf("expected ErrNilCallback, got %v", err)
	}
	if err := q.PostAt(nil, time.Now()); !errors.Is(err, ErrNilCallback) {
		t.Errorf("expected ErrNilCallback, got %v", err)
	}
}

func TestQueue_MessageIdentity(t *testing.T) {
	q, _ := newTestQueue()
	_ = q.Enqueue(1, 0)
	_ = q.Enqueue(2, 0)

	msgs := drainReady(t, q)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].ID == msgs[1].ID {
		t.Error("expected distinct message IDs")
	}
	if msgs[0].Seq >= msgs[1].Seq {
		t.Errorf("expected increasing sequence numbers, got %d then %d", msgs[0].Seq, msgs[1].Seq)
	}
}

func TestQueue_QuitDiscard(t *testing.T) {
	q, _ := newTestQueue()
	_ = q.Enqueue("a", 0)
	_ = q.Enqueue("b", time.Hour)

	if n := q.Quit(false); n != 2 {
		t.Errorf("expected 2 discarded, got %d", n)
	}
	if !q.IsQuitting() {
		t.Error("expected IsQuitting after Quit")
	}
	if err := q.Enqueue("c", 0); !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
	if err := q.Post(func() {}, 0); !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected from Post, got %v", err)
	}
	if p := q.Next(); p.Status != StatusDone {
		t.Errorf("expected StatusDone, got %v", p.Status)
	}
}

func TestQueue_QuitDrain(t *testing.T) {
	q, fc := newTestQueue()
	_ = q.Enqueue("a", 0)
	_ = q.Enqueue("b", 10*time.Millisecond)

	if n := q.Quit(true); n != 0 {
		t.Errorf("expected nothing discarded on drain, got %d", n)
	}
	if err := q.Enqueue("c", 0); !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}

	if p := q.Next(); p.Status != StatusReady || p.Message.Payload != "a" {
		t.Fatalf("expected 'a' ready, got %v", p.Status)
	}
	if p := q.Next(); p.Status != StatusWait {
		t.Fatalf("expected pending 'b' to still wait, got %v", p.Status)
	}
	fc.Advance(10 * time.Millisecond)
	if p := q.Next(); p.Status != StatusReady || p.Message.Payload != "b" {
		t.Fatalf("expected 'b' ready, got %v", p.Status)
	}
	if p := q.Next(); p.Status != StatusDone {
		t.Errorf("expected StatusDone after drain, got %v", p.Status)
	}
}

func TestQueue_QuitEscalates(t *testing.T) {
	q, _ := newTestQueue()
	_ = q.Enqueue("a", time.Hour)
	_ = q.Enqueue("b", time.Hour)

	q.Quit(true)
	if n := q.Quit(false); n != 2 {
		t.Errorf("expected escalation to discard 2, got %d", n)
	}
	if p := q.Next(); p.Status != StatusDone {
		t.Errorf("expected StatusDone, got %v", p.Status)
	}
}

func TestQueue_WakeSignals(t *testing.T) {
	q, _ := newTestQueue()

	select {
	case <-q.Wake():
		t.Fatal("unexpected wake before any enqueue")
	default:
	}

	// Several enqueues coalesce into one pending signal.
	_ = q.Enqueue(1, 0)
	_ = q.Enqueue(2, 0)

	select {
	case <-q.Wake():
	default:
		t.Fatal("expected wake signal after enqueue")
	}
	select {
	case <-q.Wake():
		t.Fatal("expected signals to coalesce")
	default:
	}

	q.Quit(true)
	select {
	case <-q.Wake():
	default:
		t.Fatal("expected wake signal after quit")
	}
}

func TestQueue_ConcurrentEnqueue(t *testing.T) {
	q, _ := newTestQueue()

	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Enqueue(p*perProducer+i, 0); err != nil {
					t.Errorf("Enqueue failed: %v", err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	msgs := drainReady(t, q)
	if len(msgs) != producers*perProducer {
		t.Fatalf("expected %d messages, got %d", producers*perProducer, len(msgs))
	}

	seen := make(map[int]bool, len(msgs))
	seqs := make(map[uint64]bool, len(msgs))
	for _, m := range msgs {
		v := m.Payload.(int)
		if seen[v] {
			t.Fatalf("duplicate payload %d", v)
		}
		seen[v] = true
		if seqs[m.Seq] {
			t.Fatalf("duplicate sequence %d", m.Seq)
		}
		seqs[m.Seq] = true
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusReady, "ready"},
		{StatusWait, "wait"},
		{StatusEmpty, "empty"},
		{StatusDone, "done"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Status(%d).String() = %q, expected %q", tt.status, got, tt.expected)
		}
	}
}
