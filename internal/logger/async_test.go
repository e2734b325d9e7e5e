package logger

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// recordingHandler collects slog.Records for test assertions.
type recordingHandler struct {
	mu      *sync.Mutex
	records *[]slog.Record
	attrs   []slog.Attr
	delay   time.Duration // optional per-record processing delay
}

func newRecordingHandler(delay time.Duration) *recordingHandler {
	return &recordingHandler{mu: &sync.Mutex{}, records: &[]slog.Record{}, delay: delay}
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	rec.AddAttrs(h.attrs...)
	h.mu.Lock()
	*h.records = append(*h.records, rec)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cp
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(*h.records)
}

func (h *recordingHandler) first() slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return (*h.records)[0]
}

func newRecord(msg string) slog.Record {
	return slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0)
}

func TestAsyncHandler_BasicWrite(t *testing.T) {
	inner := newRecordingHandler(0)
	ah := NewAsyncHandler(inner, 100, 1)

	if err := ah.Handle(context.Background(), newRecord("hello")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	ah.Close()

	if got := inner.count(); got != 1 {
		t.Fatalf("expected 1 record, got %d", got)
	}
}

func TestAsyncHandler_ConcurrentWrites(t *testing.T) {
	const goroutines = 50
	const perGoroutine = 100
	total := goroutines * perGoroutine

	inner := newRecordingHandler(0)
	ah := NewAsyncHandler(inner, total, 4)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				_ = ah.Handle(context.Background(), newRecord("concurrent"))
			}
		}()
	}
	wg.Wait()
	ah.Close()

	if got := inner.count(); got != total {
		t.Fatalf("expected %d records, got %d", total, got)
	}
}

func TestAsyncHandler_ChannelFullDrops(t *testing.T) {
	inner := newRecordingHandler(10 * time.Millisecond)
	ah := NewAsyncHandler(inner, 1, 1)

	for range 50 {
		_ = ah.Handle(context.Background(), newRecord("flood"))
	}
	ah.Close()

	if ah.DroppedCount() == 0 {
		t.Fatal("expected some records to be dropped, got 0")
	}
}

func TestAsyncHandler_HandleAfterCloseDrops(t *testing.T) {
	inner := newRecordingHandler(0)
	ah := NewAsyncHandler(inner, 10, 1)
	ah.Close()
	ah.Close()

	if err := ah.Handle(context.Background(), newRecord("late")); err != nil {
		t.Fatalf("Handle after Close returned error: %v", err)
	}
	if ah.DroppedCount() != 1 {
		t.Fatalf("expected 1 dropped record, got %d", ah.DroppedCount())
	}
}

func TestAsyncHandler_WithAttrsKeepsAttributes(t *testing.T) {
	inner := newRecordingHandler(0)
	ah := NewAsyncHandler(inner, 10, 1)

	derived := ah.WithAttrs([]slog.Attr{slog.String("component", "ws")})
	_ = derived.Handle(context.Background(), newRecord("with attrs"))
	ah.Close()

	if inner.count() != 1 {
		t.Fatalf("expected 1 record, got %d", inner.count())
	}
	found := false
	inner.first().Attrs(func(a slog.Attr) bool {
		if a.Key == "component" && a.Value.String() == "ws" {
			found = true
		}
		return true
	})
	if !found {
		t.Fatal("derived handler lost its attributes")
	}
}
