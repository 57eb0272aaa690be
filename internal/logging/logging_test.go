package logging

import (
	"context"
	"testing"
)

func TestEnsureEpisodeID(t *testing.T) {
	ctx, id := EnsureEpisodeID(context.Background())
	if id == "" {
		t.Fatalf("expected a generated episode id")
	}
	if got := EpisodeIDFromContext(ctx); got != id {
		t.Errorf("context must carry the generated id, got %q", got)
	}

	// Idempotent: an existing id is kept.
	ctx2, id2 := EnsureEpisodeID(ctx)
	if id2 != id {
		t.Errorf("existing id must be preserved, got %q want %q", id2, id)
	}
	if got := EpisodeIDFromContext(ctx2); got != id {
		t.Errorf("context id changed to %q", got)
	}
}

func TestEnsureEpisodeID_NilContext(t *testing.T) {
	ctx, id := EnsureEpisodeID(nil)
	if ctx == nil || id == "" {
		t.Fatalf("nil context must still yield a context and id")
	}
}

func TestEpisodeIDFromContext_Missing(t *testing.T) {
	if got := EpisodeIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
	if got := EpisodeIDFromContext(nil); got != "" {
		t.Errorf("expected empty id for nil context, got %q", got)
	}
}

func TestWithEpisodeLogger(t *testing.T) {
	ctx, log := WithEpisodeLogger(context.Background(), Noop())
	if log == nil {
		t.Fatalf("expected a logger")
	}
	if EpisodeIDFromContext(ctx) == "" {
		t.Errorf("episode id must be attached to the context")
	}

	// A nil base falls back to the noop logger instead of panicking.
	_, log = WithEpisodeLogger(context.Background(), nil)
	log.Info(context.Background(), "still fine")
}

func TestContextLoggerRoundTrip(t *testing.T) {
	base := Noop()
	ctx := ContextWithLogger(context.Background(), base)
	if got := LoggerFromContext(ctx); got == nil {
		t.Errorf("expected stored logger back")
	}
	if got := LoggerFromContext(context.Background()); got != nil {
		t.Errorf("expected nil for a bare context")
	}
	if got := LoggerFromContext(nil); got != nil {
		t.Errorf("expected nil for nil context")
	}
}

func TestNoopLoggerIsInert(t *testing.T) {
	log := Noop().With(String("k", "v"))
	ctx := context.Background()
	log.Debug(ctx, "a")
	log.Info(ctx, "b", Int("n", 1))
	log.Warn(ctx, "c", Any("x", struct{}{}))
	log.Error(ctx, "d")
}

func TestNewHonorsConfig(t *testing.T) {
	// Construction must succeed for every format/level combination.
	for _, cfg := range []Config{
		{},
		{Level: "debug", Format: "json"},
		{Level: "warn", Format: "text", AddSource: true},
		{Level: "nonsense", Format: "nonsense"},
	} {
		if log := New(cfg); log == nil {
			t.Fatalf("New(%+v) returned nil", cfg)
		}
	}
}
