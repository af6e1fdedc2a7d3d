package targets

import (
	"context"
	"errors"
	"testing"
	"time"
)

var jan = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func fixedFetcher(t Tiers) Fetcher {
	return func(ctx context.Context, month string) (Tiers, error) {
		return t, nil
	}
}

func failingFetcher(ctx context.Context, month string) (Tiers, error) {
	return Tiers{}, errors.New("sheet unreachable")
}

func TestResolve_SheetWinsAndPopulatesCache(t *testing.T) {
	dir := t.TempDir()
	want := Tiers{Forecast: 424, Stretch: 500, Low: 380}

	book := NewBook(dir, fixedFetcher(want), nil)
	tiers, source, err := book.Resolve(context.Background(), jan)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if source != SourceSheet {
		t.Errorf("Expected sheet source, got %s", source)
	}
	if tiers != want {
		t.Errorf("Tiers mismatch: %+v", tiers)
	}

	// A second book over the same cache dir, with a broken sheet, must
	// serve the cached values.
	offline := NewBook(dir, failingFetcher, nil)
	tiers, source, err = offline.Resolve(context.Background(), jan)
	if err != nil {
		t.Fatalf("Unexpected error from cache path: %v", err)
	}
	if source != SourceCache {
		t.Errorf("Expected cache source, got %s", source)
	}
	if tiers != want {
		t.Errorf("Cached tiers mismatch: %+v", tiers)
	}
}

func TestResolve_FallbackIsTyped(t *testing.T) {
	dir := t.TempDir()
	fallback := map[string]Tiers{"2026-01": {Forecast: 400, Stretch: 480, Low: 360}}

	book := NewBook(dir, failingFetcher, fallback)
	tiers, source, err := book.Resolve(context.Background(), jan)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if source != SourceFallback {
		t.Errorf("Expected fallback source, got %s", source)
	}
	if tiers.Forecast != 400 {
		t.Errorf("Fallback tiers mismatch: %+v", tiers)
	}
}

func TestResolve_NoSourceErrors(t *testing.T) {
	book := NewBook(t.TempDir(), failingFetcher, nil)
	if _, _, err := book.Resolve(context.Background(), jan); err == nil {
		t.Fatal("Expected error when every source is exhausted")
	}
}

func TestRefresh_RewritesCache(t *testing.T) {
	dir := t.TempDir()
	book := NewBook(dir, fixedFetcher(Tiers{Forecast: 100}), nil)

	if _, err := book.Refresh(context.Background(), jan); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	offline := NewBook(dir, nil, nil)
	tiers, source, err := offline.Resolve(context.Background(), jan)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if source != SourceCache || tiers.Forecast != 100 {
		t.Errorf("Expected refreshed cache entry, got %s %+v", source, tiers)
	}
}

func TestTiersMap(t *testing.T) {
	m := Tiers{Forecast: 1, Stretch: 2, Low: 3}.Map()
	if m["forecast"] != 1 || m["stretch"] != 2 || m["low"] != 3 {
		t.Errorf("Tier map mismatch: %+v", m)
	}
}
