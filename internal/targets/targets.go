// Package targets resolves the monthly partner-adds targets the run-rate
// projection is measured against. Targets live in a shared spreadsheet;
// a local cache and a hardcoded fallback keep the daily report running
// when the sheet is unreachable.
package targets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Tiers holds the three target levels for one month.
type Tiers struct {
	Forecast float64 `json:"forecast"`
	Stretch  float64 `json:"stretch"`
	Low      float64 `json:"low"`
}

// Map converts tiers to the generic name -> value form the metrics
// projection consumes.
func (t Tiers) Map() map[string]float64 {
	return map[string]float64{
		"forecast": t.Forecast,
		"stretch":  t.Stretch,
		"low":      t.Low,
	}
}

// Source records where a resolved target came from, so the report can
// flag degraded data instead of silently presenting stale numbers.
type Source string

const (
	SourceSheet    Source = "sheet"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Fetcher retrieves the target tiers for one month, keyed "2006-01".
type Fetcher func(ctx context.Context, month string) (Tiers, error)

// Book resolves targets month by month and maintains the on-disk cache.
type Book struct {
	cachePath string
	fetch     Fetcher
	fallback  map[string]Tiers
}

func NewBook(cacheDir string, fetch Fetcher, fallback map[string]Tiers) *Book {
	return &Book{
		cachePath: filepath.Join(cacheDir, "targets_cache.json"),
		fetch:     fetch,
		fallback:  fallback,
	}
}

type cacheFile struct {
	UpdatedAt time.Time        `json:"updated_at"`
	Months    map[string]Tiers `json:"months"`
}

// Resolve returns the target tiers for the given period, trying the
// sheet first, then the local cache, then the static fallback.
func (b *Book) Resolve(ctx context.Context, period time.Time) (Tiers, Source, error) {
	month := period.Format("2006-01")

	if b.fetch != nil {
		tiers, err := b.fetch(ctx, month)
		if err == nil {
			if cacheErr := b.store(month, tiers); cacheErr != nil {
				log.Warn().Err(cacheErr).Msg("Failed to update targets cache")
			}
			return tiers, SourceSheet, nil
		}
		log.Warn().Err(err).Str("month", month).Msg("Targets sheet unavailable, trying cache")
	}

	if tiers, ok := b.cached(month); ok {
		log.Info().Str("month", month).Msg("Using cached targets")
		return tiers, SourceCache, nil
	}

	if tiers, ok := b.fallback[month]; ok {
		log.Warn().Str("month", month).Msg("Using fallback targets")
		return tiers, SourceFallback, nil
	}

	return Tiers{}, "", fmt.Errorf("no targets available for %s", month)
}

// Refresh force-fetches the month's targets and rewrites the cache.
func (b *Book) Refresh(ctx context.Context, period time.Time) (Tiers, error) {
	if b.fetch == nil {
		return Tiers{}, fmt.Errorf("no target source configured")
	}
	month := period.Format("2006-01")
	tiers, err := b.fetch(ctx, month)
	if err != nil {
		return Tiers{}, fmt.Errorf("failed to fetch targets for %s: %w", month, err)
	}
	if err := b.store(month, tiers); err != nil {
		return Tiers{}, err
	}
	return tiers, nil
}

func (b *Book) cached(month string) (Tiers, bool) {
	data, err := os.ReadFile(b.cachePath)
	if err != nil {
		return Tiers{}, false
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		log.Warn().Err(err).Str("path", b.cachePath).Msg("Corrupt targets cache, ignoring")
		return Tiers{}, false
	}
	tiers, ok := cf.Months[month]
	return tiers, ok
}

// store merges one month into the cache file via tmp file + atomic rename.
func (b *Book) store(month string, tiers Tiers) error {
	cf := cacheFile{Months: make(map[string]Tiers)}
	if data, err := os.ReadFile(b.cachePath); err == nil {
		_ = json.Unmarshal(data, &cf)
		if cf.Months == nil {
			cf.Months = make(map[string]Tiers)
		}
	}
	cf.Months[month] = tiers
	cf.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode targets cache: %w", err)
	}

	tmp := b.cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write targets cache: %w", err)
	}
	if err := os.Rename(tmp, b.cachePath); err != nil {
		return fmt.Errorf("failed to replace targets cache: %w", err)
	}
	return nil
}
